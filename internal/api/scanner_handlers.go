package api

import (
	"errors"
	"net/http"

	"github.com/selter2001/hause-scanner/internal/httputil"
	"github.com/selter2001/hause-scanner/internal/scan"
)

func (s *Server) scannerSupported(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		httputil.MethodNotAllowed(w)
		return
	}
	// unsupported hardware is a structured answer, not an error status
	httputil.WriteJSONOK(w, s.scanner.IsSupported())
}

func (s *Server) scannerStart(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		httputil.MethodNotAllowed(w)
		return
	}
	if err := s.scanner.StartScan(); err != nil {
		switch {
		case errors.Is(err, scan.ErrNotSupported):
			httputil.Conflict(w, "scanning not supported on this device")
		case errors.Is(err, scan.ErrScanInProgress):
			httputil.Conflict(w, "scan already in progress")
		default:
			httputil.InternalServerError(w, "failed to start scan")
		}
		return
	}
	httputil.WriteJSONOK(w, s.scanner.Progress())
}

func (s *Server) scannerStop(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		httputil.MethodNotAllowed(w)
		return
	}
	if err := s.scanner.StopScan(); err != nil {
		switch {
		case errors.Is(err, scan.ErrNotSupported):
			httputil.Conflict(w, "scanning not supported on this device")
		case errors.Is(err, scan.ErrNotScanning):
			httputil.Conflict(w, "no scan in progress")
		default:
			httputil.InternalServerError(w, "failed to stop scan")
		}
		return
	}
	httputil.WriteJSONOK(w, s.scanner.Progress())
}

func (s *Server) scannerStatus(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		httputil.MethodNotAllowed(w)
		return
	}
	httputil.WriteJSONOK(w, s.scanner.Progress())
}

func (s *Server) scannerResults(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		httputil.MethodNotAllowed(w)
		return
	}
	bundle, err := s.scanner.Results()
	if err != nil {
		if errors.Is(err, scan.ErrNoResults) {
			httputil.Conflict(w, "no scan results available")
			return
		}
		httputil.InternalServerError(w, "failed to read scan results")
		return
	}
	httputil.WriteJSONOK(w, bundle)
}
