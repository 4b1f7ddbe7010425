// Package api exposes the scanner and project model over HTTP.
package api

import (
	"log"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/selter2001/hause-scanner/internal/project"
	"github.com/selter2001/hause-scanner/internal/scan"
	"github.com/selter2001/hause-scanner/internal/store"
)

// ANSI escape codes for cyan and reset
const colorCyan = "\033[36m"
const colorReset = "\033[0m"
const colorYellow = "\033[33m"
const colorBoldGreen = "\033[1;32m"
const colorBoldRed = "\033[1;31m"

type Server struct {
	scanner scan.Scanner
	store   store.ProjectStore
	agg     *project.Aggregator
}

func NewServer(scanner scan.Scanner, st store.ProjectStore, agg *project.Aggregator) *Server {
	if agg == nil {
		agg = project.NewAggregator(nil)
	}
	return &Server{
		scanner: scanner,
		store:   st,
		agg:     agg,
	}
}

type loggingResponseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (lrw *loggingResponseWriter) WriteHeader(code int) {
	lrw.statusCode = code
	lrw.ResponseWriter.WriteHeader(code)
}

func (lrw *loggingResponseWriter) Flush() {
	if flusher, ok := lrw.ResponseWriter.(http.Flusher); ok {
		flusher.Flush()
	}
}

func statusCodeColor(statusCode int) string {
	switch {
	case statusCode >= 200 && statusCode < 300:
		return colorBoldGreen + strconv.Itoa(statusCode) + colorReset
	case statusCode >= 300 && statusCode < 400:
		return colorYellow + strconv.Itoa(statusCode) + colorReset
	case statusCode >= 400:
		return colorBoldRed + strconv.Itoa(statusCode) + colorReset
	default:
		return strconv.Itoa(statusCode)
	}
}

// LoggingMiddleware logs method, path, query, status, and duration
func LoggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		lrw := &loggingResponseWriter{w, http.StatusOK}
		next.ServeHTTP(lrw, r)
		log.Printf(
			"[%s] %s %s%s%s %vms",
			statusCodeColor(lrw.statusCode), r.Method,
			colorCyan, r.RequestURI, colorReset,
			float64(time.Since(start).Nanoseconds())/1e6,
		)
	})
}

func (s *Server) ServeMux() *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/scanner/supported", s.scannerSupported)
	mux.HandleFunc("/api/scanner/start", s.scannerStart)
	mux.HandleFunc("/api/scanner/stop", s.scannerStop)
	mux.HandleFunc("/api/scanner/status", s.scannerStatus)
	mux.HandleFunc("/api/scanner/results", s.scannerResults)
	mux.HandleFunc("/api/projects", s.projectsCollection)
	mux.HandleFunc("/api/projects/", s.projectsResource)
	return mux
}

// pathSegments splits the request path under /api/projects/ into its
// non-empty segments, e.g. /api/projects/p1/rooms/r1/vertices yields
// ["p1", "rooms", "r1", "vertices"].
func pathSegments(path string) []string {
	rest := strings.TrimPrefix(path, "/api/projects/")
	var segs []string
	for _, s := range strings.Split(rest, "/") {
		if s != "" {
			segs = append(segs, s)
		}
	}
	return segs
}
