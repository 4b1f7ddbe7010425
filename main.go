package main

import (
	"context"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/selter2001/hause-scanner/internal/api"
	"github.com/selter2001/hause-scanner/internal/project"
	"github.com/selter2001/hause-scanner/internal/scan"
	"github.com/selter2001/hause-scanner/internal/store"
	"github.com/selter2001/hause-scanner/internal/version"
)

var (
	devMode    = flag.Bool("dev", false, "Run with the simulated scanner")
	randomRoom = flag.Bool("random-rooms", false, "Randomize simulated room dimensions")
	listen     = flag.String("listen", ":8080", "Listen address")
	dbFile     = flag.String("db", "scanner_data.db", "SQLite database file (empty for in-memory)")
)

// runMigration handles the migrate-up / migrate-down / migrate-version
// commands against the SQLite store and exits.
func runMigration(cmd string, s *store.SQLiteStore) {
	switch cmd {
	case "migrate-up":
		if err := s.MigrateUp(); err != nil {
			log.Fatalf("migrate up failed: %v", err)
		}
		log.Print("migrations applied")
	case "migrate-down":
		if err := s.MigrateDown(); err != nil {
			log.Fatalf("migrate down failed: %v", err)
		}
		log.Print("migrations rolled back")
	case "migrate-version":
		v, dirty, err := s.MigrateVersion()
		if err != nil {
			log.Fatalf("migrate version failed: %v", err)
		}
		log.Printf("schema version %d (dirty=%v)", v, dirty)
	default:
		log.Fatalf("unknown command %q", cmd)
	}
}

func main() {
	flag.Parse()

	if *listen == "" {
		log.Fatal("Listen address is required")
	}

	log.Printf("hause-scanner %s (%s, built %s)", version.Version, version.GitSHA, version.BuildTime)

	var st store.ProjectStore
	if *dbFile == "" {
		st = store.NewMemoryStore()
	} else {
		sqliteStore, err := store.NewSQLiteStore(*dbFile)
		if err != nil {
			log.Fatalf("failed to open database: %v", err)
		}
		if cmd := flag.Arg(0); cmd != "" {
			runMigration(cmd, sqliteStore)
			sqliteStore.Close()
			os.Exit(0)
		}
		st = sqliteStore
	}
	defer st.Close()

	if cmd := flag.Arg(0); cmd != "" {
		log.Fatalf("command %q requires a SQLite database (-db)", cmd)
	}

	var scanner scan.Scanner
	if *devMode {
		opts := []scan.SimOption{}
		if *randomRoom {
			opts = append(opts, scan.WithRandomRoom(time.Now().UnixNano()))
		}
		scanner = scan.NewSimulator(opts...)
		log.Print("using simulated scanner")
	} else {
		scanner = scan.Unavailable{Reason: "no LiDAR hardware attached"}
	}

	var wg sync.WaitGroup
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// log scan completions as they arrive
	wg.Add(1)
	go func() {
		defer wg.Done()
		events := scanner.Complete()
		if events == nil {
			return
		}
		for {
			select {
			case ev := <-events:
				log.Printf("scan complete: %d walls, %.2f m2 floor area", ev.WallCount, ev.FloorArea)
			case <-ctx.Done():
				log.Print("completion routine terminated")
				return
			}
		}
	}()

	// HTTP server goroutine
	wg.Add(1)
	go func() {
		defer wg.Done()

		apiServer := api.NewServer(scanner, st, project.NewAggregator(nil))
		server := &http.Server{
			Addr:    *listen,
			Handler: api.LoggingMiddleware(apiServer.ServeMux()),
		}

		go func() {
			log.Printf("listening on %s", *listen)
			if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				log.Fatalf("failed to start server: %v", err)
			}
		}()

		<-ctx.Done()
		log.Println("shutting down HTTP server...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			log.Printf("HTTP server shutdown error: %v", err)
		}

		log.Printf("HTTP server routine stopped")
	}()

	wg.Wait()
	log.Printf("Graceful shutdown complete")
}
