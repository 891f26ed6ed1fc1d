// Command hmi-engine loads a configuration file, builds a scene graph
// from stdin, and runs the refresh event loop, optionally exposing the
// debug HTTP surface and the heavy-hitter alerter.
package main

import (
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"hmitree/internal/alerting"
	"hmitree/internal/config"
	"hmitree/internal/debugapi"
	"hmitree/internal/graph"
	"hmitree/internal/hmicli"
	"hmitree/internal/notifier"
	"hmitree/internal/planner"
	"hmitree/internal/snapshot"
)

func main() {
	log.Println("Starting hmi-engine...")

	configPath := flag.String("config", "configs/config.yaml", "path to the YAML configuration file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	log.Println("Configuration loaded successfully.")

	renderer := planner.RenderFunc(func(id graph.NodeID) {
		log.Printf("render node %d", id)
	})
	eng, err := hmicli.NewEngine(cfg.Sketch.K, cfg.Sketch.Delta, cfg.Sketch.Leeway, renderer)
	if err != nil {
		log.Fatalf("Failed to create engine: %v", err)
	}

	if cfg.Debug.Enabled {
		go startDebugServer(cfg.Debug.ListenAddr, eng)
	}

	var alerter *alerting.Alerter
	if cfg.Alerting.Enabled && cfg.SMTP.Enabled {
		notif := notifier.NewEmailNotifier(cfg.SMTP)
		alerter, err = alerting.New(eng.Tracker, notif, cfg.Alerting.PollInterval, cfg.Alerting.HitterCountThresh)
		if err != nil {
			log.Fatalf("Failed to create alerter: %v", err)
		}
		go alerter.Start()
	}

	var stopSnapshots chan struct{}
	if cfg.Snapshot.Enabled {
		stopSnapshots = make(chan struct{})
		go runSnapshotLoop(cfg.Snapshot, eng, stopSnapshots)
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	done := make(chan error, 1)
	go func() {
		done <- hmicli.Run(os.Stdin, os.Stdout, eng)
	}()

	select {
	case err := <-done:
		if err != nil {
			log.Fatalf("Event loop exited with error: %v", err)
		}
	case <-sigChan:
		log.Println("Shutdown signal received, cleaning up...")
		eng.HandleEnd()
	}

	if alerter != nil {
		alerter.Stop()
	}
	if stopSnapshots != nil {
		close(stopSnapshots)
	}
	log.Println("hmi-engine exited.")
}

func runSnapshotLoop(cfg config.SnapshotConfig, eng *hmicli.Engine, stop <-chan struct{}) {
	interval, err := time.ParseDuration(cfg.Interval)
	if err != nil {
		log.Printf("invalid snapshot.interval %q, snapshots disabled: %v", cfg.Interval, err)
		return
	}
	w := snapshot.NewWriter(cfg.RootPath)
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			ts := time.Now().UTC().Format("20060102T150405Z")
			if err := w.Write(eng.Planner, eng.Graph, eng.Tracker, ts); err != nil {
				log.Printf("failed to write snapshot: %v", err)
			}
		case <-stop:
			return
		}
	}
}

func startDebugServer(addr string, eng *hmicli.Engine) {
	handler := &debugapi.Handler{Graph: eng.Graph, Cache: eng.Planner, Hitters: eng.Tracker}
	router := debugapi.NewRouter(handler)

	log.Printf("debug API listening on %s", addr)
	if err := http.ListenAndServe(addr, router); err != nil && err != http.ErrServerClosed {
		log.Printf("debug API server error: %v", err)
	}
}
