// Command hmi-debug-api runs a scene-graph engine fed exclusively by a
// NATS update subject (internal/feed) and exposes the debug HTTP
// surface over it — a standalone read/inspect deployment with no
// stdin protocol and no rendering side effect.
package main

import (
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"hmitree/internal/config"
	"hmitree/internal/debugapi"
	"hmitree/internal/feed"
	"hmitree/internal/graph"
	"hmitree/internal/hmicli"
	"hmitree/internal/planner"
)

func main() {
	log.Println("Starting hmi-debug-api...")

	configPath := flag.String("config", "configs/config.yaml", "path to the YAML configuration file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	if !cfg.Feed.Enabled {
		log.Fatalf("hmi-debug-api requires feed.enabled in the configuration")
	}

	noopRenderer := planner.RenderFunc(func(graph.NodeID) {})
	eng, err := hmicli.NewEngine(cfg.Sketch.K, cfg.Sketch.Delta, cfg.Sketch.Leeway, noopRenderer)
	if err != nil {
		log.Fatalf("Failed to create engine: %v", err)
	}

	sub, err := feed.NewSubscriber(cfg.Feed.URL, cfg.Feed.Subject)
	if err != nil {
		log.Fatalf("Failed to connect to NATS: %v", err)
	}
	defer sub.Close()

	if err := sub.Start(func(id graph.NodeID, args []string) {
		if err := eng.HandleUpdate(id, args); err != nil {
			log.Printf("failed to apply update for node %d: %v", id, err)
			return
		}
		eng.HandleRefresh()
	}); err != nil {
		log.Fatalf("Failed to start NATS subscriber: %v", err)
	}

	handler := &debugapi.Handler{Graph: eng.Graph, Cache: eng.Planner, Hitters: eng.Tracker}
	router := debugapi.NewRouter(handler)

	server := &http.Server{Addr: cfg.Debug.ListenAddr, Handler: router}
	go func() {
		log.Printf("debug API listening on %s", cfg.Debug.ListenAddr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Could not listen on %s: %v", cfg.Debug.ListenAddr, err)
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan
	log.Println("hmi-debug-api shutting down...")
}
