package main

import (
	"encoding/json"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/pixel-agents/backend/internal/api"
	"github.com/pixel-agents/backend/internal/config"
	"github.com/pixel-agents/backend/internal/monitor"
)

func main() {
	configPath := flag.String("config", "config.yaml", "Path to config file")
	port := flag.Int("port", 0, "Override server port")
	once := flag.Bool("once", false, "Run a single poll, print the result as JSON, and exit")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		if !os.IsNotExist(err) {
			log.Fatalf("Failed to load config: %v", err)
		}
		cfg = config.Default()
	}

	if *port > 0 {
		cfg.Server.Port = *port
	}

	mon := monitor.NewMonitor(cfg)

	if *once {
		payload := mon.Tick()
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(payload); err != nil {
			log.Fatalf("Encode tick payload: %v", err)
		}
		return
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		log.Println("Shutting down...")
		os.Exit(0)
	}()

	server := api.NewServer(cfg, mon)
	if err := server.ListenAndServe(); err != nil {
		log.Fatalf("Server error: %v", err)
	}
}
