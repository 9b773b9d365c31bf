package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/valpere/nebo/internal/app"
	"github.com/valpere/nebo/internal/config"
	"github.com/valpere/nebo/internal/version"
)

func main() {
	// Command-line flags
	versionFlag := flag.Bool("version", false, "Print version information and exit")
	flag.Parse()

	if *versionFlag {
		fmt.Println(version.GetInfo().String())
		os.Exit(0)
	}

	log.Printf("Starting Nebo v%s", version.Version)

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	nebo, err := app.New(cfg)
	if err != nil {
		log.Fatalf("Failed to create application: %v", err)
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- nebo.Start(ctx)
	}()

	// Wait for interrupt signal or a fatal server error
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-sigCh:
	case err := <-errCh:
		if err != nil {
			log.Printf("Application failed: %v", err)
		}
	}

	log.Println("Shutting down Nebo...")
	cancel()

	if err := nebo.Stop(); err != nil {
		log.Printf("Error during shutdown: %v", err)
	}

	log.Println("Nebo stopped gracefully")
}
