// ABOUTME: Entry point for the remote sound monitor
// ABOUTME: Connects to a running game's monitor and shows its channels in a TUI
package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sfxkit/sfxkit/internal/app"
	"github.com/sfxkit/sfxkit/internal/version"
)

var (
	serverAddr = flag.String("server", "", "Monitor address host:port (skip mDNS)")
	name       = flag.String("name", "", "Watcher name (default: hostname-sfx-watch)")
	timeout    = flag.Duration("discovery-timeout", 10*time.Second, "How long to browse for a monitor")
	logFile    = flag.String("log-file", "sfx-watch.log", "Log file path")
)

func main() {
	flag.Parse()

	// The TUI owns the terminal, so logs only go to the file
	f, err := os.OpenFile(*logFile, os.O_RDWR|os.O_CREATE|os.O_APPEND, 0666)
	if err != nil {
		log.Fatalf("error opening log file: %v", err)
	}
	defer func() { _ = f.Close() }()
	log.SetOutput(f)

	watcherName := *name
	if watcherName == "" {
		hostname, err := os.Hostname()
		if err != nil {
			hostname = "unknown"
		}
		watcherName = fmt.Sprintf("%s-sfx-watch", hostname)
	}

	log.Printf("Starting %s watcher: %s", version.String(), watcherName)

	watcher := app.NewWatcher(app.WatchConfig{
		ServerAddr:       *serverAddr,
		Name:             watcherName,
		DiscoveryTimeout: *timeout,
	})

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		sig := <-sigChan
		log.Printf("Received %v signal, shutting down...", sig)
		watcher.Stop()
	}()

	if err := watcher.Start(); err != nil {
		fmt.Fprintf(os.Stderr, "sfx-watch: %v\n", err)
		os.Exit(1)
	}
}
