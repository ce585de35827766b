// ABOUTME: Entry point for the sfxkit demo game
// ABOUTME: Parses CLI flags and runs moving emitters through the sound system
package main

import (
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/sfxkit/sfxkit/internal/app"
	"github.com/sfxkit/sfxkit/internal/version"
	"github.com/sfxkit/sfxkit/pkg/sfx"
)

func main() {
	// Environment first, flags override
	cfg := sfx.LoadConfig()

	var (
		driverName  = flag.String("driver", "oto", "Sound driver: oto or dummy")
		manifest    = flag.String("manifest", "", "Sound manifest (default: built-in tones)")
		channels    = flag.Int("channels", cfg.Channels, "Number of sound channels")
		use3D       = flag.Bool("3d", cfg.Use3D, "Use 3D positional sound")
		volume      = flag.Int("volume", cfg.Volume, "Master volume 0-255")
		name        = flag.String("name", "", "Monitor name (default: hostname-sfxkit)")
		monitorPort = flag.Int("monitor-port", 8930, "Monitor WebSocket port, 0 to disable")
		noMDNS      = flag.Bool("no-mdns", false, "Disable mDNS advertisement of the monitor")
		duration    = flag.Duration("duration", 0, "Stop after this long (0 runs until interrupted)")
		logFile     = flag.String("log-file", "sfxkit.log", "Log file path")
		noTUI       = flag.Bool("no-tui", false, "Disable TUI, use streaming logs instead")
		verbose     = flag.Bool("verbose", cfg.Verbose, "Log every sound decision")
		showVersion = flag.Bool("version", false, "Print version and exit")
	)
	flag.Parse()

	if *showVersion {
		fmt.Println(version.String())
		return
	}

	useTUI := !*noTUI

	f, err := os.OpenFile(*logFile, os.O_RDWR|os.O_CREATE|os.O_APPEND, 0666)
	if err != nil {
		log.Fatalf("error opening log file: %v", err)
	}
	defer func() { _ = f.Close() }()

	if useTUI {
		// TUI mode: log only to file
		log.SetOutput(f)
	} else {
		log.SetOutput(io.MultiWriter(os.Stdout, f))
	}

	monitorName := *name
	if monitorName == "" {
		hostname, err := os.Hostname()
		if err != nil {
			hostname = "unknown"
		}
		monitorName = fmt.Sprintf("%s-%s", hostname, version.Product)
	}

	cfg.Channels = *channels
	cfg.Use3D = *use3D
	cfg.Volume = *volume
	cfg.Verbose = *verbose

	log.Printf("Starting %s: %s", version.String(), monitorName)

	demo := app.New(app.Config{
		Driver:      *driverName,
		Manifest:    *manifest,
		Sound:       cfg,
		Name:        monitorName,
		MonitorPort: *monitorPort,
		EnableMDNS:  !*noMDNS,
		UseTUI:      useTUI,
		Duration:    *duration,
	})

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		sig := <-sigChan
		log.Printf("Received %v signal, shutting down gracefully...", sig)
		demo.Stop()
	}()

	if err := demo.Start(); err != nil {
		log.Fatalf("Demo error: %v", err)
	}
}
