// ABOUTME: Demo game orchestration
// ABOUTME: Runs a small scene of moving emitters through the sound system with optional monitor and TUI
package app

import (
	"context"
	"errors"
	"fmt"
	"log"
	"math"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/sfxkit/sfxkit/internal/monitor"
	"github.com/sfxkit/sfxkit/internal/ui"
	"github.com/sfxkit/sfxkit/internal/version"
	"github.com/sfxkit/sfxkit/pkg/assets"
	"github.com/sfxkit/sfxkit/pkg/clock"
	"github.com/sfxkit/sfxkit/pkg/driver"
	"github.com/sfxkit/sfxkit/pkg/driver/dummy"
	"github.com/sfxkit/sfxkit/pkg/driver/otomix"
	"github.com/sfxkit/sfxkit/pkg/protocol"
	"github.com/sfxkit/sfxkit/pkg/sfx"
	"github.com/sfxkit/sfxkit/pkg/world"
)

// Config holds demo configuration
type Config struct {
	Driver      string // oto or dummy
	Manifest    string // empty uses the built-in tones
	Sound       sfx.Config
	Name        string
	MonitorPort int // 0 disables the monitor
	EnableMDNS  bool
	UseTUI      bool
	Duration    time.Duration // 0 runs until stopped
}

// emitter is a scripted sound source in the demo scene
type emitter struct {
	handle world.Handle
	sound  int
	every  int64   // tics between starts
	orbit  float64 // circle radius, 0 = static
	period float64 // tics per revolution
	next   int64
}

// Demo represents the demo application
type Demo struct {
	config Config
	clock  clock.Clock

	lib      *assets.Library
	reg      *world.Registry
	sys      *sfx.System
	listener world.Handle
	emitters []*emitter

	monitor *monitor.Server
	tuiProg *tea.Program
	ctrl    *ui.Control
	seq     int64

	ctx    context.Context
	cancel context.CancelFunc
}

// New creates a new demo
func New(config Config) *Demo {
	ctx, cancel := context.WithCancel(context.Background())

	if config.Driver == "" {
		config.Driver = "oto"
	}
	if config.Name == "" {
		config.Name = version.Product
	}

	return &Demo{
		config: config,
		clock:  clock.NewSystem(),
		reg:    world.NewRegistry(),
		ctx:    ctx,
		cancel: cancel,
	}
}

// newDriver builds the configured back-end
func (d *Demo) newDriver() (driver.Driver, error) {
	switch d.config.Driver {
	case "oto":
		return otomix.New(otomix.Options{Clock: d.clock, Verbose: d.config.Sound.Verbose}), nil
	case "dummy":
		return dummy.New(dummy.Options{Clock: d.clock, Verbose: d.config.Sound.Verbose}), nil
	default:
		return nil, fmt.Errorf("unknown driver %q (want oto or dummy)", d.config.Driver)
	}
}

// setup loads the library, builds the scene and initializes the sound system
func (d *Demo) setup() error {
	if d.config.Manifest != "" {
		lib, err := assets.Open(d.config.Manifest)
		if err != nil {
			return err
		}
		d.lib = lib
	} else {
		d.lib = assets.Builtin()
	}

	drv, err := d.newDriver()
	if err != nil {
		return err
	}

	d.sys = sfx.New(sfx.Options{
		Config:      d.config.Sound,
		Driver:      drv,
		Loader:      d.lib,
		Definitions: d.lib,
		World:       d.reg,
		Clock:       d.clock,
	})
	if err := d.sys.Init(); err != nil {
		return fmt.Errorf("failed to initialize sound: %w", err)
	}

	d.buildScene()
	return nil
}

// buildScene spawns the listener and one emitter per scripted sound. Sounds
// missing from a custom manifest are skipped.
func (d *Demo) buildScene() {
	d.listener = d.reg.Spawn(world.Object{Height: 56, Actor: true, Cluster: 1})
	d.reg.SetReverb(1, world.Reverb{Volume: 0.6, Space: 0.4, Decay: 1.5, Damping: 0.5})

	script := []struct {
		sound  string
		every  int64
		origin world.Vec3
		orbit  float64
		period float64
	}{
		{"shot", 20, world.Vec3{}, 320, 6 * clock.TicsPerSecond},
		{"blip", 45, world.Vec3{X: -200, Y: 150}, 0, 0},
		{"door-open", 140, world.Vec3{X: 600}, 0, 0},
		{"door-close", 140, world.Vec3{X: 600}, 0, 0},
		{"alarm", 245, world.Vec3{Y: -900}, 0, 0},
		{"hum", 4 * clock.TicsPerSecond, world.Vec3{X: 50, Y: 50}, 0, 0},
	}

	for i, s := range script {
		id, ok := d.lib.Lookup(s.sound)
		if !ok {
			continue
		}
		e := &emitter{
			handle: d.reg.Spawn(world.Object{Origin: s.origin, Height: 16, Actor: s.orbit > 0}),
			sound:  id,
			every:  s.every,
			orbit:  s.orbit,
			period: s.period,
			next:   int64(i * 10),
		}
		d.emitters = append(d.emitters, e)
	}
}

// step advances the scene to tick now and runs one sound frame
func (d *Demo) step(now int64) {
	for _, e := range d.emitters {
		if e.orbit > 0 {
			d.moveOrbiter(e, now)
		}
		if now < e.next {
			continue
		}
		e.next = now + e.every

		err := d.sys.Start(sfx.Request{ID: e.sound, Volume: 1, Emitter: e.handle})
		switch {
		case err == nil:
		case errors.Is(err, sfx.ErrRejected), errors.Is(err, sfx.ErrNoChannel):
			if d.config.Sound.Verbose {
				log.Printf("Sound %d not started: %v", e.sound, err)
			}
		default:
			log.Printf("Sound %d failed: %v", e.sound, err)
		}
	}

	d.sys.Frame(d.listener)
}

// moveOrbiter places e on its circle around the listener
func (d *Demo) moveOrbiter(e *emitter, now int64) {
	theta := 2 * math.Pi * float64(now) / e.period
	speed := 2 * math.Pi * e.orbit / e.period

	d.reg.Modify(e.handle, func(o *world.Object) {
		o.Origin = world.Vec3{X: e.orbit * math.Cos(theta), Y: e.orbit * math.Sin(theta)}
		o.Momentum = world.Vec3{X: -speed * math.Sin(theta), Y: speed * math.Cos(theta)}
	})
}

// Start runs the demo until Stop, the TUI quits or the duration elapses
func (d *Demo) Start() error {
	if err := d.setup(); err != nil {
		return err
	}
	defer d.shutdown()

	log.Printf("Demo running: %d emitters on %s", len(d.emitters), d.config.Driver)

	if d.config.MonitorPort > 0 {
		d.monitor = monitor.New(monitor.Config{
			Port:       d.config.MonitorPort,
			Name:       d.config.Name,
			Driver:     d.config.Driver,
			EnableMDNS: d.config.EnableMDNS,
			Debug:      d.config.Sound.Verbose,
		}, d.sys, d.lib)

		go func() {
			if err := d.monitor.Start(); err != nil {
				log.Printf("Monitor failed: %v", err)
			}
		}()
	}

	var quit <-chan ui.QuitMsg
	if d.config.UseTUI {
		d.ctrl = ui.NewControl()
		d.tuiProg = ui.Run(d.ctrl)
		quit = d.ctrl.Quit

		go func() {
			if _, err := d.tuiProg.Run(); err != nil {
				log.Printf("TUI error: %v", err)
			}
			d.cancel()
		}()

		connected := true
		d.tuiProg.Send(ui.StatusMsg{Connected: &connected, ServerName: d.config.Name, Driver: d.config.Driver})
	}

	var deadline <-chan time.Time
	if d.config.Duration > 0 {
		timer := time.NewTimer(d.config.Duration)
		defer timer.Stop()
		deadline = timer.C
	}

	frames := time.NewTicker(time.Second / clock.TicsPerSecond)
	defer frames.Stop()
	display := time.NewTicker(250 * time.Millisecond)
	defer display.Stop()

	lastTick := int64(-1)
	for {
		select {
		case <-d.ctx.Done():
			return nil
		case <-deadline:
			log.Printf("Demo finished after %s", d.config.Duration)
			return nil
		case <-quit:
			log.Printf("Received quit signal from TUI")
			return nil
		case cmd := <-d.commandChan():
			res := monitor.Execute(d.sys, d.lib, cmd)
			d.send(ui.ResultMsg(res))
		case <-display.C:
			d.seq++
			d.send(ui.SnapshotMsg{Seq: d.seq, Snapshot: d.sys.Snapshot()})
		case <-frames.C:
			if now := d.clock.Ticks(); now != lastTick {
				lastTick = now
				d.step(now)
			}
		}
	}
}

// commandChan returns the TUI command channel, or nil without a TUI
func (d *Demo) commandChan() <-chan protocol.Command {
	if d.ctrl == nil {
		return nil
	}
	return d.ctrl.Commands
}

// send forwards a message to the TUI when one is running
func (d *Demo) send(msg tea.Msg) {
	if d.tuiProg != nil {
		d.tuiProg.Send(msg)
	}
}

// shutdown releases everything Start created
func (d *Demo) shutdown() {
	if d.monitor != nil {
		d.monitor.Stop()
	}
	if d.tuiProg != nil {
		d.tuiProg.Quit()
	}
	if d.sys != nil {
		d.sys.Shutdown()
	}
	log.Printf("Demo stopped")
}

// Stop stops the demo
func (d *Demo) Stop() {
	d.cancel()
}
