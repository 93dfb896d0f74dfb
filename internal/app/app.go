package app

import (
	"context"
	"errors"

	tea "github.com/charmbracelet/bubbletea"
	"golang.org/x/sync/errgroup"

	"github.com/atomicstack/piradio/internal/config"
	"github.com/atomicstack/piradio/internal/hw"
	"github.com/atomicstack/piradio/internal/hw/periphio"
	"github.com/atomicstack/piradio/internal/hw/virtual"
	"github.com/atomicstack/piradio/internal/logging"
	"github.com/atomicstack/piradio/internal/logging/events"
	"github.com/atomicstack/piradio/internal/modes/netradio"
	"github.com/atomicstack/piradio/internal/radio"
	"github.com/atomicstack/piradio/internal/recovery"
	"github.com/atomicstack/piradio/internal/rotary"
	"github.com/atomicstack/piradio/internal/system"
	"github.com/atomicstack/piradio/internal/ui"
)

// Runner picks the command runner for cfg.
func Runner(cfg config.Config) system.Runner {
	if cfg.DryRun {
		return system.NewDryRun()
	}
	return system.Exec{}
}

// Run drives the real hardware until ctx is cancelled.
func Run(ctx context.Context, cfg config.Config) error {
	var (
		gpio *periphio.GPIO
		lcd  *periphio.LCD
	)
	backoff := hw.DefaultBackoffConfig()
	if cfg.Hardware.ConnectAttempts > 0 {
		backoff.MaxAttempts = cfg.Hardware.ConnectAttempts
	}
	attempt := 0
	err := hw.Connect(ctx, backoff, func() error {
		attempt++
		var err error
		if gpio, err = periphio.OpenGPIO(); err == nil {
			pins := cfg.Hardware.LCD
			if lcd, err = periphio.OpenLCD(periphio.LCDPins{
				RS:        pins.RS,
				Enable:    pins.Enable,
				Data:      [4]int{pins.D4, pins.D5, pins.D6, pins.D7},
				Backlight: pins.Backlight,
			}); err != nil {
				_ = gpio.Close()
			}
		}
		if err != nil {
			events.App.HardwareRetry(attempt, err)
		}
		return err
	})
	if err != nil {
		return err
	}
	defer func() {
		if cerr := lcd.Close(); cerr != nil {
			logging.Error(cerr)
		}
		if cerr := gpio.Close(); cerr != nil {
			logging.Error(cerr)
		}
	}()

	r, err := build(cfg, gpio, lcd, netradio.DialCheck(netradio.DefaultCheckAddr, netradio.DefaultCheckTimeout))
	if err != nil {
		return err
	}
	return r.Run(ctx)
}

func build(cfg config.Config, gpio hw.GPIO, disp hw.Display, check netradio.Checker) (*radio.Radio, error) {
	runner := Runner(cfg)
	modes, err := radio.BuildModes(cfg.Modes, runner, check)
	if err != nil {
		return nil, err
	}
	opts := radio.OptionsFromConfig(cfg, runner)
	opts.Modes = modes
	return radio.New(gpio, disp, opts)
}

// Simulate runs the radio on virtual hardware behind the terminal
// simulator.
func Simulate(ctx context.Context, cfg config.Config) error {
	gpio := virtual.NewGPIO()
	disp := virtual.NewDisplay()
	r, err := build(cfg, gpio, disp, nil)
	if err != nil {
		return err
	}

	model := ui.NewModel(ui.Config{
		GPIO:     gpio,
		Display:  disp,
		Selector: radioPins(cfg.Hardware.Selector),
		Volume:   radioPins(cfg.Hardware.Volume),
	})

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return r.Run(gctx)
	})
	g.Go(func() error {
		defer cancel()
		program := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(gctx))
		_, err := program.Run()
		model.Stop()
		if errors.Is(err, tea.ErrProgramKilled) || errors.Is(err, context.Canceled) {
			return nil
		}
		return err
	})
	return g.Wait()
}

// Recover runs the button watchdog until ctx is cancelled.
func Recover(ctx context.Context, cfg config.Config) error {
	gpio, err := periphio.OpenGPIO()
	if err != nil {
		return err
	}
	defer gpio.Close()

	w := recovery.New(gpio, Runner(cfg), recovery.Options{
		Buttons: []int{cfg.Hardware.Selector.Button, cfg.Hardware.Volume.Button},
		Hold:    cfg.Recovery.Hold,
		Poll:    cfg.Recovery.Poll,
		Unit:    cfg.Recovery.Unit,
	})
	return w.Run(ctx)
}

func radioPins(k config.Knob) rotary.Pins {
	return rotary.Pins{A: k.A, B: k.B, Button: k.Button}
}
