package radio

import (
	"fmt"

	"github.com/atomicstack/piradio/internal/config"
	"github.com/atomicstack/piradio/internal/display"
	"github.com/atomicstack/piradio/internal/mode"
	"github.com/atomicstack/piradio/internal/modes/netradio"
	"github.com/atomicstack/piradio/internal/modes/service"
	"github.com/atomicstack/piradio/internal/modes/settings"
	"github.com/atomicstack/piradio/internal/rotary"
	"github.com/atomicstack/piradio/internal/system"
	"github.com/atomicstack/piradio/internal/volume"
)

// BuildModes instantiates the configured modes in menu order. check is the
// connectivity probe handed to internet radio modes; nil skips the probe.
func BuildModes(cfgs []config.ModeConfig, runner system.Runner, check netradio.Checker) ([]mode.Mode, error) {
	modes := make([]mode.Mode, 0, len(cfgs))
	for i, mc := range cfgs {
		switch mc.Type {
		case config.ModeSettings:
			modes = append(modes, settings.New(mc.Name, runner))
		case config.ModeService:
			modes = append(modes, service.New(service.Config{
				Name:       mc.Name,
				Unit:       mc.Unit,
				DeviceName: mc.DeviceName,
				Artist:     mc.Artist,
			}, runner))
		case config.ModeNetRadio:
			stations := make([]netradio.Station, len(mc.Stations))
			for j, st := range mc.Stations {
				stations[j] = netradio.Station{Name: st.Name, URL: st.URL}
			}
			modes = append(modes, netradio.New(mc.Name, stations, runner, netradio.Options{Check: check}))
		default:
			return nil, fmt.Errorf("modes[%d]: unknown type %q", i, mc.Type)
		}
	}
	return modes, nil
}

// OptionsFromConfig maps runtime configuration onto radio options. The
// caller fills in Modes.
func OptionsFromConfig(cfg config.Config, runner system.Runner) Options {
	hw := cfg.Hardware
	return Options{
		Selector: rotary.Pins{A: hw.Selector.A, B: hw.Selector.B, Button: hw.Selector.Button},
		Volume:   rotary.Pins{A: hw.Volume.A, B: hw.Volume.B, Button: hw.Volume.Button},
		MuteLED:  hw.MuteLED,
		Debounce: hw.Debounce,
		Display: display.Options{
			Timeout:     cfg.Display.Timeout,
			MinInterval: cfg.Display.Refresh,
		},
		Output:      volume.Pactl{Runner: runner, Sink: cfg.Volume.Sink},
		Level:       volume.Options{Initial: cfg.Volume.Initial, Step: cfg.Volume.Step},
		StartupMode: cfg.StartupMode,
	}
}
