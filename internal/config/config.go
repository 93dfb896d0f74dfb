package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config captures runtime configuration for the radio.
type Config struct {
	Hardware    Hardware     `yaml:"hardware"`
	Display     Display      `yaml:"display"`
	Volume      Volume       `yaml:"volume"`
	Recovery    Recovery     `yaml:"recovery"`
	Modes       []ModeConfig `yaml:"modes"`
	StartupMode string       `yaml:"startup_mode"`
	DryRun      bool         `yaml:"dry_run"`
	Logging     Logging      `yaml:"logging"`

	Path  string            `yaml:"-"`
	Flags map[string]string `yaml:"-"`
	Args  []string          `yaml:"-"`
}

type Logging struct {
	FilePath string `yaml:"file"`
	Trace    bool   `yaml:"trace"`
}

// Knob is the BCM pin triple of one rotary encoder.
type Knob struct {
	A      int `yaml:"a"`
	B      int `yaml:"b"`
	Button int `yaml:"button"`
}

// LCD is the 4-bit HD44780 wiring.
type LCD struct {
	RS        int `yaml:"rs"`
	Enable    int `yaml:"enable"`
	D4        int `yaml:"d4"`
	D5        int `yaml:"d5"`
	D6        int `yaml:"d6"`
	D7        int `yaml:"d7"`
	Backlight int `yaml:"backlight"`
}

type Hardware struct {
	LCD      LCD  `yaml:"lcd"`
	Volume   Knob `yaml:"volume"`
	Selector Knob `yaml:"selector"`
	// MuteLED is an optional indicator pin; zero disables it.
	MuteLED  int           `yaml:"mute_led"`
	Debounce time.Duration `yaml:"debounce"`
	// ConnectAttempts bounds the startup handshake retries.
	ConnectAttempts int `yaml:"connect_attempts"`
}

type Display struct {
	Timeout time.Duration `yaml:"timeout"`
	Refresh time.Duration `yaml:"refresh"`
}

type Volume struct {
	Initial int    `yaml:"initial"`
	Step    int    `yaml:"step"`
	Sink    string `yaml:"sink"`
}

type Recovery struct {
	Hold time.Duration `yaml:"hold"`
	Poll time.Duration `yaml:"poll"`
	Unit string        `yaml:"unit"`
}

// Station is one internet radio stream.
type Station struct {
	Name string `yaml:"name"`
	URL  string `yaml:"url"`
}

// Mode types understood by the radio.
const (
	ModeSettings = "settings"
	ModeService  = "service"
	ModeNetRadio = "netradio"
)

// ModeConfig declares one entry of the top-level menu.
type ModeConfig struct {
	Type string `yaml:"type"`
	Name string `yaml:"name"`
	// Unit is the systemd unit a service mode starts and stops.
	Unit string `yaml:"unit"`
	// DeviceName is what "Show Device Name" displays.
	DeviceName string `yaml:"device_name"`
	// Artist is the fixed artist line a service mode shows.
	Artist   string    `yaml:"artist"`
	Stations []Station `yaml:"stations"`
}

const (
	envConfig      = "PIRADIO_CONFIG"
	envLogFile     = "PIRADIO_LOG_FILE"
	envTrace       = "PIRADIO_TRACE"
	envDebounce    = "PIRADIO_DEBOUNCE"
	envTimeout     = "PIRADIO_DISPLAY_TIMEOUT"
	envStartupMode = "PIRADIO_STARTUP_MODE"
	envDryRun      = "PIRADIO_DRY_RUN"
	envInitialVol  = "PIRADIO_INITIAL_VOLUME"
)

// Default mirrors the reference hardware build.
func Default() Config {
	return Config{
		Hardware: Hardware{
			LCD:             LCD{RS: 17, Enable: 18, D4: 27, D5: 22, D6: 23, D7: 24, Backlight: 25},
			Volume:          Knob{A: 19, B: 20, Button: 21},
			Selector:        Knob{A: 5, B: 6, Button: 13},
			Debounce:        400 * time.Millisecond,
			ConnectAttempts: 6,
		},
		Display: Display{
			Timeout: 5 * time.Second,
			Refresh: 50 * time.Millisecond,
		},
		Volume: Volume{Initial: 50, Step: 5, Sink: "0"},
		Recovery: Recovery{
			Hold: 5 * time.Second,
			Poll: 100 * time.Millisecond,
			Unit: "pi-radio",
		},
		Modes: []ModeConfig{
			{
				Type: ModeNetRadio,
				Name: "Internet Radio",
				Stations: []Station{
					{Name: "Radio 1", URL: "http://bbcmedia.ic.llnwd.net/stream/bbcmedia_radio1_mf_p"},
					{Name: "Radio 2", URL: "http://bbcmedia.ic.llnwd.net/stream/bbcmedia_radio2_mf_p"},
					{Name: "Radio 3", URL: "http://bbcmedia.ic.llnwd.net/stream/bbcmedia_radio3_mf_p"},
					{Name: "Radio 4", URL: "http://bbcmedia.ic.llnwd.net/stream/bbcmedia_radio4fm_mf_p"},
					{Name: "Radio 6", URL: "http://bbcmedia.ic.llnwd.net/stream/bbcmedia_6music_mf_p"},
				},
			},
			{Type: ModeService, Name: "Airplay", Unit: "shairport-sync.service", DeviceName: "PiRadio", Artist: "PiRadio"},
			{Type: ModeService, Name: "Spotify Connect", Unit: "raspotify.service", DeviceName: "PiRadio", Artist: "Spotify Connect"},
			{Type: ModeSettings, Name: "Settings"},
		},
	}
}

// Load reads the YAML file at path over the defaults and then applies
// environment overrides. An empty path falls back to PIRADIO_CONFIG; with
// neither set the defaults are used as-is.
func Load(path string, environ []string) (Config, error) {
	env := parseEnv(environ)
	cfg := Default()

	if strings.TrimSpace(path) == "" {
		path = envOrDefault(env, envConfig, "")
	}
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("parse config %s: %w", path, err)
		}
		cfg.Path = path
	}

	cfg.Logging.FilePath = envOrDefault(env, envLogFile, cfg.Logging.FilePath)
	cfg.Logging.Trace = envOrBool(env, envTrace, cfg.Logging.Trace)
	cfg.Hardware.Debounce = envOrDuration(env, envDebounce, cfg.Hardware.Debounce)
	cfg.Display.Timeout = envOrDuration(env, envTimeout, cfg.Display.Timeout)
	cfg.StartupMode = envOrDefault(env, envStartupMode, cfg.StartupMode)
	cfg.DryRun = envOrBool(env, envDryRun, cfg.DryRun)
	cfg.Volume.Initial = envOrInt(env, envInitialVol, cfg.Volume.Initial)

	cfg.Flags = map[string]string{
		"config":      cfg.Path,
		"logFile":     cfg.Logging.FilePath,
		"trace":       strconv.FormatBool(cfg.Logging.Trace),
		"debounce":    cfg.Hardware.Debounce.String(),
		"timeout":     cfg.Display.Timeout.String(),
		"startupMode": cfg.StartupMode,
		"dryRun":      strconv.FormatBool(cfg.DryRun),
	}
	return cfg, nil
}

func parseEnv(environ []string) map[string]string {
	values := make(map[string]string, len(environ))
	for _, entry := range environ {
		if entry == "" {
			continue
		}
		parts := strings.SplitN(entry, "=", 2)
		if len(parts) != 2 {
			continue
		}
		values[parts[0]] = parts[1]
	}
	return values
}

func envOrDefault(env map[string]string, key, fallback string) string {
	if v, ok := env[key]; ok {
		return v
	}
	return fallback
}

func envOrInt(env map[string]string, key string, fallback int) int {
	v, ok := env[key]
	if !ok || strings.TrimSpace(v) == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return parsed
}

func envOrBool(env map[string]string, key string, fallback bool) bool {
	v, ok := env[key]
	if !ok || strings.TrimSpace(v) == "" {
		return fallback
	}
	parsed, err := strconv.ParseBool(v)
	if err != nil {
		return fallback
	}
	return parsed
}

func envOrDuration(env map[string]string, key string, fallback time.Duration) time.Duration {
	v, ok := env[key]
	if !ok || strings.TrimSpace(v) == "" {
		return fallback
	}
	parsed, err := time.ParseDuration(v)
	if err != nil {
		return fallback
	}
	return parsed
}

// Validate rejects pin clashes, non-positive timings and unknown mode types.
func Validate(cfg Config) error {
	var errs []error

	hw := cfg.Hardware
	pins := map[string]int{
		"lcd.rs":          hw.LCD.RS,
		"lcd.enable":      hw.LCD.Enable,
		"lcd.d4":          hw.LCD.D4,
		"lcd.d5":          hw.LCD.D5,
		"lcd.d6":          hw.LCD.D6,
		"lcd.d7":          hw.LCD.D7,
		"lcd.backlight":   hw.LCD.Backlight,
		"volume.a":        hw.Volume.A,
		"volume.b":        hw.Volume.B,
		"volume.button":   hw.Volume.Button,
		"selector.a":      hw.Selector.A,
		"selector.b":      hw.Selector.B,
		"selector.button": hw.Selector.Button,
	}
	if hw.MuteLED != 0 {
		pins["mute_led"] = hw.MuteLED
	}
	seen := make(map[int]string, len(pins))
	for _, name := range sortedKeys(pins) {
		pin := pins[name]
		if pin < 0 || pin > 27 {
			errs = append(errs, fmt.Errorf("%s: pin %d out of range 0-27", name, pin))
			continue
		}
		if other, ok := seen[pin]; ok {
			errs = append(errs, fmt.Errorf("%s: pin %d already used by %s", name, pin, other))
			continue
		}
		seen[pin] = name
	}

	if hw.Debounce < 0 {
		errs = append(errs, fmt.Errorf("debounce must be >= 0 (got %s)", hw.Debounce))
	}
	if cfg.Display.Timeout <= 0 {
		errs = append(errs, fmt.Errorf("display timeout must be > 0 (got %s)", cfg.Display.Timeout))
	}
	if cfg.Volume.Initial < 0 || cfg.Volume.Initial > 100 {
		errs = append(errs, fmt.Errorf("initial volume must be 0-100 (got %d)", cfg.Volume.Initial))
	}
	if cfg.Volume.Step <= 0 {
		errs = append(errs, fmt.Errorf("volume step must be > 0 (got %d)", cfg.Volume.Step))
	}
	if len(cfg.Modes) == 0 {
		errs = append(errs, errors.New("at least one mode is required"))
	}
	names := make(map[string]struct{}, len(cfg.Modes))
	for i, m := range cfg.Modes {
		if strings.TrimSpace(m.Name) == "" {
			errs = append(errs, fmt.Errorf("modes[%d]: name is required", i))
		}
		if _, dup := names[m.Name]; dup {
			errs = append(errs, fmt.Errorf("modes[%d]: duplicate name %q", i, m.Name))
		}
		names[m.Name] = struct{}{}
		switch m.Type {
		case ModeSettings:
		case ModeService:
			if m.Unit == "" {
				errs = append(errs, fmt.Errorf("modes[%d]: service mode needs a unit", i))
			}
		case ModeNetRadio:
			if len(m.Stations) == 0 {
				errs = append(errs, fmt.Errorf("modes[%d]: netradio mode needs stations", i))
			}
		default:
			errs = append(errs, fmt.Errorf("modes[%d]: unknown type %q", i, m.Type))
		}
	}
	return errors.Join(errs...)
}

func sortedKeys(m map[string]int) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	for i := 1; i < len(keys); i++ {
		for j := i; j > 0 && keys[j] < keys[j-1]; j-- {
			keys[j], keys[j-1] = keys[j-1], keys[j]
		}
	}
	return keys
}
