// Package cli defines the piradio command tree.
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/atomicstack/piradio/internal/config"
	"github.com/atomicstack/piradio/internal/logging"
)

// Exit codes returned by Execute.
const (
	ExitOK     = 0
	ExitError  = 1
	ExitConfig = 2
)

// configError marks failures that happen before anything is started.
type configError struct{ err error }

func (e configError) Error() string { return e.err.Error() }
func (e configError) Unwrap() error { return e.err }

type rootOptions struct {
	configPath  string
	logFile     string
	trace       bool
	dryRun      bool
	startupMode string
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}
	cmd := &cobra.Command{
		Use:   "piradio",
		Short: "Headless radio driven by two rotary knobs and a 20x4 LCD",
		Long: `piradio runs the radio appliance: a selector knob walks the mode menu,
a volume knob sets the level and mutes on press, and a character LCD shows
the current mode, menu entry and now-playing details.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	pf := cmd.PersistentFlags()
	pf.StringVar(&opts.configPath, "config", "", "path to a YAML config file (default $PIRADIO_CONFIG)")
	pf.StringVar(&opts.logFile, "log-file", "", "trace log destination")
	pf.BoolVar(&opts.trace, "trace", false, "enable JSON trace logging")
	pf.BoolVar(&opts.dryRun, "dry-run", false, "log system commands instead of running them")
	pf.StringVar(&opts.startupMode, "startup-mode", "", "mode to enter at boot (matched by name)")

	cmd.AddCommand(
		newRunCmd(opts),
		newSimulateCmd(opts),
		newRecoverCmd(opts),
		newConfigCmd(opts),
	)
	return cmd
}

// Execute runs the command tree against args and returns the process exit
// code.
func Execute(args []string, stdout, stderr io.Writer) int {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cmd := newRootCmd()
	cmd.SetArgs(args)
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)
	err := cmd.ExecuteContext(ctx)
	if err == nil {
		return ExitOK
	}
	var cerr configError
	if errors.As(err, &cerr) {
		fmt.Fprintf(stderr, "Configuration error: %v\n", cerr.err)
		return ExitConfig
	}
	logging.Error(err)
	fmt.Fprintf(stderr, "Error: %v\n", err)
	return ExitError
}

// load resolves the configuration for cmd: defaults, then the YAML file, then
// the environment, then any flag the user set explicitly.
func (o *rootOptions) load(cmd *cobra.Command) (config.Config, error) {
	cfg, err := config.Load(o.configPath, os.Environ())
	if err != nil {
		return config.Config{}, configError{err}
	}
	o.apply(cmd, &cfg)
	if err := config.Validate(cfg); err != nil {
		return config.Config{}, configError{err}
	}
	return cfg, nil
}

func (o *rootOptions) apply(cmd *cobra.Command, cfg *config.Config) {
	flags := cmd.Flags()
	if flags.Changed("log-file") {
		cfg.Logging.FilePath = o.logFile
		cfg.Flags["logFile"] = o.logFile
	}
	if flags.Changed("trace") {
		cfg.Logging.Trace = o.trace
		cfg.Flags["trace"] = strconv.FormatBool(o.trace)
	}
	if flags.Changed("dry-run") {
		cfg.DryRun = o.dryRun
		cfg.Flags["dryRun"] = strconv.FormatBool(o.dryRun)
	}
	if flags.Changed("startup-mode") {
		cfg.StartupMode = o.startupMode
		cfg.Flags["startupMode"] = o.startupMode
	}
	cfg.Args = os.Args[1:]
}

// setup loads the configuration and points logging at it.
func (o *rootOptions) setup(cmd *cobra.Command) (config.Config, error) {
	cfg, err := o.load(cmd)
	if err != nil {
		return cfg, err
	}
	logging.Configure(cfg.Logging.FilePath)
	logging.SetTraceEnabled(cfg.Logging.Trace)
	traceStartup(cmd.Name(), cfg)
	return cfg, nil
}
