package cli

import (
	"errors"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"
	"gopkg.in/yaml.v3"

	"github.com/atomicstack/piradio/internal/app"
	"github.com/atomicstack/piradio/internal/logging"
)

func newRunCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "run",
		Short: "Run the radio on the Raspberry Pi hardware",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := opts.setup(cmd)
			if err != nil {
				return err
			}
			logging.SetConsole(cmd.ErrOrStderr())
			return app.Run(cmd.Context(), cfg)
		},
	}
}

func newSimulateCmd(opts *rootOptions) *cobra.Command {
	var live bool
	cmd := &cobra.Command{
		Use:   "simulate",
		Short: "Run the radio against a terminal LCD and keyboard knobs",
		Long: `simulate drives the radio from the keyboard: left/right turn the selector,
enter presses it, up/down turn the volume knob and m mutes.

System commands are logged rather than executed unless --live is given.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := opts.setup(cmd)
			if err != nil {
				return err
			}
			if !term.IsTerminal(int(os.Stdout.Fd())) {
				return errors.New("simulate needs an interactive terminal on stdout")
			}
			if !live {
				cfg.DryRun = true
			}
			return app.Simulate(cmd.Context(), cfg)
		},
	}
	cmd.Flags().BoolVar(&live, "live", false, "execute system commands for real")
	return cmd
}

func newRecoverCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "recover",
		Short: "Watch both knob buttons and restart the radio service when they are held",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := opts.setup(cmd)
			if err != nil {
				return err
			}
			logging.SetConsole(cmd.ErrOrStderr())
			return app.Recover(cmd.Context(), cfg)
		},
	}
}

func newConfigCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Validate and print the effective configuration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := opts.load(cmd)
			if err != nil {
				return err
			}
			enc := yaml.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent(2)
			if err := enc.Encode(cfg); err != nil {
				return err
			}
			return enc.Close()
		},
	}
}
