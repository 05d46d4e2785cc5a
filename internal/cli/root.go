// Copyright (c) 2025 Jeremy Hahn
// Copyright (c) 2025 Automate The Things, LLC
//
// This file is part of go-twon.
//
// go-twon is dual-licensed:
//
// 1. GNU Affero General Public License v3.0 (AGPL-3.0)
//    See LICENSE file or visit https://www.gnu.org/licenses/agpl-3.0.html
//
// 2. Commercial License
//    Contact licensing@automatethethings.com for commercial licensing options.

// Package cli implements the twon command-line interface.
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"golang.org/x/term"

	"github.com/jeremyhahn/go-twon/internal/config"
	"github.com/jeremyhahn/go-twon/pkg/logging"
	"github.com/jeremyhahn/go-twon/pkg/metrics"
	"github.com/jeremyhahn/go-twon/pkg/twon"
)

// Exit codes returned by Execute
const (
	ExitOK    = 0
	ExitError = 1
	ExitUsage = 2
)

// ErrUsage marks errors caused by invalid command-line usage.
var ErrUsage = errors.New("usage error")

// app carries the state shared by all commands of one invocation.
type app struct {
	stdin  io.Reader
	stdout io.Writer
	stderr io.Writer

	viper  *viper.Viper
	cfg    *config.Config
	logger *logging.Logger

	// configFile is bound to --config
	configFile string

	// source overrides the random source used by split
	source twon.Source

	// isTerminal reports whether a stream is an interactive terminal
	isTerminal func(stream any) bool
}

func newApp(stdin io.Reader, stdout, stderr io.Writer) *app {
	return &app{
		stdin:      stdin,
		stdout:     stdout,
		stderr:     stderr,
		viper:      config.New(),
		logger:     logging.Discard(),
		isTerminal: isTerminal,
	}
}

// isTerminal reports whether stream is an *os.File attached to a terminal.
func isTerminal(stream any) bool {
	f, ok := stream.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

// Execute runs the CLI against the process streams and returns the exit code.
// Cancelling ctx aborts pending storage operations.
func Execute(ctx context.Context) int {
	return run(ctx, newApp(os.Stdin, os.Stdout, os.Stderr), os.Args[1:])
}

// run executes args and maps the outcome to an exit code.
func run(ctx context.Context, a *app, args []string) int {
	cmd := newRootCmd(a)
	cmd.SetArgs(args)

	err := cmd.ExecuteContext(ctx)
	a.writeMetrics()

	switch {
	case err == nil:
		return ExitOK
	case errors.Is(err, ErrUsage):
		if !errors.Is(err, errNoCommand) {
			fmt.Fprintf(a.stderr, "Error: %v\n", err)
		}
		return ExitUsage
	default:
		_ = a.printer(a.stderr).PrintError(err) // best-effort
		return ExitError
	}
}

var errNoCommand = fmt.Errorf("%w: no command given", ErrUsage)

func newRootCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "twon",
		Short: "twon - a simple (2, n) secret sharing tool",
		Long: `twon splits a secret into n shares and requires any two of them to
recover it. The secret becomes the y-intercept of a random line and each
share is a point on that line.

twon uses plain integer arithmetic, not a finite field. A single share
leaks information about the size of the secret; do not rely on it where
that matters.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		Args:          usageArgs(cobra.NoArgs),
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.setup(cmd)
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			cmd.SetOut(a.stderr)
			_ = cmd.Usage()
			return errNoCommand
		},
	}

	cmd.SetIn(a.stdin)
	cmd.SetOut(a.stdout)
	cmd.SetErr(a.stderr)
	cmd.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return fmt.Errorf("%w: %v", ErrUsage, err)
	})

	flags := cmd.PersistentFlags()
	flags.StringVar(&a.configFile, "config", "", "config file (default is $HOME/.twon.yaml)")
	flags.StringP("output", "o", "text", "share output format (text, json, yaml)")
	flags.String("input", "auto", "share input format (auto, text, json, yaml)")
	flags.String("store", "", "storage URL for shares (directory, file:///dir, mem://, redis://host:port/db)")
	flags.Duration("store-ttl", 0, "expire stored shares after this duration (redis only)")
	flags.BoolP("verbose", "v", false, "verbose output")
	flags.String("log-format", "text", "log format (text, json)")
	flags.String("metrics-file", "", "write Prometheus metrics to this file after the command")

	bindings := map[string]string{
		config.KeyOutput:      "output",
		config.KeyInput:       "input",
		config.KeyStore:       "store",
		config.KeyStoreTTL:    "store-ttl",
		config.KeyVerbose:     "verbose",
		config.KeyLogFormat:   "log-format",
		config.KeyMetricsFile: "metrics-file",
	}
	for key, flag := range bindings {
		_ = a.viper.BindPFlag(key, flags.Lookup(flag))
	}

	cmd.AddCommand(newSplitCmd(a))
	cmd.AddCommand(newRecoverCmd(a))
	cmd.AddCommand(newVerifyCmd(a))
	cmd.AddCommand(newVersionCmd(a))

	return cmd
}

// setup resolves configuration and the logger before a command runs.
func (a *app) setup(_ *cobra.Command) error {
	cfg, err := config.Load(a.viper, a.configFile)
	if err != nil {
		return err
	}
	a.cfg = cfg
	a.logger = logging.New(&logging.Options{
		Writer: a.stderr,
		Format: cfg.Log.Format,
		Debug:  cfg.Verbose,
	})
	if cfg.ConfigFile != "" {
		a.logger.Debug("loaded config", "path", cfg.ConfigFile)
	}
	return nil
}

func (a *app) writeMetrics() {
	if a.cfg == nil || a.cfg.MetricsFile == "" {
		return
	}
	if err := metrics.WriteTextfile(a.cfg.MetricsFile); err != nil {
		a.logger.Warn("failed to export metrics", "error", err)
	}
}

// printer returns a Printer for w honoring the configured output format.
func (a *app) printer(w io.Writer) *Printer {
	format := "text"
	if a.cfg != nil {
		format = a.cfg.Output
	} else if v := a.viper.GetString(config.KeyOutput); v != "" {
		format = v
	}
	return NewPrinter(format, w)
}

// usageArgs wraps a cobra argument validator so its failures exit with
// the usage status.
func usageArgs(validate cobra.PositionalArgs) cobra.PositionalArgs {
	return func(cmd *cobra.Command, args []string) error {
		if err := validate(cmd, args); err != nil {
			return fmt.Errorf("%w: %v", ErrUsage, err)
		}
		return nil
	}
}
