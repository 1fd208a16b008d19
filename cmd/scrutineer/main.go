// Package main is the scrutineer command line: it verifies dance
// competition results and files them into an accepted or quarantined tree.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/ahrav/go-scrutineer/internal/application"
)

// errRejected signals that at least one competition failed verification.
// The verdicts have already been printed, so main only sets the exit code.
var errRejected = errors.New("competition rejected")

// cli carries the state shared by all subcommands.
type cli struct {
	configPath string
	verbose    bool
	logger     *zap.Logger
}

// loadConfig reads --config (or only the environment when unset).
func (c *cli) loadConfig() (*application.Config, error) {
	return application.LoadConfig(c.configPath)
}

func newRootCmd() *cobra.Command {
	c := &cli{logger: zap.NewNop()}

	root := &cobra.Command{
		Use:   "scrutineer",
		Short: "Verify ballroom competition results before they are published",
		Long: `scrutineer re-checks extracted dance competition results.

Every competition passes the fidelity gate: structural checks, the
Minimum-Dances Policy, data completeness, WDSF score math, round
progression and, for placement finals, a full Skating System
recomputation of the published ranks. Accepted competitions are stored,
rejected ones are quarantined next to the reasons.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			config := zap.NewProductionConfig()
			if c.verbose {
				config.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
			}
			logger, err := config.Build()
			if err != nil {
				return fmt.Errorf("failed to initialize logger: %w", err)
			}
			c.logger = logger
			return nil
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			_ = c.logger.Sync()
		},
	}

	root.PersistentFlags().StringVarP(&c.configPath, "config", "c", "", "YAML configuration file")
	root.PersistentFlags().BoolVarP(&c.verbose, "verbose", "v", false, "Enable debug logging")

	root.AddCommand(newRunCmd(c))
	root.AddCommand(newVerifyCmd(c))
	root.AddCommand(newMinDancesCmd())
	return root
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := newRootCmd().ExecuteContext(ctx)
	stop()
	if err != nil {
		if !errors.Is(err, errRejected) {
			fmt.Fprintln(os.Stderr, "Error:", err)
		}
		os.Exit(1)
	}
}
