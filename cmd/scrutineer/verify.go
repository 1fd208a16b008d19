package main

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/ahrav/go-scrutineer/infrastructure/extract"
	"github.com/ahrav/go-scrutineer/infrastructure/middleware"
	"github.com/ahrav/go-scrutineer/internal/application"
	"github.com/ahrav/go-scrutineer/internal/fidelity"
)

type verifyFlags struct {
	filterFlags
	output string
}

func newVerifyCmd(c *cli) *cobra.Command {
	var flags verifyFlags
	cmd := &cobra.Command{
		Use:   "verify <file>",
		Short: "Verify one event document and print the verdicts",
		Long: `Verifies every competition of a single .json/.yaml event document
without storing anything. Exits non-zero when any competition is rejected.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if flags.output != "text" && flags.output != "json" {
				return fmt.Errorf("unknown output %q: want text or json", flags.output)
			}
			cfg, err := c.loadConfig()
			if err != nil {
				return err
			}
			flags.apply(cmd, &cfg.Filter)
			if err := cfg.Validate(); err != nil {
				return err
			}
			filter, err := cfg.Filter.Compile()
			if err != nil {
				return err
			}
			gate, err := fidelity.NewGate(cfg.Gate)
			if err != nil {
				return err
			}

			event, err := extract.NewDocumentExtractor().Extract(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			verdicts := application.VerifyEvent(cmd.Context(), middleware.NewVerificationMonitor(gate), event, filter)
			c.logger.Debug("verified document",
				zap.String("source", args[0]),
				zap.Int("competitions", len(verdicts)))

			if flags.output == "json" {
				err = printVerdictsJSON(cmd.OutOrStdout(), event.Name, verdicts)
			} else {
				err = printVerdictsText(cmd.OutOrStdout(), event.Name, verdicts)
			}
			if err != nil {
				return err
			}
			if !application.AllAccepted(verdicts) {
				return errRejected
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&flags.output, "output", "o", "text", "Output format: text or json")
	flags.register(cmd)
	return cmd
}

func printVerdictsJSON(w io.Writer, event string, verdicts []application.CompetitionVerdict) error {
	if verdicts == nil {
		verdicts = []application.CompetitionVerdict{}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(struct {
		Event        string                           `json:"event"`
		Competitions []application.CompetitionVerdict `json:"competitions"`
	}{event, verdicts})
}

func printVerdictsText(w io.Writer, event string, verdicts []application.CompetitionVerdict) error {
	if _, err := fmt.Fprintf(w, "%s: %d competitions\n", event, len(verdicts)); err != nil {
		return err
	}
	for _, cv := range verdicts {
		status := "ACCEPTED"
		if !cv.Verdict.Accepted {
			status = "REJECTED"
		}
		if _, err := fmt.Fprintf(w, "%-8s %s (%s)\n", status, cv.Key, cv.Name); err != nil {
			return err
		}
		for _, r := range cv.Verdict.Reasons {
			if _, err := fmt.Fprintf(w, "    %s\n", r); err != nil {
				return err
			}
		}
	}
	return nil
}
