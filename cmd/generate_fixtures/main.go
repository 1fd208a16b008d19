// Command generate_fixtures writes a synthetic event document for
// exercising scrutineer runs. Declared ranks are consistent with the
// generated placements unless --mutate corrupts some competitions.
package main

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/ahrav/go-scrutineer/infrastructure/extract"
	"github.com/ahrav/go-scrutineer/internal/testutils"
)

type options struct {
	output       string
	name         string
	date         string
	competitions int
	seed         uint64
	wdsfShare    float64
	mutate       bool
}

func newRootCmd() *cobra.Command {
	cfg := testutils.DefaultGeneratorConfig()
	opts := options{
		output:       "testdata/fixtures/synthetic_open.yaml",
		name:         cfg.Name,
		date:         cfg.Date.Format(time.DateOnly),
		competitions: cfg.Competitions,
		wdsfShare:    cfg.WDSFShare,
	}

	cmd := &cobra.Command{
		Use:           "generate_fixtures",
		Short:         "Write a synthetic event document",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return generate(cmd, opts)
		},
	}
	f := cmd.Flags()
	f.StringVarP(&opts.output, "output", "o", opts.output, "Output file; .json, .yaml or .yml selects the format")
	f.StringVar(&opts.name, "name", opts.name, "Event name")
	f.StringVar(&opts.date, "date", opts.date, "Event date (YYYY-MM-DD)")
	f.IntVarP(&opts.competitions, "competitions", "n", opts.competitions, "Number of competitions")
	f.Uint64Var(&opts.seed, "seed", 0, "Random seed; 0 picks one from the clock")
	f.Float64Var(&opts.wdsfShare, "wdsf-share", opts.wdsfShare, "Fraction of finals scored under the WDSF system")
	f.BoolVar(&opts.mutate, "mutate", false, "Corrupt every other competition so the gate rejects it")
	return cmd
}

func generate(cmd *cobra.Command, opts options) error {
	date, err := time.Parse(time.DateOnly, opts.date)
	if err != nil {
		return fmt.Errorf("date %q is not in YYYY-MM-DD form", opts.date)
	}
	if opts.seed == 0 {
		opts.seed = uint64(time.Now().UnixNano())
	}

	event := testutils.GenerateEvent(testutils.GeneratorConfig{
		Name:         opts.name,
		Date:         date,
		Competitions: opts.competitions,
		WDSFShare:    opts.wdsfShare,
	}, opts.seed)

	corrupted := make(map[string]string)
	if opts.mutate {
		mutations := testutils.Mutations()
		for i := range event.Competitions {
			if i%2 == 0 {
				continue
			}
			c := &event.Competitions[i]
			// Try mutations in rotation until one fits the competition's shape.
			for k := range mutations {
				m := mutations[(i/2+k)%len(mutations)]
				if m.Apply(c) {
					corrupted[c.Key()] = m.Name
					break
				}
			}
		}
	}

	data, err := extract.Encode(event, filepath.Ext(opts.output))
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(opts.output), 0o750); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}
	if err := os.WriteFile(opts.output, data, 0o600); err != nil {
		return fmt.Errorf("write fixture: %w", err)
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Generated %s (seed %d)\n", opts.output, opts.seed)
	fmt.Fprintf(out, "- Competitions: %d\n", len(event.Competitions))
	for _, c := range event.Competitions {
		if name, ok := corrupted[c.Key()]; ok {
			fmt.Fprintf(out, "- %s: corrupted by %s\n", c.Key(), name)
		}
	}
	return nil
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
