package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/ahrav/go-scrutineer/internal/application"
	"github.com/ahrav/go-scrutineer/internal/domain"
)

func newMinDancesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "min-dances <level> <date>",
		Short: "Print the minimum number of dances for a level on a date",
		Example: `  scrutineer min-dances D 2026-03-14
  scrutineer min-dances c 2025-12-31`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			level, err := domain.ParseLevel(args[0])
			if err != nil {
				levels := make([]string, 0, len(domain.Levels()))
				for _, l := range domain.Levels() {
					levels = append(levels, string(l))
				}
				if hint := application.Suggest(args[0], levels); hint != "" {
					return fmt.Errorf("%w (did you mean %q?)", err, hint)
				}
				return err
			}
			date, err := time.Parse(time.DateOnly, args[1])
			if err != nil {
				return fmt.Errorf("date %q is not in YYYY-MM-DD form", args[1])
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), domain.MinimumDances(level, date))
			return err
		},
	}
}
