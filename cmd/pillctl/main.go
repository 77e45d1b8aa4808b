// Command pillctl checks time parsing and schedule selection offline,
// against a YAML fixture instead of the events table.
package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"pill-dispenser/internal/domain"
	"pill-dispenser/internal/timeparse"
	"pill-dispenser/internal/usecase"
)

type fixture struct {
	Schedules []fixtureSchedule `yaml:"schedules"`
}

type fixtureSchedule struct {
	PillName  string `yaml:"pill_name"`
	Color     string `yaml:"color"`
	Time      string `yaml:"time"`
	Timestamp int64  `yaml:"timestamp"`
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "pillctl",
		Short:         "Offline tools for the pill dispenser backend",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(newParseTimeCmd(), newNextCmd(), newResolveCmd())
	return root
}

func newParseTimeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "parse-time <text>",
		Short: "Parse a spoken time the way the assistant does",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			t, err := timeparse.Parse(strings.Join(args, " "))
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%02d:%02d (%s)\n", t.Hour, t.Minute, t.Format12h())
			return nil
		},
	}
}

func newNextCmd() *cobra.Command {
	var at, path string
	cmd := &cobra.Command{
		Use:   "next",
		Short: "Show which scheduled pill comes up next",
		RunE: func(cmd *cobra.Command, _ []string) error {
			now, err := timeparse.Parse(at)
			if err != nil {
				return fmt.Errorf("--at: %w", err)
			}
			items, err := loadFixture(path)
			if err != nil {
				return err
			}
			next, ok := usecase.NextAssignment(items, now.Minutes())
			if !ok {
				fmt.Fprintln(cmd.OutOrStdout(), "no pills scheduled")
				return nil
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s (%s) at %s\n", next.PillName, next.Color.Spoken(), next.Time.Format12h())
			return nil
		},
	}
	cmd.Flags().StringVar(&at, "at", "", "current local time, e.g. 14:30")
	cmd.Flags().StringVar(&path, "schedule", "", "YAML schedule fixture")
	_ = cmd.MarkFlagRequired("at")
	_ = cmd.MarkFlagRequired("schedule")
	return cmd
}

func newResolveCmd() *cobra.Command {
	var pill, path string
	cmd := &cobra.Command{
		Use:   "resolve",
		Short: "Show the color a dispense request for a pill would use",
		RunE: func(cmd *cobra.Command, _ []string) error {
			items, err := loadFixture(path)
			if err != nil {
				return err
			}
			var matching []domain.ScheduleAssignment
			for _, a := range items {
				if a.PillName == pill {
					matching = append(matching, a)
				}
			}
			latest, ok := usecase.LatestAssignment(matching)
			if !ok {
				return fmt.Errorf("pill %s not found in schedules", pill)
			}
			fmt.Fprintln(cmd.OutOrStdout(), latest.Color)
			return nil
		},
	}
	cmd.Flags().StringVar(&pill, "pill", "", "pill name")
	cmd.Flags().StringVar(&path, "schedule", "", "YAML schedule fixture")
	_ = cmd.MarkFlagRequired("pill")
	_ = cmd.MarkFlagRequired("schedule")
	return cmd
}

func loadFixture(path string) ([]domain.ScheduleAssignment, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read fixture: %w", err)
	}
	var f fixture
	if err := yaml.Unmarshal(raw, &f); err != nil {
		return nil, fmt.Errorf("decode fixture %s: %w", path, err)
	}

	out := make([]domain.ScheduleAssignment, 0, len(f.Schedules))
	for i, s := range f.Schedules {
		color, ok := domain.ParseColor(s.Color)
		if !ok {
			return nil, fmt.Errorf("schedule %d: invalid color %q", i, s.Color)
		}
		t, err := timeparse.Parse(s.Time)
		if err != nil {
			return nil, fmt.Errorf("schedule %d: %w", i, err)
		}
		out = append(out, domain.ScheduleAssignment{
			Timestamp: s.Timestamp,
			PillName:  s.PillName,
			Color:     color,
			Time:      t,
		})
	}
	return out, nil
}
