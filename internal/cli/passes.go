package cli

import (
	"fmt"
	"strings"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/xab-mack/smartanalyzer/internal/detect"
	"github.com/xab-mack/smartanalyzer/internal/detectors"
	"github.com/xab-mack/smartanalyzer/internal/pass"
)

func builtinManager() *detect.Manager {
	m := detect.NewManager(pass.Options{Threads: 1, Log: zerolog.Nop()})
	detectors.RegisterBuiltin(m)
	return m
}

func newPassesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "passes",
		Short: "List built-in analysis passes and their dependencies",
		RunE: func(cmd *cobra.Command, args []string) error {
			for _, p := range builtinManager().AnalysisPasses() {
				meta := p.Metadata()
				deps := make([]string, 0, len(meta.Dependencies))
				for _, d := range meta.Dependencies {
					deps = append(deps, string(d))
				}
				dep := "-"
				if len(deps) > 0 {
					dep = strings.Join(deps, ", ")
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%-16s %-10s %-7s deps: %s\n",
					p.ID(), meta.Level, meta.Representation, dep)
			}
			return nil
		},
	}
}

func newDetectorsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "detectors",
		Short: "List built-in detectors",
		RunE: func(cmd *cobra.Command, args []string) error {
			for _, d := range builtinManager().Detectors() {
				m := d.Meta()
				fmt.Fprintf(cmd.OutOrStdout(), "%-26s %-13s %-7s %s\n", m.ID, m.Risk, m.Confidence, m.Title)
			}
			return nil
		},
	}
}
