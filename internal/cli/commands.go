package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/xab-mack/smartanalyzer/internal/config"
	"github.com/xab-mack/smartanalyzer/internal/engine"
	"github.com/xab-mack/smartanalyzer/internal/model"
	"github.com/xab-mack/smartanalyzer/internal/report"
	"github.com/xab-mack/smartanalyzer/internal/tui"
)

func AddCommands(root *cobra.Command) {
	root.AddCommand(newScanCmd())
	root.AddCommand(newInitCmd())
	root.AddCommand(newPassesCmd())
	root.AddCommand(newDetectorsCmd())
}

func newLogger(verbosity string) zerolog.Logger {
	level, err := zerolog.ParseLevel(verbosity)
	if err != nil {
		level = zerolog.WarnLevel
	}
	return zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).Level(level).With().Timestamp().Logger()
}

func newScanCmd() *cobra.Command {
	var (
		format        string
		budgetMs      int
		failOn        string
		outputFile    string
		useTUI        bool
		verbosity     string
		baseline      string
		writeBaseline string
	)
	cmd := &cobra.Command{
		Use:   "scan [path]",
		Short: "Scan a project or repository for vulnerabilities",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := "."
			if len(args) > 0 {
				path = args[0]
			}

			cfg, cfgPath, err := config.Load(path)
			if err != nil {
				return fmt.Errorf("loading config %s: %w", cfgPath, err)
			}
			if verbosity != "" {
				cfg.Verbosity = verbosity
			}
			if budgetMs > 0 {
				cfg.TimeBudgetMs = budgetMs
			}
			log := newLogger(cfg.Verbosity)

			eng := engine.New(cfg, log)
			eng.BaselinePath = baseline
			eng.WriteBaselinePath = writeBaseline

			result, err := eng.Scan(cmd.Context(), model.ScanRequest{
				Path:       path,
				TimeBudget: time.Duration(cfg.TimeBudgetMs) * time.Millisecond,
				ConfigPath: cfgPath,
			})
			if err != nil {
				return err
			}

			if useTUI {
				if err := tui.Run(result.Findings); err != nil {
					return err
				}
			} else if err := writeResult(cmd, result, format, outputFile); err != nil {
				return err
			}

			if failOn != "" {
				threshold := model.ParseRisk(failOn)
				for _, f := range result.Findings {
					if model.RiskGTE(f.Risk, threshold) {
						return fmt.Errorf("findings at or above %s risk", threshold)
					}
				}
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&format, "format", "f", "text", "Output format: text, json, sarif, markdown")
	cmd.Flags().IntVar(&budgetMs, "budget-ms", 0, "Time budget in milliseconds (overrides config)")
	cmd.Flags().StringVar(&failOn, "fail-on", "", "Exit non-zero when findings at or above this risk exist")
	cmd.Flags().StringVarP(&outputFile, "output", "o", "", "Write the report to a file instead of stdout")
	cmd.Flags().BoolVar(&useTUI, "tui", false, "Browse findings interactively")
	cmd.Flags().StringVarP(&verbosity, "verbose", "v", "", "Log level: debug, info, warn, error")
	cmd.Flags().StringVar(&baseline, "baseline", "", "Suppress findings recorded in this baseline file")
	cmd.Flags().StringVar(&writeBaseline, "write-baseline", "", "Record current findings to this baseline file")
	return cmd
}

func writeResult(cmd *cobra.Command, result *model.ScanResult, format, outputFile string) error {
	var data []byte
	var err error
	switch format {
	case "json":
		data, err = json.MarshalIndent(result, "", "  ")
	case "sarif":
		data, err = report.ToSARIF(result.Findings)
	case "markdown", "md":
		data = report.ToMarkdown(result)
	default:
		data = renderText(result)
	}
	if err != nil {
		return err
	}
	if outputFile != "" {
		return os.WriteFile(outputFile, data, 0o644)
	}
	_, err = cmd.OutOrStdout().Write(data)
	return err
}
