package cli

import (
	"fmt"
	"strings"

	"github.com/fatih/color"

	"github.com/xab-mack/smartanalyzer/internal/model"
)

var (
	highColor = color.New(color.FgRed, color.Bold)
	medColor  = color.New(color.FgYellow)
	lowColor  = color.New(color.FgCyan)
)

func riskColor(r model.Risk) *color.Color {
	switch r {
	case model.RiskCritical, model.RiskHigh:
		return highColor
	case model.RiskMedium:
		return medColor
	}
	return lowColor
}

func renderText(result *model.ScanResult) []byte {
	var b strings.Builder
	for _, f := range result.Findings {
		fmt.Fprintf(&b, "%s %s:%d %s [%s]\n",
			riskColor(f.Risk).Sprintf("%-13s", strings.ToUpper(string(f.Risk))),
			f.Location.File, f.Location.StartLine, f.Title, f.DetectorID)
	}
	fmt.Fprintf(&b, "\n%d finding(s), %d pass(es) in %s\n",
		len(result.Findings), len(result.Passes), result.Elapsed.Round(1e6))
	return []byte(b.String())
}
