package report

import (
	"fmt"
	"strings"

	"github.com/xab-mack/smartanalyzer/internal/model"
)

// ToMarkdown renders findings as a human-readable report, grouped in
// emission order.
func ToMarkdown(result *model.ScanResult) []byte {
	var b strings.Builder
	fmt.Fprintf(&b, "# Scan report\n\n%d finding(s) in %s\n\n", len(result.Findings), result.Elapsed.Round(1e6))
	for _, f := range result.Findings {
		fmt.Fprintf(&b, "## %s (%s)\n\n", f.Title, f.DetectorID)
		fmt.Fprintf(&b, "- **Risk:** %s, confidence %s\n", f.Risk, f.Confidence)
		fmt.Fprintf(&b, "- **Location:** %s:%d\n", f.Location.File, f.Location.StartLine)
		if f.Entity != "" {
			fmt.Fprintf(&b, "- **Entity:** `%s`\n", f.Entity)
		}
		for _, id := range f.SWCIDs {
			fmt.Fprintf(&b, "- SWC-%d\n", id)
		}
		for _, id := range f.CWEIDs {
			fmt.Fprintf(&b, "- CWE-%d\n", id)
		}
		if f.Description != "" {
			fmt.Fprintf(&b, "\n%s\n", f.Description)
		}
		if f.Snippet != "" {
			fmt.Fprintf(&b, "\n```solidity\n%s\n```\n", f.Snippet)
		}
		if f.Remediation != "" {
			fmt.Fprintf(&b, "\n**Remediation:** %s\n", f.Remediation)
		}
		b.WriteString("\n")
	}
	if len(result.Passes) > 0 {
		b.WriteString("## Passes\n\n")
		for _, o := range result.Passes {
			fmt.Fprintf(&b, "- %s: %s (%s)\n", o.Pass, o.Status, o.Duration.Round(1e3))
		}
	}
	return []byte(b.String())
}
