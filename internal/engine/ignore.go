package engine

import (
	"bufio"
	"os"
	"path/filepath"
	"strings"

	"github.com/xab-mack/smartanalyzer/internal/config"
	"github.com/xab-mack/smartanalyzer/internal/model"
)

// applyIgnores filters findings based on config ignore rules and
// inline suppression markers.
func applyIgnores(findings []model.Finding, cfg config.Config) []model.Finding {
	var out []model.Finding
	for _, f := range findings {
		if isIgnored(f, cfg) {
			continue
		}
		out = append(out, f)
	}
	return out
}

func isIgnored(f model.Finding, cfg config.Config) bool {
	for _, ig := range cfg.Ignore {
		if ig.Detector != "" && !strings.EqualFold(ig.Detector, f.DetectorID) {
			continue
		}
		if ig.Path != "" {
			if !strings.HasPrefix(filepath.ToSlash(f.Location.File), filepath.ToSlash(ig.Path)) {
				continue
			}
		}
		return true
	}
	return hasInlineSuppression(f.Location.File, f.DetectorID, f.Location.StartLine)
}

// hasInlineSuppression looks around the finding location for a
// suppression comment of the form: // analyzer:ignore DETECTOR_ID
func hasInlineSuppression(filePath, detectorID string, startLine int) bool {
	file, err := os.Open(filePath)
	if err != nil {
		return false
	}
	defer file.Close()
	var lines []string
	s := bufio.NewScanner(file)
	for s.Scan() {
		lines = append(lines, s.Text())
	}
	if len(lines) == 0 {
		return false
	}
	from := max(0, startLine-1-5)
	to := min(len(lines)-1, startLine)
	needle := "analyzer:ignore " + detectorID
	for i := from; i <= to; i++ {
		if strings.Contains(lines[i], needle) {
			return true
		}
	}
	return false
}
