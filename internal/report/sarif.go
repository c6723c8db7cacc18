package report

import (
	"encoding/json"

	"github.com/xab-mack/smartanalyzer/internal/model"
)

type sarif struct {
	Version string     `json:"version"`
	Runs    []sarifRun `json:"runs"`
}

type sarifRun struct {
	Tool    sarifTool     `json:"tool"`
	Results []sarifResult `json:"results"`
}

type sarifTool struct {
	Driver sarifDriver `json:"driver"`
}
type sarifDriver struct {
	Name string `json:"name"`
}

type sarifResult struct {
	RuleID    string       `json:"ruleId"`
	Level     string       `json:"level"`
	Message   sarifMessage `json:"message"`
	Locations []sarifLoc   `json:"locations"`
}

type sarifMessage struct {
	Text string `json:"text"`
}
type sarifLoc struct {
	Physical sarifPhys `json:"physicalLocation"`
}
type sarifPhys struct {
	ArtifactLocation sarifArt    `json:"artifactLocation"`
	Region           sarifRegion `json:"region"`
}
type sarifArt struct {
	URI string `json:"uri"`
}
type sarifRegion struct {
	StartLine int `json:"startLine"`
	EndLine   int `json:"endLine"`
}

func ToSARIF(findings []model.Finding) ([]byte, error) {
	var results []sarifResult
	for _, f := range findings {
		level := "note"
		switch f.Risk {
		case model.RiskMedium:
			level = "warning"
		case model.RiskHigh, model.RiskCritical:
			level = "error"
		}
		text := f.Title
		if f.Description != "" {
			text = f.Description
		}
		results = append(results, sarifResult{
			RuleID:  f.DetectorID,
			Level:   level,
			Message: sarifMessage{Text: text},
			Locations: []sarifLoc{{Physical: sarifPhys{
				ArtifactLocation: sarifArt{URI: f.Location.File},
				Region:           sarifRegion{StartLine: f.Location.StartLine, EndLine: f.Location.EndLine},
			}}},
		})
	}
	s := sarif{Version: "2.1.0", Runs: []sarifRun{{Tool: sarifTool{Driver: sarifDriver{Name: "smartanalyzer"}}, Results: results}}}
	return json.MarshalIndent(s, "", "  ")
}
