package model

import "time"

type Language string

const (
	LangSolidity Language = "solidity"
	LangGo       Language = "go"
)

// BugKind classifies what a finding asks the author to do about it.
type BugKind string

const (
	KindVulnerability BugKind = "vulnerability"
	KindRefactoring   BugKind = "refactoring"
	KindOptimization  BugKind = "optimization"
)

// Risk is the severity of a finding.
type Risk string

const (
	RiskInformational Risk = "informational"
	RiskLow           Risk = "low"
	RiskMedium        Risk = "medium"
	RiskHigh          Risk = "high"
	RiskCritical      Risk = "critical"
)

func ParseRisk(s string) Risk {
	switch s {
	case string(RiskCritical):
		return RiskCritical
	case string(RiskHigh):
		return RiskHigh
	case string(RiskMedium):
		return RiskMedium
	case string(RiskLow):
		return RiskLow
	default:
		return RiskInformational
	}
}

func riskOrder(r Risk) int {
	switch r {
	case RiskCritical:
		return 5
	case RiskHigh:
		return 4
	case RiskMedium:
		return 3
	case RiskLow:
		return 2
	default:
		return 1
	}
}

func RiskGTE(a, b Risk) bool { return riskOrder(a) >= riskOrder(b) }

// Confidence expresses how certain a detector is about its findings.
type Confidence string

const (
	ConfidenceLow    Confidence = "low"
	ConfidenceMedium Confidence = "medium"
	ConfidenceHigh   Confidence = "high"
)

// Location points at a region of a source file, 1-based lines.
type Location struct {
	File      string `json:"file"`
	StartLine int    `json:"startLine"`
	EndLine   int    `json:"endLine"`
}

/// DetectorMeta is the fixed metadata a detector carries: taxonomy,
// external classification ids, and remediation guidance.
type DetectorMeta struct {
	ID             string     `json:"id"`
	Title          string     `json:"title"`
	Kind           BugKind    `json:"kind"`
	Risk           Risk       `json:"risk"`
	Confidence     Confidence `json:"confidence"`
	CWEIDs         []int      `json:"cweIds,omitempty"`
	SWCIDs         []int      `json:"swcIds,omitempty"`
	Recommendation string     `json:"recommendation,omitempty"`
	References     []string   `json:"references,omitempty"`
}

// Finding is one reported defect. Immutable once constructed.
type Finding struct {
	DetectorID  string     `json:"detectorId"`
	Title       string     `json:"title"`
	Description string     `json:"description,omitempty"`
	Kind        BugKind    `json:"kind"`
	Risk        Risk       `json:"risk"`
	Confidence  Confidence `json:"confidence"`
	Location    Location   `json:"location"`
	Entity      string     `json:"entity,omitempty"`
	Snippet     string     `json:"snippet,omitempty"`
	CWEIDs      []int      `json:"cweIds,omitempty"`
	SWCIDs      []int      `json:"swcIds,omitempty"`
	Remediation string     `json:"remediation,omitempty"`
	References  []string   `json:"references,omitempty"`
	Fingerprint string     `json:"fingerprint"`
}

type ScanRequest struct {
	Path       string
	TimeBudget time.Duration
	ConfigPath string
}

type ScanResult struct {
	Findings []Finding     `json:"findings"`
	Passes   []PassOutcome `json:"passes"`
	Elapsed  time.Duration `json:"elapsed"`
}

// PassStatus is the terminal state of one pass in a run.
type PassStatus string

const (
	PassSucceeded PassStatus = "succeeded"
	PassFailed    PassStatus = "failed"
	PassSkipped   PassStatus = "skipped"
	PassBlocked   PassStatus = "blocked"
)

// PassOutcome records how a single pass ended, for the run report.
type PassOutcome struct {
	Pass     string        `json:"pass"`
	Status   PassStatus    `json:"status"`
	Error    string        `json:"error,omitempty"`
	Duration time.Duration `json:"duration"`
}
