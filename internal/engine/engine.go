package engine

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"

	"github.com/xab-mack/smartanalyzer/internal/analysis"
	"github.com/xab-mack/smartanalyzer/internal/config"
	"github.com/xab-mack/smartanalyzer/internal/detect"
	"github.com/xab-mack/smartanalyzer/internal/detectors"
	"github.com/xab-mack/smartanalyzer/internal/ir"
	"github.com/xab-mack/smartanalyzer/internal/model"
	"github.com/xab-mack/smartanalyzer/internal/pass"
	"github.com/xab-mack/smartanalyzer/internal/solidity"
)

// Engine ties the front-end, the detection manager, and the result
// filters together behind one Scan call.
type Engine struct {
	cfg config.Config
	log zerolog.Logger

	// BaselinePath, when set, suppresses findings fingerprinted in an
	// earlier run; WriteBaselinePath records the current run instead.
	BaselinePath      string
	WriteBaselinePath string
}

func New(cfg config.Config, log zerolog.Logger) *Engine {
	return &Engine{cfg: cfg, log: log}
}

func (e *Engine) Scan(ctx context.Context, req model.ScanRequest) (*model.ScanResult, error) {
	start := time.Now()
	if req.TimeBudget > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, req.TimeBudget)
		defer cancel()
	}

	files := discoverFiles(req.Path)
	e.log.Info().Int("files", len(files)).Str("path", req.Path).Msg("scanning")

	program := &ir.Program{}
	for _, f := range files {
		b, err := os.ReadFile(f)
		if err != nil {
			e.log.Warn().Str("file", f).Err(err).Msg("unreadable, skipping")
			continue
		}
		unit, err := solidity.Parse(filepath.ToSlash(f), string(b))
		if err != nil {
			e.log.Warn().Str("file", f).Err(err).Msg("front-end failed, skipping")
			continue
		}
		program.Units = append(program.Units, unit)
	}

	actx := analysis.NewContext(program)
	actx.GoPackageDirs = e.cfg.GoPackageDirs

	mgr := detect.NewManager(pass.Options{Threads: e.cfg.Threads, Log: e.log})
	detectors.RegisterBuiltin(mgr)

	result, err := mgr.Run(ctx, actx)
	if err != nil {
		return nil, err
	}

	findings := result.Findings
	findings = filterByDetectors(findings, e.cfg)
	findings = filterByRisk(findings, e.cfg)
	findings = applyIgnores(findings, e.cfg)

	if e.BaselinePath != "" {
		base, err := loadBaseline(e.BaselinePath)
		if err != nil {
			e.log.Warn().Str("baseline", e.BaselinePath).Err(err).Msg("baseline unreadable, ignoring")
		}
		findings = filterByBaseline(findings, base)
	}
	if e.WriteBaselinePath != "" {
		if err := writeBaseline(e.WriteBaselinePath, findings); err != nil {
			e.log.Warn().Str("baseline", e.WriteBaselinePath).Err(err).Msg("could not write baseline")
		}
	}

	return &model.ScanResult{
		Findings: findings,
		Passes:   result.Report.Outcomes,
		Elapsed:  time.Since(start),
	}, nil
}

// discoverFiles returns the Solidity sources under root.
func discoverFiles(root string) []string {
	var out []string
	_ = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil || d.IsDir() {
			return nil
		}
		if filepath.Ext(d.Name()) == ".sol" {
			out = append(out, path)
		}
		return nil
	})
	return out
}
