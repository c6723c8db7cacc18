package config

import (
	"os"
	"path/filepath"
	"runtime"

	"gopkg.in/yaml.v3"
)

const FileName = ".smartanalyzer.yaml"

type IgnoreRule struct {
	Detector string `yaml:"detector"`
	Path     string `yaml:"path"`
	Reason   string `yaml:"reason"`
	Expires  string `yaml:"expires"`
}

// Config is the explicit configuration value threaded into the engine
// and managers at construction.
type Config struct {
	RiskThreshold string       `yaml:"riskThreshold"`
	Threads       int          `yaml:"threads"`
	Verbosity     string       `yaml:"verbosity"`
	TimeBudgetMs  int          `yaml:"timeBudgetMs"`
	Detectors     []string     `yaml:"detectors"`
	Ignore        []IgnoreRule `yaml:"ignore"`
	GoPackageDirs []string     `yaml:"goPackageDirs"`
}

func Default() Config {
	return Config{
		RiskThreshold: "low",
		Threads:       runtime.NumCPU(),
		Verbosity:     "warn",
		TimeBudgetMs:  30000,
	}
}

// Load searches upward from startDir for a config file. Absence is
// not an error: the default config is returned with an empty path.
func Load(startDir string) (Config, string, error) {
	cfg := Default()
	dir := startDir
	for {
		candidate := filepath.Join(dir, FileName)
		if _, err := os.Stat(candidate); err == nil {
			b, err := os.ReadFile(candidate)
			if err != nil {
				return cfg, candidate, err
			}
			if err := yaml.Unmarshal(b, &cfg); err != nil {
				return cfg, candidate, err
			}
			if cfg.Threads < 1 {
				cfg.Threads = runtime.NumCPU()
			}
			return cfg, candidate, nil
		}
		parent := filepath.Dir(dir)
		if parent == dir { // reached root
			break
		}
		dir = parent
	}
	return cfg, "", nil
}

// Write saves cfg to dir as the canonical config file.
func Write(cfg Config, dir string) (string, error) {
	b, err := yaml.Marshal(cfg)
	if err != nil {
		return "", err
	}
	path := filepath.Join(dir, FileName)
	return path, os.WriteFile(path, b, 0o644)
}
