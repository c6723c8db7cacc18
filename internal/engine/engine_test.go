package engine

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xab-mack/smartanalyzer/internal/config"
	"github.com/xab-mack/smartanalyzer/internal/model"
)

const vulnerableVault = `pragma solidity ^0.8.0;

contract Vault {
    mapping(address => uint256) balances;
    address owner;

    function withdraw(uint256 amount) public {
        require(tx.origin == owner);
        msg.sender.call{value: amount}("");
        balances[msg.sender] = balances[msg.sender] - amount;
    }
}
`

func writeProject(t *testing.T, source string) string {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "vault.sol"), []byte(source), 0o644))
	return dir
}

func testConfig() config.Config {
	cfg := config.Default()
	cfg.Threads = 2
	return cfg
}

func detectorIDs(findings []model.Finding) map[string]int {
	out := map[string]int{}
	for _, f := range findings {
		out[f.DetectorID]++
	}
	return out
}

func TestScanFindsVulnerabilities(t *testing.T) {
	t.Parallel()

	dir := writeProject(t, vulnerableVault)
	e := New(testConfig(), zerolog.Nop())

	res, err := e.Scan(context.Background(), model.ScanRequest{Path: dir})
	require.NoError(t, err)

	ids := detectorIDs(res.Findings)
	assert.Contains(t, ids, "tx-origin-auth")
	assert.Contains(t, ids, "unchecked-call")
	assert.Contains(t, ids, "reentrancy")

	for _, f := range res.Findings {
		assert.NotEmpty(t, f.Fingerprint, "finding %s has no fingerprint", f.DetectorID)
		assert.NotEmpty(t, f.Location.File)
		assert.Positive(t, f.Location.StartLine)
		assert.NotEmpty(t, f.Risk)
	}
	assert.NotEmpty(t, res.Passes)
}

func TestScanRiskThreshold(t *testing.T) {
	t.Parallel()

	dir := writeProject(t, vulnerableVault)
	cfg := testConfig()
	cfg.RiskThreshold = "high"
	e := New(cfg, zerolog.Nop())

	res, err := e.Scan(context.Background(), model.ScanRequest{Path: dir})
	require.NoError(t, err)

	ids := detectorIDs(res.Findings)
	assert.Contains(t, ids, "tx-origin-auth") // high
	assert.NotContains(t, ids, "unchecked-call") // medium
}

func TestScanDetectorAllowlist(t *testing.T) {
	t.Parallel()

	dir := writeProject(t, vulnerableVault)
	cfg := testConfig()
	cfg.Detectors = []string{"unchecked-call"}
	e := New(cfg, zerolog.Nop())

	res, err := e.Scan(context.Background(), model.ScanRequest{Path: dir})
	require.NoError(t, err)

	require.NotEmpty(t, res.Findings)
	for _, f := range res.Findings {
		assert.Equal(t, "unchecked-call", f.DetectorID)
	}
}

func TestScanIgnoreRule(t *testing.T) {
	t.Parallel()

	dir := writeProject(t, vulnerableVault)
	cfg := testConfig()
	cfg.Ignore = []config.IgnoreRule{{Detector: "reentrancy", Reason: "guarded elsewhere"}}
	e := New(cfg, zerolog.Nop())

	res, err := e.Scan(context.Background(), model.ScanRequest{Path: dir})
	require.NoError(t, err)

	ids := detectorIDs(res.Findings)
	assert.NotContains(t, ids, "reentrancy")
	assert.Contains(t, ids, "tx-origin-auth")
}

func TestScanInlineSuppression(t *testing.T) {
	t.Parallel()

	src := `contract Vault {
    address owner;

    function check() public {
        // analyzer:ignore tx-origin-auth
        require(tx.origin == owner);
    }
}
`
	dir := writeProject(t, src)
	e := New(testConfig(), zerolog.Nop())

	res, err := e.Scan(context.Background(), model.ScanRequest{Path: dir})
	require.NoError(t, err)
	assert.NotContains(t, detectorIDs(res.Findings), "tx-origin-auth")
}

func TestScanBaselineSuppressesKnownFindings(t *testing.T) {
	t.Parallel()

	dir := writeProject(t, vulnerableVault)
	baselinePath := filepath.Join(t.TempDir(), "baseline.json")

	first := New(testConfig(), zerolog.Nop())
	first.WriteBaselinePath = baselinePath
	res1, err := first.Scan(context.Background(), model.ScanRequest{Path: dir})
	require.NoError(t, err)
	require.NotEmpty(t, res1.Findings)

	second := New(testConfig(), zerolog.Nop())
	second.BaselinePath = baselinePath
	res2, err := second.Scan(context.Background(), model.ScanRequest{Path: dir})
	require.NoError(t, err)
	assert.Empty(t, res2.Findings)
}

func TestScanDeterministic(t *testing.T) {
	t.Parallel()

	dir := writeProject(t, vulnerableVault)
	e := New(testConfig(), zerolog.Nop())

	res1, err := e.Scan(context.Background(), model.ScanRequest{Path: dir})
	require.NoError(t, err)
	res2, err := e.Scan(context.Background(), model.ScanRequest{Path: dir})
	require.NoError(t, err)

	assert.Equal(t, res1.Findings, res2.Findings)
}

func TestScanEmptyDirectory(t *testing.T) {
	t.Parallel()

	e := New(testConfig(), zerolog.Nop())
	res, err := e.Scan(context.Background(), model.ScanRequest{Path: t.TempDir()})
	require.NoError(t, err)
	assert.Empty(t, res.Findings)
	assert.NotEmpty(t, res.Passes)
}
