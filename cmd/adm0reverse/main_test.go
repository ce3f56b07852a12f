package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunBuildWritesGeneratedHeader(t *testing.T) {
	out := filepath.Join(t.TempDir(), "generated.go")
	err := runBuild([]string{"-p", "0", "-o", out, "--mock-oracle", "simple", "--namespace", "Smoke"})
	require.NoError(t, err)

	src, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Contains(t, string(src), "package adm0data")
	assert.Contains(t, string(src), "func SmokeCountryID(lat, lon float64) uint16")
}

func TestRunBuildRejectsMissingOutputFlag(t *testing.T) {
	err := runBuild([]string{"-p", "0"})
	assert.Error(t, err)
}

func TestRunBuildRejectsUnknownMockOracle(t *testing.T) {
	out := filepath.Join(t.TempDir(), "generated.go")
	err := runBuild([]string{"-p", "0", "-o", out, "--mock-oracle", "bogus"})
	assert.Error(t, err)
}

func TestRunStatsSucceedsAgainstCompositeOracle(t *testing.T) {
	err := runStats([]string{"-p", "0", "--mock-oracle", "composite"})
	assert.NoError(t, err)
}
