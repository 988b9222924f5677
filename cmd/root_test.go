package cmd

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRootCommand_SubcommandsRegistered(t *testing.T) {
	names := map[string]bool{}
	for _, c := range rootCmd.Commands() {
		names[c.Name()] = true
	}
	assert.True(t, names["sweep"], "sweep subcommand must be registered")
	assert.True(t, names["analyze"], "analyze subcommand must be registered")
	assert.True(t, names["defenses"], "defenses subcommand must be registered")
}

func TestSweepCommand_RequiredFlags(t *testing.T) {
	flag := sweepCmd.Flags().Lookup("grid")
	if assert.NotNil(t, flag, "sweep must expose --grid") {
		assert.Equal(t, "", flag.DefValue)
	}
	assert.NotNil(t, sweepCmd.Flags().Lookup("out"))
	assert.NotNil(t, sweepCmd.Flags().Lookup("seeds"))
	assert.NotNil(t, sweepCmd.Flags().Lookup("duration"))
	assert.NotNil(t, sweepCmd.Flags().Lookup("workers"))
}

func TestAnalyzeCommand_RequiredFlags(t *testing.T) {
	assert.NotNil(t, analyzeCmd.Flags().Lookup("trials"))
	assert.NotNil(t, analyzeCmd.Flags().Lookup("out"))
}
