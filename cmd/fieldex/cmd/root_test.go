package cmd

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRootCommand(t *testing.T) {
	assert.NotNil(t, rootCmd)
	assert.Equal(t, "fieldex", rootCmd.Use)
	assert.NotEmpty(t, rootCmd.Short)
	assert.NotEmpty(t, rootCmd.Long)
}

func TestRootCommandHelp(t *testing.T) {
	output, err := runCommand(t, "--help")
	require.NoError(t, err)

	assert.Contains(t, output, "structured key-value fields")
	assert.Contains(t, output, "Available Commands:")
	assert.Contains(t, output, "Usage:")
}

func TestRootCommandVersion(t *testing.T) {
	output, err := runCommand(t, "--version")
	require.NoError(t, err)

	assert.Contains(t, output, "fieldex version")
}

func TestRootCommandVersionAfterHelp(t *testing.T) {
	_, err := runCommand(t, "--help")
	require.NoError(t, err)

	output, err := runCommand(t, "--version")
	require.NoError(t, err)
	assert.Contains(t, output, "fieldex version")
}

func TestGetRootCommand(t *testing.T) {
	assert.Same(t, rootCmd, GetRootCommand())
}

func TestRegisteredSubcommands(t *testing.T) {
	names := make(map[string]bool)
	for _, c := range rootCmd.Commands() {
		names[c.Name()] = true
	}
	assert.True(t, names["extract"])
	assert.True(t, names["serve"])
	assert.True(t, names["schema"])
}
