package main

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseArgsNoArguments(t *testing.T) {
	_, _, exit := parseArgs([]string{"craft"})
	require.True(t, exit)
}

func TestParseArgsCommandName(t *testing.T) {
	name, help, exit := parseArgs([]string{"craft", "install"})
	require.False(t, exit)
	require.False(t, help)
	require.Equal(t, "install", name)
}

func TestParseArgsHelpFlag(t *testing.T) {
	name, help, exit := parseArgs([]string{"craft", "help", "install"})
	require.False(t, exit)
	require.True(t, help)
	require.Equal(t, "install", name)
}

func TestParseArgsBareHelp(t *testing.T) {
	_, _, exit := parseArgs([]string{"craft", "help"})
	require.True(t, exit)
}

func TestCommandsAreUniquelyNamed(t *testing.T) {
	seen := map[string]bool{}
	for _, cmd := range commands() {
		require.False(t, seen[cmd.Name()], "duplicate command name %q", cmd.Name())
		seen[cmd.Name()] = true
	}
}
