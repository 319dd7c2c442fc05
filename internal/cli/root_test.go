package cli

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRootCommand(t *testing.T) {
	cmd := NewRootCommand()
	require.NotNil(t, cmd)
	assert.Equal(t, "solir", cmd.Use)
	assert.Contains(t, cmd.Long, "standard-JSON")
}

func TestCommandPresence(t *testing.T) {
	cmd := NewRootCommand()
	commands := [][]string{
		{"build"},
		{"hierarchy"},
		{"invalidate"},
		{"index", "contracts"},
		{"index", "descendants"},
		{"index", "find"},
		{"index", "check"},
	}

	for _, path := range commands {
		t.Run(path[len(path)-1], func(t *testing.T) {
			subCmd, _, err := cmd.Find(path)
			require.NoError(t, err, "Command %v should exist", path)
			require.NotNil(t, subCmd)
			assert.Equal(t, path[len(path)-1], subCmd.Name())
		})
	}
}

func TestGlobalFlags(t *testing.T) {
	cmd := NewRootCommand()

	verboseFlag := cmd.PersistentFlags().Lookup("verbose")
	require.NotNil(t, verboseFlag)
	assert.Equal(t, "v", verboseFlag.Shorthand)
	assert.Equal(t, "false", verboseFlag.DefValue)

	formatFlag := cmd.PersistentFlags().Lookup("format")
	require.NotNil(t, formatFlag)
	assert.Equal(t, "text", formatFlag.DefValue)

	configFlag := cmd.PersistentFlags().Lookup("config")
	require.NotNil(t, configFlag)
	assert.Equal(t, "c", configFlag.Shorthand)
	assert.Equal(t, "", configFlag.DefValue)
}

func TestBuildCommandFlags(t *testing.T) {
	cmd := NewRootCommand()
	buildCmd, _, err := cmd.Find([]string{"build"})
	require.NoError(t, err)

	rootFlag := buildCmd.Flags().Lookup("root")
	require.NotNil(t, rootFlag)
	assert.Equal(t, ".", rootFlag.DefValue)

	dbFlag := buildCmd.Flags().Lookup("db")
	require.NotNil(t, dbFlag)
	// empty falls back to store_path
	assert.Equal(t, "", dbFlag.DefValue)

	assert.NotNil(t, buildCmd.Flags().Lookup("no-index"))
	assert.NotNil(t, buildCmd.Flags().Lookup("dump"))
}

func TestIndexCommandFlags(t *testing.T) {
	cmd := NewRootCommand()
	findCmd, _, err := cmd.Find([]string{"index", "find"})
	require.NoError(t, err)

	// inherited from the index command
	assert.NotNil(t, findCmd.InheritedFlags().Lookup("db"))
	assert.NotNil(t, findCmd.InheritedFlags().Lookup("unit"))
}

func TestInvalidateCommandFlags(t *testing.T) {
	cmd := NewRootCommand()
	invCmd, _, err := cmd.Find([]string{"invalidate"})
	require.NoError(t, err)

	rebuildFlag := invCmd.Flags().Lookup("rebuild")
	require.NotNil(t, rebuildFlag)
	assert.Equal(t, "false", rebuildFlag.DefValue)
}

func TestInvalidFormat(t *testing.T) {
	cmd := NewRootCommand()
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{"--format", "xml", "index", "contracts"})

	err := cmd.Execute()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid format")
}
