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
	assert.Equal(t, "lanchat", cmd.Use)
	assert.Contains(t, cmd.Long, "chat room")
}

func TestCommandPresence(t *testing.T) {
	cmd := NewRootCommand()
	commands := []string{"chat", "nick", "upload", "roster", "stats", "bot"}

	for _, cmdName := range commands {
		t.Run(cmdName, func(t *testing.T) {
			subCmd, _, err := cmd.Find([]string{cmdName})
			require.NoError(t, err, "Command %s should exist", cmdName)
			require.NotNil(t, subCmd)
			assert.Equal(t, cmdName, subCmd.Name())
		})
	}
}

func TestGlobalFlags(t *testing.T) {
	t.Setenv("LANCHAT_SERVER", "")
	cmd := NewRootCommand()

	serverFlag := cmd.PersistentFlags().Lookup("server")
	require.NotNil(t, serverFlag)
	assert.Equal(t, "s", serverFlag.Shorthand)
	assert.Equal(t, DefaultServer, serverFlag.DefValue)

	formatFlag := cmd.PersistentFlags().Lookup("format")
	require.NotNil(t, formatFlag)
	assert.Equal(t, "text", formatFlag.DefValue)
}

func TestServerFromEnvironment(t *testing.T) {
	t.Setenv("LANCHAT_SERVER", "http://10.0.0.5:3000")
	cmd := NewRootCommand()
	assert.Equal(t, "http://10.0.0.5:3000", cmd.PersistentFlags().Lookup("server").DefValue)
}

func TestChatCommandFlags(t *testing.T) {
	cmd := NewRootCommand()
	chatCmd, _, err := cmd.Find([]string{"chat"})
	require.NoError(t, err)

	nickFlag := chatCmd.Flags().Lookup("nick")
	require.NotNil(t, nickFlag)
	assert.Equal(t, "n", nickFlag.Shorthand)
	assert.Equal(t, "", nickFlag.DefValue)
}

func TestInvalidFormat(t *testing.T) {
	cmd := NewRootCommand()
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{"nick", "--format", "xml"})

	err := cmd.Execute()
	require.Error(t, err)
	assert.Contains(t, err.Error(), `invalid format "xml"`)
}

func TestUploadRequiresArgument(t *testing.T) {
	cmd := NewRootCommand()
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{"upload"})
	assert.Error(t, cmd.Execute())
}
