package command_test

import (
	"testing"

	"github.com/couchcryptid/community-census-etl/internal/command"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseCommand(t *testing.T) {
	tests := []struct {
		in   string
		want command.Command
	}{
		{"1", command.CompileAndClear},
		{"2", command.CompileAndKeep},
		{" 3 ", command.ClearCache},
		{"4\r", command.ClearOutput},
		{"5", command.Exit},
		{"compile-clear", command.CompileAndClear},
		{"COMPILE-KEEP", command.CompileAndKeep},
		{"clear-cache", command.ClearCache},
		{"clear-output", command.ClearOutput},
		{"exit", command.Exit},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := command.ParseCommand(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			assert.True(t, got.Valid())
		})
	}
}

func TestParseCommand_Invalid(t *testing.T) {
	for _, in := range []string{"", "0", "6", "12", "abc", "compile"} {
		t.Run(in, func(t *testing.T) {
			_, err := command.ParseCommand(in)
			assert.ErrorIs(t, err, command.ErrUnknownCommand)
		})
	}
}

func TestCommandString(t *testing.T) {
	assert.Equal(t, "clear-cache", command.ClearCache.String())
	assert.Equal(t, "command(9)", command.Command(9).String())
	assert.False(t, command.Command(9).Valid())
	assert.False(t, command.Command(0).Valid())
}
