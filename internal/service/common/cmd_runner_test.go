package common

import (
	"context"
	"errors"
	"os/exec"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRealCmdRunner_Run(t *testing.T) {
	if _, err := exec.LookPath("sh"); err != nil {
		t.Skip("sh not available")
	}

	runner := NewCmdRunner()

	t.Run("captures stdout", func(t *testing.T) {
		out, err := runner.Run(context.Background(), "sh", "-c", "printf hello")
		require.NoError(t, err)
		assert.Equal(t, "hello", string(out))
	})

	t.Run("attaches stderr on failure", func(t *testing.T) {
		_, err := runner.Run(context.Background(), "sh", "-c", "echo 'ERROR: Private video' >&2; exit 1")
		require.Error(t, err)

		var cmdErr *CommandError
		require.True(t, errors.As(err, &cmdErr))
		assert.Equal(t, "sh", cmdErr.Name)
		assert.Equal(t, "ERROR: Private video", cmdErr.Stderr)
		assert.Contains(t, err.Error(), "stderr: ERROR: Private video")
	})
}
