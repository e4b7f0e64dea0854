package clipboard

import (
	"errors"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClipboardError(t *testing.T) {
	err := NewClipboardError()

	assert.Equal(t, runtime.GOOS, err.OS)
	assert.NotEmpty(t, err.Error())

	var clipErr *ClipboardError
	assert.True(t, errors.As(err, &clipErr))
}

func TestGetInstallInstructions(t *testing.T) {
	instructions := GetInstallInstructions()
	require.NotEmpty(t, instructions)

	switch runtime.GOOS {
	case "linux":
		assert.Contains(t, instructions, "xclip")
	case "darwin":
		assert.Contains(t, instructions, "pbcopy")
	case "windows":
		assert.Contains(t, instructions, "clip")
	}
}

func TestClipboard_CopyWithFallback(t *testing.T) {
	var got string
	c := New(func(s string) error { got = s; return nil }, func() bool { return true })

	msg, err := c.CopyWithFallback("Dear Smith")
	require.NoError(t, err)
	assert.Equal(t, "Copied to clipboard!", msg)
	assert.Equal(t, "Dear Smith", got)
}

func TestClipboard_Unavailable(t *testing.T) {
	c := New(func(string) error { t.Fatal("write must not be called"); return nil }, func() bool { return false })

	_, err := c.CopyWithFallback("x")
	var clipErr *ClipboardError
	assert.True(t, errors.As(err, &clipErr))
	assert.False(t, c.Available())
}

func TestClipboard_WriteFails(t *testing.T) {
	c := New(func(string) error { return errors.New("xclip exited 1") }, func() bool { return true })

	_, err := c.CopyWithFallback("x")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to copy to clipboard")
}
