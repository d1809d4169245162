package option

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseArgs_Defaults(t *testing.T) {
	opts := NewOptions()
	require.NoError(t, opts.ParseArgs(nil))

	assert.Equal(t, "", opts.ConfigFile)
	assert.Equal(t, ".env", opts.EnvFile)
	assert.Equal(t, "0.0.0.0", opts.Http.Address)
	assert.Equal(t, 3978, opts.Http.Port)
	assert.Equal(t, "", opts.Http.Path)
	assert.False(t, opts.Http.Cors)
	assert.False(t, opts.Version)
}

func TestParseArgs_Overrides(t *testing.T) {
	opts := NewOptions()
	require.NoError(t, opts.ParseArgs([]string{
		"--config", "relay.toml",
		"--env-file", "prod.env",
		"--http.address", "127.0.0.1",
		"--http.port", "8080",
		"--http.path", "/bot",
		"--http.cors",
		"--http.access",
		"--http.requestlog",
		"-v",
	}))

	assert.Equal(t, "relay.toml", opts.ConfigFile)
	assert.Equal(t, "prod.env", opts.EnvFile)
	assert.Equal(t, "127.0.0.1", opts.Http.Address)
	assert.Equal(t, 8080, opts.Http.Port)
	assert.Equal(t, "/bot", opts.Http.Path)
	assert.True(t, opts.Http.Cors)
	assert.True(t, opts.Http.Access)
	assert.True(t, opts.Http.RequestLog)
	assert.True(t, opts.Version)
}

func TestParseArgs_Errors(t *testing.T) {
	opts := NewOptions()
	err := opts.ParseArgs([]string{"--http.port", "not-a-port"})
	require.Error(t, err)
	assert.False(t, IsHelp(err))

	err = NewOptions().ParseArgs([]string{"--no-such-flag"})
	require.Error(t, err)
}
