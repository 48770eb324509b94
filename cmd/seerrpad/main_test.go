package main

import (
	"bytes"
	"context"
	"encoding/binary"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mmcdole/seerrpad/internal/adapter"
	"github.com/mmcdole/seerrpad/internal/domain"
	"github.com/mmcdole/seerrpad/internal/input"
	"github.com/mmcdole/seerrpad/internal/store"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd := newRootCmd(strings.NewReader(""), &out, &out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func serverConfig(t *testing.T, url string) string {
	return writeConfig(t, `
server:
  url: `+url+`
  api_key: secret
  max_retries: 0
cache:
  dir: ""
logging:
  file: ""
`)
}

func TestVersionCommand(t *testing.T) {
	out, err := execute(t, "version")
	require.NoError(t, err)
	assert.Equal(t, "seerrpad dev\n", out)
}

func TestConfigInit(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")

	out, err := execute(t, "--config", path, "config", "init")
	require.NoError(t, err)
	assert.Contains(t, out, path)

	cfg, err := adapter.LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, adapter.DefaultConfig().Display.FPS, cfg.Display.FPS)

	_, err = execute(t, "--config", path, "config", "init")
	assert.ErrorContains(t, err, "already exists")
}

func TestConfigValidate(t *testing.T) {
	path := writeConfig(t, "display:\n  fps: 500\nlogging:\n  file: \"\"\n")
	_, err := execute(t, "--config", path, "config", "validate")
	assert.ErrorContains(t, err, "display.fps")

	path = serverConfig(t, "http://seerr.local:5055")
	out, err := execute(t, "--config", path, "config", "validate")
	require.NoError(t, err)
	assert.Contains(t, out, "Configuration is valid")
}

func TestRootRequiresConfiguredServer(t *testing.T) {
	path := writeConfig(t, "logging:\n  file: \"\"\n")
	t.Setenv("SEERRPAD_SERVER_URL", "")
	t.Setenv("JELLYSEERR_BASE_URL", "")

	_, err := execute(t, "--config", path)
	assert.ErrorContains(t, err, "config init")
}

func TestCheckCommand(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "secret", r.Header.Get("X-Api-Key"))
		switch r.URL.Path {
		case "/api/v1/status":
			io.WriteString(w, `{"version":"2.1.0"}`)
		case "/api/v1/discover/movies":
			io.WriteString(w, `{"results":[{"id":1,"title":"Movie"}]}`)
		default:
			http.NotFound(w, r)
		}
	}))
	defer server.Close()

	out, err := execute(t, "--config", serverConfig(t, server.URL), "check")
	require.NoError(t, err)
	assert.Contains(t, out, "✓ Jellyseerr 2.1.0")
	assert.Contains(t, out, "Discover returned 1 movies")
	assert.Contains(t, out, "No poster to fetch")
}

func TestCheckCommand_AuthFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer server.Close()

	out, err := execute(t, "--config", serverConfig(t, server.URL), "check")
	assert.ErrorIs(t, err, domain.ErrAuthFailed)
	assert.Contains(t, out, "API key rejected")
}

func TestDescribeError(t *testing.T) {
	assert.Equal(t, "server unreachable", describeError(domain.ErrServerOffline))
	assert.Equal(t, "timed out", describeError(context.DeadlineExceeded))
	assert.Equal(t, io.ErrClosedPipe.Error(), describeError(io.ErrClosedPipe))
}

func jsEvent(typ, number uint8, value int16) []byte {
	b := make([]byte, 8)
	binary.LittleEndian.PutUint16(b[4:6], uint16(value))
	b[6] = typ
	b[7] = number
	return b
}

func TestRunPad(t *testing.T) {
	events := bytes.Join([][]byte{
		jsEvent(input.RawButton, 0, 1),
		jsEvent(input.RawButton, 0, 0),
		jsEvent(input.RawAxis, 1, 32767),
		jsEvent(input.RawAxis|0x80, 0, 0),
	}, nil)

	cfg := adapter.TestConfig()
	var out bytes.Buffer
	err := runPad(context.Background(), io.NopCloser(bytes.NewReader(events)), "Xbox Wireless Controller", input.ProfileXbox, cfg, &out)
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	assert.Contains(t, lines[0], "Xbox Wireless Controller")
	assert.Contains(t, out.String(), "button  0 =      1  -> select")
	assert.Contains(t, out.String(), "axis    1 =  32767  -> down")
	assert.Contains(t, out.String(), "(init)")
}

func TestCacheCommands(t *testing.T) {
	dir := t.TempDir()
	path := writeConfig(t, "server:\n  url: http://seerr.local\ncache:\n  dir: "+dir+"\nlogging:\n  file: \"\"\n")

	s, err := store.NewImageStore(dir, "http://seerr.local")
	require.NoError(t, err)
	require.NoError(t, s.SaveImage("https://img.test/a.jpg", []byte("a")))
	require.NoError(t, s.Close())

	out, err := execute(t, "--config", path, "cache")
	require.NoError(t, err)
	assert.Equal(t, "1 posters stored\n", out)

	out, err = execute(t, "--config", path, "cache", "clear")
	require.NoError(t, err)
	assert.Equal(t, "Removed 1 posters\n", out)

	out, err = execute(t, "--config", path, "cache")
	require.NoError(t, err)
	assert.Equal(t, "0 posters stored\n", out)
}

func TestCacheCommand_Disabled(t *testing.T) {
	path := writeConfig(t, "cache:\n  dir: \"\"\nlogging:\n  file: \"\"\n")
	out, err := execute(t, "--config", path, "cache")
	require.NoError(t, err)
	assert.Contains(t, out, "disabled")
}
