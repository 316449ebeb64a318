package main

import (
	"bytes"
	"context"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dgallion1/docsum/internal/apitest"
	"github.com/dgallion1/docsum/internal/controller"
	"github.com/dgallion1/docsum/internal/preflight"
)

type harness struct {
	srv    *apitest.Server
	dir    string
	stdout bytes.Buffer
	stderr bytes.Buffer
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	t.Setenv("DOCSUM_LOG_LEVEL", "error")
	srv := apitest.NewServer(nil)
	t.Cleanup(srv.Close)
	return &harness{srv: srv, dir: t.TempDir()}
}

func (h *harness) run(stdin string, args ...string) int {
	base := []string{"-url", h.srv.URL, "-out", h.dir}
	return run(context.Background(), append(base, args...), strings.NewReader(stdin), &h.stdout, &h.stderr)
}

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestRun_SubmitAndDownload(t *testing.T) {
	h := newHarness(t)
	path := writeFile(t, "notes.txt", "the quick brown fox")

	code := h.run("", "-download", path)
	require.Equal(t, 0, code, "stderr: %s", h.stderr.String())

	out := h.stdout.String()
	assert.Contains(t, out, controller.MsgDone)
	assert.Contains(t, out, "the quick brown fox")
	assert.Contains(t, out, "Saved ")

	data, err := os.ReadFile(filepath.Join(h.dir, controller.SummaryFilename))
	require.NoError(t, err)
	assert.Equal(t, "the quick brown fox", string(data))

	uploads := h.srv.Uploads()
	require.Len(t, uploads, 1)
	assert.Equal(t, "notes.txt", uploads[0].Filename)
}

func TestRun_SubmitWithoutDownload(t *testing.T) {
	h := newHarness(t)
	path := writeFile(t, "notes.txt", "hello")

	require.Equal(t, 0, h.run("", path))
	_, download := h.srv.Calls()
	assert.Equal(t, 0, download)
	assert.NoFileExists(t, filepath.Join(h.dir, controller.SummaryFilename))
}

func TestRun_NoFile(t *testing.T) {
	h := newHarness(t)

	assert.Equal(t, 1, h.run(""))
	assert.Contains(t, h.stdout.String(), controller.MsgChooseFile)
	summarize, _ := h.srv.Calls()
	assert.Equal(t, 0, summarize)
}

func TestRun_RemoteError(t *testing.T) {
	h := newHarness(t)
	h.srv.QueueSummarize(apitest.JSON(http.StatusInternalServerError, map[string]string{"error": "file too large"}))
	path := writeFile(t, "big.txt", "x")

	assert.Equal(t, 1, h.run("", "-download", path))
	assert.Contains(t, h.stdout.String(), controller.MsgErrorPrefix+"file too large")
	_, download := h.srv.Calls()
	assert.Equal(t, 0, download)
}

func TestRun_DownloadFailure(t *testing.T) {
	h := newHarness(t)
	h.srv.QueueDownload(apitest.Reply{Status: http.StatusInternalServerError})
	path := writeFile(t, "notes.txt", "hello")

	assert.Equal(t, 1, h.run("", "-download", path))
	assert.Contains(t, h.stderr.String(), controller.MsgDownloadFailed)
}

func TestRun_PreflightWarnings(t *testing.T) {
	h := newHarness(t)
	path := writeFile(t, "data.xyz", "some text in an odd file")

	require.Equal(t, 0, h.run("", path))
	assert.Contains(t, h.stdout.String(), "warning: "+preflight.WarnUnsupported)

	// Preflight is advisory; the server still decides.
	summarize, _ := h.srv.Calls()
	assert.Equal(t, 1, summarize)
}

func TestRun_NoPreflight(t *testing.T) {
	h := newHarness(t)
	path := writeFile(t, "data.xyz", "some text")

	require.Equal(t, 0, h.run("", "-no-preflight", path))
	assert.NotContains(t, h.stdout.String(), "warning:")
}

func TestRun_UsageErrors(t *testing.T) {
	t.Setenv("DOCSUM_LOG_LEVEL", "error")
	tests := []struct {
		name string
		args []string
	}{
		{"unknown flag", []string{"-bogus"}},
		{"two files", []string{"a.txt", "b.txt"}},
		{"bad url", []string{"-url", "ftp://example.com", "a.txt"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var stdout, stderr bytes.Buffer
			code := run(context.Background(), tt.args, strings.NewReader(""), &stdout, &stderr)
			assert.Equal(t, 2, code)
		})
	}
}

func TestRun_BadEnvironment(t *testing.T) {
	t.Setenv("DOCSUM_REQUEST_TIMEOUT", "soon")
	var stdout, stderr bytes.Buffer
	code := run(context.Background(), nil, strings.NewReader(""), &stdout, &stderr)
	assert.Equal(t, 2, code)
	assert.Contains(t, stderr.String(), "parse env")
}

func TestRun_Interactive(t *testing.T) {
	h := newHarness(t)
	path := writeFile(t, "notes.txt", "interactive summary")

	script := strings.Join([]string{
		"status",
		"download",
		"submit " + path,
		"status",
		"download",
		"bogus",
		"quit",
	}, "\n") + "\n"

	require.Equal(t, 0, h.run(script, "-i"))

	out := h.stdout.String()
	assert.Contains(t, out, "status=idle submit=enabled download=disabled result=hidden")
	assert.Contains(t, out, "Nothing to download yet.")
	assert.Contains(t, out, "status=success submit=enabled download=enabled result=shown")
	assert.Contains(t, out, "Saved ")
	assert.Contains(t, out, `unknown command "bogus"`)

	data, err := os.ReadFile(filepath.Join(h.dir, controller.SummaryFilename))
	require.NoError(t, err)
	assert.Equal(t, "interactive summary", string(data))
}

func TestRun_InteractiveEOF(t *testing.T) {
	h := newHarness(t)

	// An empty submission leaves the error status as the exit code.
	assert.Equal(t, 1, h.run("submit\n", "-i"))
	assert.Contains(t, h.stdout.String(), controller.MsgChooseFile)
}
