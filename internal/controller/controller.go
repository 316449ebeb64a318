// Package controller drives the upload, summarize and download flow behind
// the form: it owns the UI state, talks to the summarizer and hands the
// downloaded file to a Saver.
package controller

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/dgallion1/docsum/internal/sumclient"
)

var (
	ErrNoFile           = errors.New("no file selected")
	ErrBusy             = errors.New("a submission is already in progress")
	ErrDownloadDisabled = errors.New("no summary available to download")
	ErrClosed           = errors.New("controller is closed")
)

// Service is the remote summarizer.
type Service interface {
	Summarize(ctx context.Context, filename string, content io.Reader) (string, error)
	Download(ctx context.Context, summary string) (io.ReadCloser, error)
}

// View draws state changes and shows alerts.
type View interface {
	Render(State)
	Alert(msg string)
}

// Saver materializes a downloaded payload under a file name and returns where
// it ended up.
type Saver interface {
	Save(name string, r io.Reader) (string, error)
}

// Controller is constructed once per session. Its methods are the event
// handlers of the form: Submit for the form submission, Download for the
// download button.
type Controller struct {
	svc   Service
	view  View
	saver Saver
	log   *slog.Logger

	mu     sync.Mutex
	state  State
	closed bool
}

func New(svc Service, view View, saver Saver, log *slog.Logger) *Controller {
	c := &Controller{
		svc:   svc,
		view:  view,
		saver: saver,
		log:   log,
		state: State{Status: StatusIdle, SubmitEnabled: true},
	}
	view.Render(c.state)
	return c
}

// State returns a copy of the current state.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Submit handles a form submission. Only the first file is uploaded. The
// submit control stays disabled until the request resolves; a second Submit
// in the meantime returns ErrBusy without touching the network.
func (c *Controller) Submit(ctx context.Context, files ...File) error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return ErrClosed
	}
	if !c.state.SubmitEnabled {
		c.mu.Unlock()
		return ErrBusy
	}
	c.state.ResultVisible = false
	c.state.DownloadEnabled = false
	c.state.Summary = ""
	if len(files) == 0 {
		c.state.Status = StatusError
		c.state.StatusText = MsgChooseFile
	} else {
		c.state.Status = StatusUploading
		c.state.StatusText = MsgUploading
		c.state.SubmitEnabled = false
	}
	snap := c.state
	c.mu.Unlock()
	c.view.Render(snap)

	if len(files) == 0 {
		c.log.Info("submission rejected", "reason", ErrNoFile.Error())
		return ErrNoFile
	}

	file := files[0]
	c.log.Info("submitting file", "file", file.Name)
	start := time.Now()

	summary, err := c.summarize(ctx, file)
	if err != nil {
		c.log.Warn("summarize failed",
			"file", file.Name,
			"duration_ms", time.Since(start).Milliseconds(),
			"error", err,
		)
		if !c.update(func(s *State) {
			s.Status = StatusError
			s.StatusText = MsgErrorPrefix + userMessage(err)
			s.SubmitEnabled = true
		}) {
			return ErrClosed
		}
		return err
	}

	c.log.Info("summary received",
		"file", file.Name,
		"chars", len(summary),
		"duration_ms", time.Since(start).Milliseconds(),
	)
	if !c.update(func(s *State) {
		s.Status = StatusSuccess
		s.StatusText = MsgDone
		s.Summary = summary
		s.ResultVisible = true
		s.DownloadEnabled = true
		s.SubmitEnabled = true
	}) {
		return ErrClosed
	}
	return nil
}

// Download posts the current summary to the download endpoint and saves the
// payload as summary.txt. Any failure raises the "Download failed." alert and
// saves nothing. Every call is an independent request.
func (c *Controller) Download(ctx context.Context) (string, error) {
	c.mu.Lock()
	closed, enabled, summary := c.closed, c.state.DownloadEnabled, c.state.Summary
	c.mu.Unlock()

	if closed {
		return "", ErrClosed
	}
	if !enabled {
		return "", ErrDownloadDisabled
	}

	path, err := c.download(ctx, summary)
	if err != nil {
		c.log.Warn("download failed", "error", err)
		c.view.Alert(MsgDownloadFailed)
		return "", err
	}
	c.log.Info("summary saved", "path", path)
	return path, nil
}

// Close tears the controller down: both controls are disabled and later
// events return ErrClosed. Results of requests still in flight are dropped.
func (c *Controller) Close() error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return nil
	}
	c.closed = true
	c.state.SubmitEnabled = false
	c.state.DownloadEnabled = false
	snap := c.state
	c.mu.Unlock()

	c.view.Render(snap)
	return nil
}

func (c *Controller) summarize(ctx context.Context, file File) (string, error) {
	if file.Open == nil {
		return "", fmt.Errorf("open %s: no content", file.Name)
	}
	rc, err := file.Open()
	if err != nil {
		return "", fmt.Errorf("open %s: %w", file.Name, err)
	}
	defer rc.Close()

	return c.svc.Summarize(ctx, file.Name, rc)
}

func (c *Controller) download(ctx context.Context, summary string) (string, error) {
	body, err := c.svc.Download(ctx, summary)
	if err != nil {
		return "", err
	}
	defer body.Close()

	return c.saver.Save(SummaryFilename, body)
}

// update mutates the state and renders it, unless the controller was closed.
func (c *Controller) update(fn func(s *State)) bool {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return false
	}
	fn(&c.state)
	snap := c.state
	c.mu.Unlock()

	c.view.Render(snap)
	return true
}

// userMessage is the text shown after "Error: ". Remote rejections show the
// server's message; everything else shows the failure itself.
func userMessage(err error) string {
	var remote *sumclient.RemoteError
	if errors.As(err, &remote) {
		return remote.Message
	}
	return err.Error()
}
