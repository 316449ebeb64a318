package sumclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/url"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

const (
	summarizePath = "summarize"
	downloadPath  = "download"

	// FileField is the multipart field the summarize endpoint reads the upload from.
	FileField = "file"

	maxErrorBody = 64 << 10
)

// Client talks to the summarizer's /summarize and /download endpoints.
type Client struct {
	baseURL    string
	httpClient *http.Client
	log        *slog.Logger

	SummarizeStats *LatencyStats
	DownloadStats  *LatencyStats
}

// NewClient builds a client for baseURL. A zero timeout leaves requests
// bounded only by the caller's context.
func NewClient(baseURL string, timeout, statsWindow time.Duration, log *slog.Logger) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout:   timeout,
			Transport: &loggingTransport{base: http.DefaultTransport, log: log},
		},
		log:            log,
		SummarizeStats: NewLatencyStats(statsWindow),
		DownloadStats:  NewLatencyStats(statsWindow),
	}
}

// RemoteError is a non-2xx answer from the summarizer.
type RemoteError struct {
	Op         string
	StatusCode int
	// Message is the server's "error" field, or the HTTP status text when
	// the body carries none.
	Message string
}

func (e *RemoteError) Error() string {
	return fmt.Sprintf("%s: status %d: %s", e.Op, e.StatusCode, e.Message)
}

// Summarize uploads one file as multipart field "file" and returns the
// "summary" field of the response (empty when absent).
func (c *Client) Summarize(ctx context.Context, filename string, content io.Reader) (string, error) {
	u, err := c.endpoint(summarizePath)
	if err != nil {
		return "", err
	}

	pr, pw := io.Pipe()
	mw := multipart.NewWriter(pw)
	go func() {
		part, err := mw.CreateFormFile(FileField, filepath.Base(filename))
		if err != nil {
			pw.CloseWithError(err)
			return
		}
		if _, err := io.Copy(part, content); err != nil {
			pw.CloseWithError(fmt.Errorf("read %s: %w", filename, err))
			return
		}
		pw.CloseWithError(mw.Close())
	}()

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, u, pr)
	if err != nil {
		pr.Close()
		return "", fmt.Errorf("create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", mw.FormDataContentType())
	httpReq.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		pr.Close()
		c.SummarizeStats.Record(time.Since(start), true)
		return "", fmt.Errorf("summarize: %w", err)
	}
	defer resp.Body.Close()
	// Unblocks the writer goroutine if the server answered before reading the whole upload.
	defer pr.Close()

	if !isOK(resp.StatusCode) {
		c.SummarizeStats.Record(time.Since(start), true)
		return "", remoteError("summarize", resp)
	}

	var result struct {
		Summary *string `json:"summary"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		c.SummarizeStats.Record(time.Since(start), true)
		return "", fmt.Errorf("decode summary: %w", err)
	}
	c.SummarizeStats.Record(time.Since(start), false)

	if result.Summary == nil {
		return "", nil
	}
	return *result.Summary, nil
}

// Download posts the summary text and returns the response body as the file
// payload. The caller must close it.
func (c *Client) Download(ctx context.Context, summary string) (io.ReadCloser, error) {
	u, err := c.endpoint(downloadPath)
	if err != nil {
		return nil, err
	}

	body, err := json.Marshal(map[string]string{"summary": summary})
	if err != nil {
		return nil, fmt.Errorf("marshal summary: %w", err)
	}
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, u, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	start := time.Now()
	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		c.DownloadStats.Record(time.Since(start), true)
		return nil, fmt.Errorf("download: %w", err)
	}
	if !isOK(resp.StatusCode) {
		defer resp.Body.Close()
		c.DownloadStats.Record(time.Since(start), true)
		return nil, remoteError("download", resp)
	}
	c.DownloadStats.Record(time.Since(start), false)
	return resp.Body, nil
}

// Close releases idle connections.
func (c *Client) Close() {
	c.httpClient.CloseIdleConnections()
}

func (c *Client) endpoint(path string) (string, error) {
	u, err := url.JoinPath(c.baseURL, path)
	if err != nil {
		return "", fmt.Errorf("build %s url: %w", path, err)
	}
	return u, nil
}

func isOK(code int) bool {
	return code >= 200 && code <= 299
}

// remoteError reads a bounded error body. The JSON "error" field wins; a body
// that is not JSON, or whose field is absent or empty, falls back to the
// status text.
func remoteError(op string, resp *http.Response) *RemoteError {
	body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))

	var payload struct {
		Error string `json:"error"`
	}
	msg := ""
	if json.Unmarshal(body, &payload) == nil {
		msg = payload.Error
	}
	if msg == "" {
		msg = statusText(resp)
	}
	return &RemoteError{Op: op, StatusCode: resp.StatusCode, Message: msg}
}

// statusText returns the reason phrase of resp.Status, e.g. "Not Found".
func statusText(resp *http.Response) string {
	text := strings.TrimSpace(strings.TrimPrefix(resp.Status, strconv.Itoa(resp.StatusCode)))
	if text == "" {
		text = http.StatusText(resp.StatusCode)
	}
	return text
}
