// Package apitest runs an in-process stand-in for the summarizer's
// /summarize and /download endpoints.
package apitest

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// Reply is a canned response. A zero Status means "use the default behavior".
type Reply struct {
	Status      int
	ContentType string
	Body        []byte
}

// JSON builds a Reply with a JSON body.
func JSON(status int, v any) Reply {
	b, _ := json.Marshal(v)
	return Reply{Status: status, ContentType: "application/json", Body: b}
}

// Upload is what the stub received on /summarize.
type Upload struct {
	Filename string
	Data     []byte
}

// DownloadRequest is what the stub received on /download.
type DownloadRequest struct {
	ContentType string
	RequestID   string
	Summary     string
	Raw         []byte
}

// Server records every call and answers with the configured replies. By
// default /summarize echoes the uploaded text back as the summary and
// /download returns the posted summary as a text/plain attachment.
type Server struct {
	*httptest.Server

	mu        sync.Mutex
	summarize []Reply
	download  []Reply
	uploads   []Upload
	downloads []DownloadRequest
	gate      chan struct{}
}

func NewServer(log *slog.Logger) *Server {
	if log == nil {
		log = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	s := &Server{}

	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(RequestLogger(log))
	r.Post("/summarize", s.handleSummarize)
	r.Post("/download", s.handleDownload)

	s.Server = httptest.NewServer(r)
	return s
}

// QueueSummarize queues replies for upcoming /summarize calls, in order.
func (s *Server) QueueSummarize(replies ...Reply) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.summarize = append(s.summarize, replies...)
}

// QueueDownload queues replies for upcoming /download calls, in order.
func (s *Server) QueueDownload(replies ...Reply) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.download = append(s.download, replies...)
}

// Hold makes /summarize block until the returned release func is called.
func (s *Server) Hold() (release func()) {
	gate := make(chan struct{})
	s.mu.Lock()
	s.gate = gate
	s.mu.Unlock()

	var once sync.Once
	return func() { once.Do(func() { close(gate) }) }
}

func (s *Server) Uploads() []Upload {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Upload(nil), s.uploads...)
}

func (s *Server) Downloads() []DownloadRequest {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]DownloadRequest(nil), s.downloads...)
}

// Calls reports how many requests each endpoint has received.
func (s *Server) Calls() (summarize, download int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.uploads), len(s.downloads)
}

func (s *Server) handleSummarize(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	gate := s.gate
	s.mu.Unlock()
	if gate != nil {
		select {
		case <-gate:
		case <-r.Context().Done():
			return
		case <-time.After(10 * time.Second):
		}
	}

	upload := Upload{}
	file, header, err := r.FormFile("file")
	if err == nil {
		upload.Filename = sanitizeFilename(header.Filename)
		upload.Data, _ = io.ReadAll(file)
		file.Close()
	}

	s.mu.Lock()
	s.uploads = append(s.uploads, upload)
	reply, queued := pop(&s.summarize)
	s.mu.Unlock()

	if queued {
		writeReply(w, reply)
		return
	}
	if err != nil {
		jsonError(w, "No file uploaded.", http.StatusBadRequest)
		return
	}
	writeReply(w, JSON(http.StatusOK, map[string]string{"summary": string(upload.Data)}))
}

func (s *Server) handleDownload(w http.ResponseWriter, r *http.Request) {
	raw, _ := io.ReadAll(r.Body)
	req := DownloadRequest{
		ContentType: r.Header.Get("Content-Type"),
		RequestID:   r.Header.Get("X-Request-ID"),
		Raw:         raw,
	}
	var body struct {
		Summary *string `json:"summary"`
	}
	decodeErr := json.Unmarshal(raw, &body)
	if decodeErr == nil && body.Summary != nil {
		req.Summary = *body.Summary
	}

	s.mu.Lock()
	s.downloads = append(s.downloads, req)
	reply, queued := pop(&s.download)
	s.mu.Unlock()

	if queued {
		writeReply(w, reply)
		return
	}
	if decodeErr != nil || body.Summary == nil {
		jsonError(w, "No summary provided", http.StatusBadRequest)
		return
	}
	w.Header().Set("Content-Disposition", `attachment; filename="summary.txt"`)
	writeReply(w, Reply{Status: http.StatusOK, ContentType: "text/plain; charset=utf-8", Body: []byte(req.Summary)})
}

func pop(q *[]Reply) (Reply, bool) {
	if len(*q) == 0 {
		return Reply{}, false
	}
	r := (*q)[0]
	*q = (*q)[1:]
	return r, r.Status != 0
}

func writeReply(w http.ResponseWriter, r Reply) {
	if r.ContentType != "" {
		w.Header().Set("Content-Type", r.ContentType)
	}
	w.WriteHeader(r.Status)
	w.Write(r.Body)
}

func jsonError(w http.ResponseWriter, msg string, code int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(map[string]string{"error": msg})
}

func sanitizeFilename(name string) string {
	name = filepath.Base(strings.ReplaceAll(name, "\\", "/"))
	if name == "" || name == "." || name == "/" {
		name = "unnamed"
	}
	return name
}
