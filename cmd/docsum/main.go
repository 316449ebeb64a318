package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/dgallion1/docsum/internal/config"
	"github.com/dgallion1/docsum/internal/controller"
	"github.com/dgallion1/docsum/internal/preflight"
	"github.com/dgallion1/docsum/internal/sumclient"
	"github.com/dgallion1/docsum/internal/view"
)

const usage = `usage: docsum [flags] [file]

Uploads a file to the summarizer, prints the summary and optionally saves
it as summary.txt.

flags:
`

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh
		cancel()
	}()

	os.Exit(run(ctx, os.Args[1:], os.Stdin, os.Stdout, os.Stderr))
}

type options struct {
	url         string
	out         string
	download    bool
	interactive bool
	noPreflight bool
}

func run(ctx context.Context, args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	var opts options
	fs := flag.NewFlagSet("docsum", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.Usage = func() {
		fmt.Fprint(stderr, usage)
		fs.PrintDefaults()
	}
	fs.StringVar(&opts.url, "url", "", "summarizer base URL (overrides DOCSUM_SERVER_URL)")
	fs.StringVar(&opts.out, "out", "", "directory for downloaded files (overrides DOCSUM_OUTPUT_DIR)")
	fs.BoolVar(&opts.download, "download", false, "save summary.txt after a successful summary")
	fs.BoolVar(&opts.interactive, "i", false, "interactive mode")
	fs.BoolVar(&opts.noPreflight, "no-preflight", false, "skip local file inspection")
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		return 2
	}
	if fs.NArg() > 1 {
		fmt.Fprintln(stderr, "docsum: only one file can be uploaded at a time")
		return 2
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(stderr, "docsum: %v\n", err)
		return 2
	}
	if opts.url != "" {
		cfg.ServerURL = opts.url
	}
	if opts.out != "" {
		cfg.OutputDir = opts.out
	}
	if opts.noPreflight {
		cfg.Preflight = false
	}
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(stderr, "docsum: invalid configuration: %v\n", err)
		return 2
	}
	level, _ := cfg.Level()
	log := slog.New(slog.NewJSONHandler(stderr, &slog.HandlerOptions{Level: level}))

	client := sumclient.NewClient(cfg.ServerURL, cfg.RequestTimeout, cfg.StatsWindow, log)
	defer func() {
		log.Info("client stats",
			"summarize", client.SummarizeStats.Snapshot(),
			"download", client.DownloadStats.Snapshot(),
		)
		client.Close()
	}()

	s := &session{
		cfg:  cfg,
		log:  log,
		out:  stdout,
		ctrl: controller.New(client, view.NewTerminal(stdout, stderr), controller.DirSaver{Dir: cfg.OutputDir}, log),
	}
	defer s.ctrl.Close()

	log.Debug("session started", "server_url", cfg.ServerURL, "output_dir", cfg.OutputDir, "interactive", opts.interactive)

	if opts.interactive {
		return s.interactive(ctx, stdin)
	}

	if err := s.submit(ctx, fs.Arg(0)); err != nil {
		return 1
	}
	if opts.download {
		if _, err := s.download(ctx); err != nil {
			return 1
		}
	}
	return 0
}

// session binds one controller to the terminal.
type session struct {
	cfg  config.Config
	log  *slog.Logger
	out  io.Writer
	ctrl *controller.Controller
}

func (s *session) submit(ctx context.Context, path string) error {
	if path == "" {
		return s.ctrl.Submit(ctx)
	}
	if s.cfg.Preflight {
		s.preflight(path)
	}
	return s.ctrl.Submit(ctx, controller.LocalFile(path))
}

func (s *session) download(ctx context.Context) (string, error) {
	path, err := s.ctrl.Download(ctx)
	switch {
	case errors.Is(err, controller.ErrDownloadDisabled):
		fmt.Fprintln(s.out, "Nothing to download yet.")
	case err == nil:
		fmt.Fprintf(s.out, "Saved %s\n", path)
	}
	return path, err
}

func (s *session) preflight(path string) {
	f, err := os.Open(path)
	if err != nil {
		// Submit reports the open failure itself.
		return
	}
	defer f.Close()

	rep, err := preflight.Inspect(path, f, preflight.Options{
		AcceptedExtensions: s.cfg.AcceptedExtensions,
		MaxUploadBytes:     s.cfg.MaxUploadBytes,
		ChunkChars:         s.cfg.ChunkChars,
	})
	if err != nil {
		s.log.Warn("preflight failed", "file", path, "error", err)
		return
	}

	s.log.Info("preflight",
		"file", rep.Name,
		"bytes", rep.Bytes,
		"chars", rep.Chars,
		"tokens", rep.Tokens,
		"parts", rep.Parts,
		"warnings", len(rep.Warnings),
	)
	if rep.Chars > 0 {
		fmt.Fprintf(s.out, "%s: %d characters, about %d summary part(s)\n", rep.Name, rep.Chars, rep.Parts)
	}
	for _, w := range rep.Warnings {
		fmt.Fprintf(s.out, "warning: %s\n", w)
	}
}

const interactiveHelp = `commands:
  submit [path]   upload a file (no path: submit with nothing selected)
  download        save the current summary as summary.txt
  status          show the form state
  help            show this help
  quit            leave
`

// interactive runs a command loop, one form event per line. The exit status
// reflects the last submission or download.
func (s *session) interactive(ctx context.Context, stdin io.Reader) int {
	fmt.Fprint(s.out, interactiveHelp)
	code := 0

	scanner := bufio.NewScanner(stdin)
	for {
		fmt.Fprint(s.out, "> ")
		if !scanner.Scan() {
			fmt.Fprintln(s.out)
			break
		}
		if ctx.Err() != nil {
			break
		}

		cmd, arg, _ := strings.Cut(strings.TrimSpace(scanner.Text()), " ")
		arg = strings.TrimSpace(arg)

		switch cmd {
		case "":
		case "submit", "s":
			code = exitCode(s.submit(ctx, arg))
		case "download", "d":
			_, err := s.download(ctx)
			code = exitCode(err)
		case "status":
			st := s.ctrl.State()
			fmt.Fprintf(s.out, "status=%s submit=%s download=%s result=%s\n",
				st.Status, onOff(st.SubmitEnabled), onOff(st.DownloadEnabled), shownHidden(st.ResultVisible))
		case "help", "?":
			fmt.Fprint(s.out, interactiveHelp)
		case "quit", "exit", "q":
			return code
		default:
			fmt.Fprintf(s.out, "unknown command %q, try help\n", cmd)
		}
	}
	if err := scanner.Err(); err != nil {
		s.log.Error("read input", "error", err)
		return 1
	}
	return code
}

func exitCode(err error) int {
	if err != nil {
		return 1
	}
	return 0
}

func onOff(b bool) string {
	if b {
		return "enabled"
	}
	return "disabled"
}

func shownHidden(b bool) string {
	if b {
		return "shown"
	}
	return "hidden"
}
