package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/BerylCAtieno/document-chat-api/internal/client"
	"github.com/BerylCAtieno/document-chat-api/internal/config"
	"github.com/BerylCAtieno/document-chat-api/internal/db"
	"github.com/BerylCAtieno/document-chat-api/internal/repository"
	"github.com/BerylCAtieno/document-chat-api/internal/storage"
	"github.com/BerylCAtieno/document-chat-api/internal/utils"
)

const helpText = `Commands:
  /open <path>     select a PDF or DOCX file
  /analyze         analyze the selected file
  /history         list past analyses
  /delete <id>     remove one history item
  /clear           remove all history
  /export          export the analysis and chat
  /reset           start over with a new document
  /help            show this help
  /quit            exit
Any other line is sent as a chat message about the analyzed document.`

type app struct {
	api     *client.Client
	session *client.Session
	store   storage.Storage
	out     io.Writer
}

func main() {
	cfg, err := config.LoadClient()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	serverURL := flag.String("server", cfg.ServerURL, "document chat API base URL")
	logLevel := flag.String("log-level", "warn", "log level for diagnostics on stderr")
	flag.Parse()

	logger := utils.NewLoggerTo(os.Stderr, *logLevel)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	a, closeHistory, err := newApp(ctx, cfg, *serverURL, logger, os.Stdout)
	if err != nil {
		logger.Fatal("Failed to start", "error", err)
	}
	defer closeHistory()

	if path := flag.Arg(0); path != "" {
		a.open(path)
	}

	a.run(ctx, os.Stdin)
}

var openHistory = db.Open

// newApp opens the history database and the export storage. The returned
// func closes the database; on error nothing is left open.
func newApp(ctx context.Context, cfg *config.ClientConfig, serverURL string, logger *utils.Logger, out io.Writer) (*app, func() error, error) {
	historyDB, err := openHistory(cfg.HistoryDB)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open history database %s: %w", cfg.HistoryDB, err)
	}

	store, err := newStorage(ctx, cfg)
	if err != nil {
		historyDB.Close()
		return nil, nil, fmt.Errorf("failed to initialize export storage: %w", err)
	}

	api := client.New(serverURL, cfg.HTTPTimeout)
	return &app{
		api:     api,
		session: client.NewSession(api, repository.NewRepository(historyDB), logger),
		store:   store,
		out:     out,
	}, historyDB.Close, nil
}

func newStorage(ctx context.Context, cfg *config.ClientConfig) (storage.Storage, error) {
	if cfg.S3Endpoint == "" {
		return storage.NewFSStorage(cfg.ExportDir), nil
	}

	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	return storage.NewS3Storage(ctx, storage.S3Options{
		Endpoint:        cfg.S3Endpoint,
		AccessKeyID:     cfg.S3AccessKeyID,
		SecretAccessKey: cfg.S3SecretAccessKey,
		BucketName:      cfg.S3BucketName,
		Region:          cfg.S3Region,
		UseSSL:          cfg.S3UseSSL,
	})
}

func (a *app) run(ctx context.Context, in io.Reader) {
	fmt.Fprintln(a.out, "Document chat. Type /help for commands.")

	scanner := bufio.NewScanner(in)
	scanner.Buffer(make([]byte, 64*1024), 1<<20)

	for {
		fmt.Fprint(a.out, "> ")
		if !scanner.Scan() {
			return
		}
		if ctx.Err() != nil {
			return
		}

		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		if !strings.HasPrefix(line, "/") {
			a.chat(ctx, line)
			continue
		}

		cmd, arg, _ := strings.Cut(line, " ")
		arg = strings.TrimSpace(arg)

		switch cmd {
		case "/open":
			a.open(arg)
		case "/analyze":
			a.analyze(ctx)
		case "/history":
			a.history(ctx)
		case "/delete":
			a.report(a.session.DeleteHistoryItem(ctx, arg))
		case "/clear":
			a.report(a.session.ClearHistory(ctx))
		case "/export":
			a.export(ctx)
		case "/reset":
			a.session.Reset()
			fmt.Fprintln(a.out, "Session cleared.")
		case "/help":
			fmt.Fprintln(a.out, helpText)
		case "/quit", "/exit":
			return
		default:
			fmt.Fprintf(a.out, "Unknown command %q. Type /help for commands.\n", cmd)
		}
	}
}

func (a *app) open(path string) {
	if path == "" {
		fmt.Fprintln(a.out, "Usage: /open <path>")
		return
	}

	data, err := os.ReadFile(path)
	if err != nil {
		fmt.Fprintf(a.out, "Error: %v\n", err)
		return
	}

	name := filepath.Base(path)
	if err := a.session.SelectFile(name, client.ContentTypeFor(name), data); err != nil {
		a.showError()
		return
	}

	fmt.Fprintf(a.out, "Selected %s (%d bytes). Type /analyze to continue.\n", name, len(data))
}

func (a *app) analyze(ctx context.Context) {
	fmt.Fprintln(a.out, "Analyzing...")
	if err := a.session.Analyze(ctx); err != nil {
		if errors.Is(err, client.ErrNoFile) {
			fmt.Fprintln(a.out, "Select a file first with /open <path>.")
			return
		}
		a.showError()
		return
	}

	res, _ := a.session.Result()
	fmt.Fprintf(a.out, "\nWords: %d\n\nSummary:\n%s\n", res.WordCount, res.Analysis)
	if len(res.Suggestions) > 0 {
		fmt.Fprintln(a.out, "\nSuggestions:")
		for i, s := range res.Suggestions {
			fmt.Fprintf(a.out, "  %d. %s\n", i+1, s)
		}
	}
	fmt.Fprintln(a.out, "\nAsk a question about the document, or ask for an image.")
}

func (a *app) chat(ctx context.Context, text string) {
	if err := a.session.SendMessage(ctx, text); err != nil {
		if errors.Is(err, client.ErrNoDocument) {
			fmt.Fprintln(a.out, "Analyze a document first.")
			return
		}
		a.showError()
		return
	}

	transcript := a.session.Transcript()
	reply := transcript[len(transcript)-1]
	fmt.Fprintf(a.out, "\n%s\n\n", reply.Content)

	if reply.ImageURL == "" {
		return
	}
	data, _, err := a.api.FetchImage(ctx, reply.ImageURL)
	if err != nil {
		fmt.Fprintf(a.out, "Image failed to load: %v\n", err)
		return
	}
	fmt.Fprintf(a.out, "Image loaded (%d bytes).\n", len(data))
}

func (a *app) history(ctx context.Context) {
	items, err := a.session.History(ctx)
	if err != nil {
		fmt.Fprintf(a.out, "Error: %v\n", err)
		return
	}
	if len(items) == 0 {
		fmt.Fprintln(a.out, "No history yet.")
		return
	}

	for _, item := range items {
		fmt.Fprintf(a.out, "%s  %s  %s  %d words\n    %s\n",
			item.ID, item.Timestamp.Local().Format(time.DateTime), item.FileName, item.WordCount,
			utils.Truncate(item.Analysis, 120))
	}
}

func (a *app) export(ctx context.Context) {
	prefix, err := a.session.Export(ctx, a.store, a.api)
	if err != nil {
		if errors.Is(err, client.ErrNoDocument) {
			fmt.Fprintln(a.out, "Nothing to export yet.")
			return
		}
		fmt.Fprintf(a.out, "Error: %v\n", err)
		return
	}
	fmt.Fprintf(a.out, "Exported to %s\n", prefix)
}

func (a *app) report(err error) {
	if err != nil {
		fmt.Fprintf(a.out, "Error: %v\n", err)
		return
	}
	fmt.Fprintln(a.out, "Done.")
}

func (a *app) showError() {
	if msg := a.session.Err(); msg != "" {
		fmt.Fprintf(a.out, "Error: %s\n", msg)
		a.session.DismissError()
	}
}
