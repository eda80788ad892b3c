package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/firebase/genkit/go/ai"
	"github.com/spf13/pflag"
	"golang.org/x/time/rate"

	"github.com/kbvec/kbvec/internal/app"
	"github.com/kbvec/kbvec/internal/config"
	"github.com/kbvec/kbvec/internal/knowledge"
)

// ExecuteIngest is the entry point for the kbingest tool.
func ExecuteIngest() error {
	fs := pflag.NewFlagSet("kbingest", pflag.ContinueOnError)
	csvPath := fs.String("csv", "", "CSV file to ingest")
	textPath := fs.String("text", "", "text file to ingest")
	all := fs.Bool("all", false, "ingest the bundled sample data")
	clear := fs.Bool("clear", false, "delete all documents from the store")
	version := fs.Bool("version", false, "show version information")
	if err := fs.Parse(os.Args[1:]); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return nil
		}
		return err
	}

	if *version {
		printVersion("kbingest")
		return nil
	}

	if !*all && !*clear && *csvPath == "" && *textPath == "" {
		printIngestUsage()
		return nil
	}

	logger := initLogger()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading configuration: %w", err)
	}
	if err := checkRequiredEnv(); err != nil {
		return err
	}

	ctx := context.Background()
	a, err := app.Setup(ctx, cfg)
	if err != nil {
		return fmt.Errorf("connecting to the vector store: %w", err)
	}
	defer a.Close()
	fmt.Println("Connected to the vector store.")

	in := newIngestor(a.Store, cfg, os.Stdout, logger)

	switch {
	case *clear:
		in.clear(ctx)
	case *all:
		in.ingestAll(ctx)
	case *csvPath != "":
		in.ingestCSV(ctx, *csvPath)
	default:
		in.ingestText(ctx, *textPath)
	}

	return nil
}

// ingestor runs the ingestion workflows. Single file failures are logged
// and reported through the return value; they never abort a batch.
type ingestor struct {
	store      store
	limiter    *rate.Limiter
	chunkSize  int
	sampleCSV  string
	sampleText string
	out        io.Writer
	logger     *slog.Logger
}

func newIngestor(st store, cfg *config.Config, out io.Writer, logger *slog.Logger) *ingestor {
	if logger == nil {
		logger = slog.Default()
	}
	return &ingestor{
		store:      st,
		limiter:    newPacer(cfg.IngestPause),
		chunkSize:  cfg.ChunkSize,
		sampleCSV:  cfg.SampleCSV,
		sampleText: cfg.SampleText,
		out:        out,
		logger:     logger,
	}
}

// newPacer builds the token bucket that spaces out calls to the embedding
// API. Burst 1 with one initial token: the first operation never waits,
// each following one waits out the pause.
func newPacer(pause time.Duration) *rate.Limiter {
	if pause <= 0 {
		return rate.NewLimiter(rate.Inf, 1)
	}
	return rate.NewLimiter(rate.Every(pause), 1)
}

// ingestCSV loads one CSV file. Returns whether the load succeeded.
func (in *ingestor) ingestCSV(ctx context.Context, path string) bool {
	fmt.Fprintf(in.out, "Processing CSV file: %s\n", path)

	docs, err := knowledge.LoadCSV(path)
	if err != nil {
		in.logger.Error("loading csv file", "file", path, "error", err)
		fmt.Fprintf(in.out, "Failed to process CSV file: %s\n", path)
		return false
	}
	return in.load(ctx, path, docs)
}

// ingestText loads one plain text file. Returns whether the load succeeded.
func (in *ingestor) ingestText(ctx context.Context, path string) bool {
	fmt.Fprintf(in.out, "Processing text file: %s\n", path)

	docs, err := knowledge.LoadText(path, in.chunkSize)
	if err != nil {
		in.logger.Error("loading text file", "file", path, "error", err)
		fmt.Fprintf(in.out, "Failed to process text file: %s\n", path)
		return false
	}
	return in.load(ctx, path, docs)
}

// load upserts prepared documents and reports the outcome to the user.
func (in *ingestor) load(ctx context.Context, path string, docs []*ai.Document) bool {
	if len(docs) == 0 {
		fmt.Fprintf(in.out, "No content found in %s, nothing to ingest.\n", path)
		return true
	}
	if err := in.store.Load(ctx, docs); err != nil {
		in.logger.Error("loading documents", "file", path, "error", err)
		fmt.Fprintf(in.out, "Failed to load documents from: %s\n", path)
		return false
	}
	fmt.Fprintf(in.out, "Finished processing: %s (%d documents)\n", path, len(docs))
	return true
}

// ingestAll ingests the fixed sample files with pacing between steps, then
// prints a summary. Missing files are skipped with a notice and do not
// count toward the attempted total; a failed file never stops the run.
func (in *ingestor) ingestAll(ctx context.Context) {
	success, total := 0, 0

	if fileExists(in.sampleCSV) {
		total++
		in.wait(ctx)
		if in.ingestCSV(ctx, in.sampleCSV) {
			success++
		}
	} else {
		fmt.Fprintf(in.out, "Sample CSV not found, skipping: %s\n", in.sampleCSV)
	}

	if fileExists(in.sampleText) {
		total++
		in.wait(ctx)
		if in.ingestText(ctx, in.sampleText) {
			success++
		}
	} else {
		fmt.Fprintf(in.out, "Sample text file not found, skipping: %s\n", in.sampleText)
	}

	fmt.Fprintln(in.out)
	fmt.Fprintln(in.out, "=== Ingestion Summary ===")
	fmt.Fprintf(in.out, "Succeeded: %d/%d\n", success, total)
	if success < total {
		fmt.Fprintf(in.out, "Failed: %d (remaining files were still attempted)\n", total-success)
	}
	fmt.Fprintf(in.out, "Documents in store: %d\n", in.store.ApproxCount(ctx))
}

// clear deletes every document. Irreversible, no confirmation prompt.
func (in *ingestor) clear(ctx context.Context) bool {
	fmt.Fprintln(in.out, "Clearing the document store...")
	if err := in.store.Clear(ctx); err != nil {
		in.logger.Error("clearing store", "error", err)
		fmt.Fprintln(in.out, "Failed to clear the document store.")
		return false
	}
	fmt.Fprintln(in.out, "Document store cleared.")
	return true
}

// wait blocks until the pacing limiter allows the next external call.
func (in *ingestor) wait(ctx context.Context) {
	if err := in.limiter.Wait(ctx); err != nil {
		in.logger.Debug("pacing wait interrupted", "error", err)
	}
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}

func printIngestUsage() {
	fmt.Println("kbingest - load documents into the vector store")
	fmt.Println()
	fmt.Println("Usage:")
	fmt.Println("  kbingest --all          Ingest the bundled sample CSV and text files")
	fmt.Println("  kbingest --csv FILE     Ingest a CSV file")
	fmt.Println("  kbingest --text FILE    Ingest a plain text file")
	fmt.Println("  kbingest --clear        Delete every document from the store")
	fmt.Println("  kbingest --version      Show version information")
	fmt.Println()
	fmt.Println("Environment Variables:")
	fmt.Println("  DATABASE_URL       Required: postgres:// connection string")
	fmt.Println("  TABLE_NAME         Optional: vector table name (default: documents)")
	fmt.Println("  GEMINI_API_KEY     Required: Gemini API key for embeddings")
	fmt.Println("  DEBUG              Optional: enable debug logging")
}
