package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"

	"github.com/spf13/pflag"
	"golang.org/x/time/rate"

	"github.com/kbvec/kbvec/internal/app"
	"github.com/kbvec/kbvec/internal/config"
	"github.com/kbvec/kbvec/internal/knowledge"
)

// defaultSearchLimit is how many results a question retrieves.
const defaultSearchLimit = 1

// ExecuteQuery is the entry point for the kbquery tool.
func ExecuteQuery() error {
	fs := pflag.NewFlagSet("kbquery", pflag.ContinueOnError)
	file := fs.String("file", "", "CSV file containing questions")
	query := fs.String("query", "", "single question to run")
	interactive := fs.Bool("interactive", false, "interactive query mode")
	stats := fs.Bool("stats", false, "show approximate document count")
	version := fs.Bool("version", false, "show version information")
	if err := fs.Parse(os.Args[1:]); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return nil
		}
		return err
	}

	if *version {
		printVersion("kbquery")
		return nil
	}

	if *file == "" && *query == "" && !*interactive && !*stats {
		printQueryUsage()
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

	q := newQuerier(a.Store, cfg, os.Stdin, os.Stdout, logger)

	switch {
	case *stats:
		q.stats(ctx)
	case *file != "":
		q.queryFromCSV(ctx, *file)
	case *query != "":
		q.querySingle(ctx, *query)
	default:
		// Interactive mode: an interrupt must still print a closing
		// message and exit cleanly.
		sigCtx, stop := signal.NotifyContext(ctx, os.Interrupt)
		defer stop()
		q.interactive(sigCtx)
	}

	return nil
}

// querier runs the query workflows. A failed search is logged and treated
// as "no results"; it never terminates a batch.
type querier struct {
	store   store
	limiter *rate.Limiter
	in      io.Reader
	out     io.Writer
	logger  *slog.Logger
}

func newQuerier(st store, cfg *config.Config, in io.Reader, out io.Writer, logger *slog.Logger) *querier {
	if logger == nil {
		logger = slog.Default()
	}
	return &querier{
		store:   st,
		limiter: newPacer(cfg.QueryPause),
		in:      in,
		out:     out,
		logger:  logger,
	}
}

// search issues one similarity search. Errors are logged, not propagated:
// the caller sees an empty result set.
func (q *querier) search(ctx context.Context, query string) []knowledge.Result {
	results, err := q.store.Search(ctx, query, defaultSearchLimit)
	if err != nil {
		q.logger.Error("search failed", "query", query, "error", err)
		return nil
	}
	return results
}

// querySingle runs one question and prints the formatted results.
func (q *querier) querySingle(ctx context.Context, question string) {
	fmt.Fprintln(q.out, "---")
	results := q.search(ctx, question)
	for _, line := range formatSearchResults(question, results, 0) {
		fmt.Fprintln(q.out, line)
	}
}

// queryFromCSV runs every non-blank question from the file's "question"
// column, paced between searches, and prints a completion count.
func (q *querier) queryFromCSV(ctx context.Context, path string) {
	fmt.Fprintf(q.out, "===== Running queries from: %s =====\n\n", path)

	questions, err := readQuestions(path)
	if err != nil {
		q.logger.Error("reading questions file", "file", path, "error", err)
	}
	if len(questions) == 0 {
		fmt.Fprintln(q.out, "No questions found.")
		return
	}

	for i, question := range questions {
		q.wait(ctx)
		fmt.Fprintln(q.out, "---")
		results := q.search(ctx, question)
		for _, line := range formatSearchResults(question, results, i+1) {
			fmt.Fprintln(q.out, line)
		}
	}

	fmt.Fprintln(q.out, "---")
	fmt.Fprintf(q.out, "\nProcessed %d questions.\n", len(questions))
}

// interactive runs a cooperative read-print loop over standard input.
// Exits on quit/exit/q (any case), end of input, or context cancellation
// (interrupt); blank input re-prompts without searching. Each turn is
// independent.
func (q *querier) interactive(ctx context.Context) {
	fmt.Fprintln(q.out, "Interactive query mode (type 'quit' or 'exit' to leave)")
	fmt.Fprintln(q.out, strings.Repeat("=", 50))

	lines := make(chan string)
	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(q.in)
		for scanner.Scan() {
			select {
			case lines <- scanner.Text():
			case <-ctx.Done():
				return
			}
		}
	}()

	for {
		fmt.Fprint(q.out, "\nEnter a question: ")

		var question string
		select {
		case <-ctx.Done():
			fmt.Fprintln(q.out, "\nExiting.")
			return
		case line, ok := <-lines:
			if !ok {
				fmt.Fprintln(q.out, "\nExiting.")
				return
			}
			question = strings.TrimSpace(line)
		}

		switch strings.ToLower(question) {
		case "quit", "exit", "q":
			fmt.Fprintln(q.out, "Exiting.")
			return
		case "":
			fmt.Fprintln(q.out, "Please enter a question.")
			continue
		}

		fmt.Fprintln(q.out, "\nSearching...")
		results := q.search(ctx, question)

		fmt.Fprintln(q.out, "\n"+strings.Repeat("=", 50))
		for _, line := range formatSearchResults(question, results, 0) {
			fmt.Fprintln(q.out, line)
		}
		fmt.Fprintln(q.out, strings.Repeat("=", 50))
	}
}

// stats prints the approximate document count. The figure comes from a
// capped search, not a count query, and reads 0 when the search fails.
func (q *querier) stats(ctx context.Context) {
	fmt.Fprintf(q.out, "Documents in store: %d\n", q.store.ApproxCount(ctx))
}

// wait blocks until the pacing limiter allows the next query.
func (q *querier) wait(ctx context.Context) {
	if err := q.limiter.Wait(ctx); err != nil {
		q.logger.Debug("pacing wait interrupted", "error", err)
	}
}

func printQueryUsage() {
	fmt.Println("kbquery - search the vector store")
	fmt.Println()
	fmt.Println("Usage:")
	fmt.Println("  kbquery --file FILE      Run every question in FILE's \"question\" column")
	fmt.Println("  kbquery --query TEXT     Run one question")
	fmt.Println("  kbquery --interactive    Enter interactive query mode")
	fmt.Println("  kbquery --stats          Show the approximate document count")
	fmt.Println("  kbquery --version        Show version information")
	fmt.Println()
	fmt.Println("Environment Variables:")
	fmt.Println("  DATABASE_URL       Required: postgres:// connection string")
	fmt.Println("  TABLE_NAME         Optional: vector table name (default: documents)")
	fmt.Println("  GEMINI_API_KEY     Required: Gemini API key for embeddings")
	fmt.Println("  DEBUG              Optional: enable debug logging")
}
