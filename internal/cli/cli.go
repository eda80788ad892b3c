// Package cli implements the kbingest and kbquery command-line tools.
//
// Both tools share one pattern: parse flags, load configuration, construct
// the vector store client, dispatch to a workflow. Errors that matter to a
// whole run propagate to main; errors scoped to a single file or question
// are logged and the batch continues.
package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/firebase/genkit/go/ai"

	"github.com/kbvec/kbvec/internal/knowledge"
	"github.com/kbvec/kbvec/internal/log"
)

// Version information (injected at build time via ldflags).
var (
	AppVersion = "0.1.0"
	BuildTime  = "unknown"
	GitCommit  = "unknown"
)

// store is the slice of *knowledge.Store the workflows need. Defined here,
// by the consumer, so tests can substitute a mock.
type store interface {
	Load(ctx context.Context, docs []*ai.Document) error
	Search(ctx context.Context, query string, limit int) ([]knowledge.Result, error)
	Clear(ctx context.Context) error
	ApproxCount(ctx context.Context) int
}

// initLogger installs the default structured logger. DEBUG in the
// environment raises the level; logs go to stderr so stdout stays clean for
// tool output.
func initLogger() *slog.Logger {
	level := slog.LevelInfo
	if os.Getenv("DEBUG") != "" {
		level = slog.LevelDebug
	}
	logger := log.New(log.Config{Level: level})
	slog.SetDefault(logger)
	return logger
}

// checkRequiredEnv verifies GEMINI_API_KEY is present. The Genkit GoogleAI
// plugin reads it directly; checking up front gives a friendly message
// instead of a failed first embedding call.
func checkRequiredEnv() error {
	if os.Getenv("GEMINI_API_KEY") == "" {
		fmt.Fprintln(os.Stderr, "Error: GEMINI_API_KEY environment variable not set")
		fmt.Fprintln(os.Stderr, "")
		fmt.Fprintln(os.Stderr, "Embeddings are generated with the Gemini API.")
		fmt.Fprintln(os.Stderr, "")
		fmt.Fprintln(os.Stderr, "To set your API key:")
		fmt.Fprintln(os.Stderr, "  export GEMINI_API_KEY=your-api-key")
		fmt.Fprintln(os.Stderr, "")
		fmt.Fprintln(os.Stderr, "Get your API key at: https://ai.google.dev/")

		return fmt.Errorf("GEMINI_API_KEY not set")
	}
	return nil
}

// printVersion displays version information for the named tool.
func printVersion(tool string) {
	fmt.Printf("%s v%s\n", tool, AppVersion)
	fmt.Printf("Build: %s\n", BuildTime)
	fmt.Printf("Commit: %s\n", GitCommit)
}
