// Package app wires the vector store client from configuration.
//
// Setup builds, in order: optional tracing, the migrated pgx pool, Genkit
// with the GoogleAI and PostgreSQL plugins, the Gemini embedder, the
// DocStore/Retriever pair, and finally the knowledge store the workflows
// use. Close releases everything in reverse order.
package app

import (
	"github.com/firebase/genkit/go/ai"
	"github.com/firebase/genkit/go/genkit"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/kbvec/kbvec/internal/config"
	"github.com/kbvec/kbvec/internal/knowledge"
)

// App holds the per-run resources shared by both tools. Created once per
// process invocation, discarded at exit.
type App struct {
	Config   *config.Config
	Pool     *pgxpool.Pool
	Genkit   *genkit.Genkit
	Embedder ai.Embedder
	Store    *knowledge.Store

	otelCleanup func()
}

// Close releases all resources. Safe to call after a partial Setup.
func (a *App) Close() {
	if a == nil {
		return
	}
	if a.Pool != nil {
		a.Pool.Close()
	}
	if a.otelCleanup != nil {
		a.otelCleanup()
	}
}
