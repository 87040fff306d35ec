// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package tools implements the three tool operations exposed by the
// service: fetching article sets from PubMed, summarizing stored
// abstracts, and formatting citations. Every failure is converted to a
// terminal status in the tool envelope at this boundary; operations do
// not return Go errors to their callers.
package tools

import (
	"context"
	"io"

	"github.com/sirupsen/logrus"

	"github.com/pdiddy/pubmed-insight/internal/pubmed"
	"github.com/pdiddy/pubmed-insight/internal/store"
	"github.com/pdiddy/pubmed-insight/internal/summarize"
	"github.com/pdiddy/pubmed-insight/pkg/types"
)

// Searcher finds article records matching a query.
type Searcher interface {
	Search(ctx context.Context, q pubmed.Query) ([]types.ArticleRecord, error)
}

// Summarizer produces a summary of a text corpus.
type Summarizer interface {
	Summarize(ctx context.Context, corpus string, opts summarize.Options) (string, error)
}

// Orchestrator executes tool operations against injected dependencies.
type Orchestrator struct {
	cfg        types.Config
	searcher   Searcher
	store      store.Store
	summarizer Summarizer
	log        *logrus.Logger
}

// New builds an Orchestrator. A nil logger discards all log output.
func New(cfg types.Config, searcher Searcher, st store.Store, summarizer Summarizer, log *logrus.Logger) *Orchestrator {
	if log == nil {
		log = logrus.New()
		log.SetOutput(io.Discard)
	}
	return &Orchestrator{
		cfg:        cfg,
		searcher:   searcher,
		store:      st,
		summarizer: summarizer,
		log:        log,
	}
}
