// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package tools

import (
	"context"
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/pdiddy/pubmed-insight/internal/summarize"
	"github.com/pdiddy/pubmed-insight/pkg/types"
)

const (
	defaultModel       = "deepseek-ai/DeepSeek-V3"
	defaultMaxTokens   = 512
	defaultTemperature = 0.3
)

// Summarize runs the summarize_abstracts operation: load the named
// result sets, gather their abstracts, and ask the model for a combined
// summary. The model call is attempted at most once.
func (o *Orchestrator) Summarize(ctx context.Context, req types.SummarizeRequest) types.SummarizeResponse {
	log := o.log.WithFields(logrus.Fields{"tool": "summarize_abstracts", "files": len(req.Filenames)})

	if len(req.Filenames) == 0 {
		return summarizeFailure(types.StatusMissingFiles, "no result files named")
	}

	found, missing, err := o.store.Load(ctx, req.Filenames)
	if err != nil {
		log.WithError(err).Error("loading result sets failed")
		return summarizeFailure(types.StatusSummaryFailed, fmt.Sprintf("loading result sets: %v", err))
	}
	if len(missing) > 0 {
		log.WithField("missing", missing).Warn("result files not found")
		return summarizeFailure(types.StatusMissingFiles,
			fmt.Sprintf("result files not found: %s", strings.Join(missing, ", ")))
	}

	corpus := extractCorpus(req.Filenames, found)
	if corpus == "" {
		return summarizeFailure(types.StatusExtractFailed, "no abstracts found in the named result files")
	}

	summary, err := o.summarizer.Summarize(ctx, corpus, o.resolveOptions(req))
	if err != nil {
		log.WithError(err).Error("summarization failed")
		return summarizeFailure(types.StatusSummaryFailed, fmt.Sprintf("generating summary: %v", err))
	}

	log.Info("summary completed")
	return types.SummarizeResponse{
		ToolResponse: types.ToolResponse{
			Success: true,
			Status:  types.StatusSummaryCompleted,
			Message: fmt.Sprintf("summarized %d result files", len(req.Filenames)),
		},
		Summary: summary,
	}
}

// resolveOptions layers request values over configuration over built-in
// defaults. Pointer fields distinguish an explicit zero from an omitted
// value, so a requested temperature of 0 is honored.
func (o *Orchestrator) resolveOptions(req types.SummarizeRequest) summarize.Options {
	model := req.Model
	if model == "" {
		model = o.cfg.Summarize.Model
	}
	if model == "" {
		model = defaultModel
	}

	maxTokens := o.cfg.Summarize.MaxTokens
	if maxTokens <= 0 {
		maxTokens = defaultMaxTokens
	}
	if req.MaxTokens != nil {
		maxTokens = *req.MaxTokens
	}

	temperature := o.cfg.Summarize.Temperature
	if temperature <= 0 {
		temperature = defaultTemperature
	}
	if req.Temperature != nil {
		temperature = *req.Temperature
	}

	return summarize.Options{Model: model, MaxTokens: maxTokens, Temperature: temperature}
}

// extractCorpus gathers the non-empty abstracts from the loaded sets in
// request order, joined by blank lines.
func extractCorpus(names []string, found map[string]*types.ResultSet) string {
	var abstracts []string
	for _, name := range names {
		set, ok := found[name]
		if !ok {
			continue
		}
		for _, a := range set.Articles {
			if abstract := strings.TrimSpace(a.Abstract); abstract != "" {
				abstracts = append(abstracts, abstract)
			}
		}
	}
	return strings.Join(abstracts, "\n\n")
}

func summarizeFailure(status types.Status, message string) types.SummarizeResponse {
	return types.SummarizeResponse{ToolResponse: types.ToolResponse{Status: status, Message: message}}
}
