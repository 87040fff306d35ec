// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package tools

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/pdiddy/pubmed-insight/internal/pubmed"
	"github.com/pdiddy/pubmed-insight/internal/store"
	"github.com/pdiddy/pubmed-insight/pkg/types"
)

const (
	defaultFromDate = "2015/01/01"
	defaultLimit    = 8
	dateLayout      = "2006/01/02"
)

// Fetch runs the fetch_articles operation: validate the request, search
// PubMed, and persist the matched articles as a named result set.
// Requests that fail validation are rejected before any network call.
func (o *Orchestrator) Fetch(ctx context.Context, req types.FetchRequest) types.FetchResponse {
	log := o.log.WithFields(logrus.Fields{"tool": "fetch_articles", "query": req.Query})

	q, resp, ok := o.resolveFetch(req)
	if !ok {
		log.WithField("status", resp.Status).Warn("fetch rejected before search")
		return resp
	}

	records, err := o.searcher.Search(ctx, q)
	if err != nil {
		log.WithError(err).Error("search failed")
		return fetchFailure(types.StatusFetchFailed, fmt.Sprintf("searching PubMed: %v", err))
	}
	if len(records) == 0 {
		log.Info("no articles matched")
		return types.FetchResponse{ToolResponse: types.ToolResponse{
			Success: true,
			Status:  types.StatusNoResults,
			Message: "no articles matched the query",
		}}
	}

	set := &types.ResultSet{
		Query:     req.Query,
		FromDate:  q.FromDate,
		ToDate:    q.ToDate,
		OrderBy:   q.OrderBy,
		CreatedAt: time.Now().UTC(),
		Articles:  records,
	}

	name := req.Output
	if name == "" {
		name = store.DefaultName(req.Query, len(records), time.Now())
	}

	stored, err := o.store.Save(ctx, name, set)
	if err != nil {
		log.WithError(err).Error("saving result set failed")
		return fetchFailure(types.StatusSaveFailed, fmt.Sprintf("saving result set: %v", err))
	}

	log.WithFields(logrus.Fields{"result_file": stored, "article_count": len(records)}).Info("fetch completed")
	return types.FetchResponse{
		ToolResponse: types.ToolResponse{
			Success: true,
			Status:  types.StatusFetchCompleted,
			Message: fmt.Sprintf("fetched %d articles", len(records)),
		},
		ResultFile:   stored,
		ArticleCount: len(records),
	}
}

// resolveFetch validates the request, fills defaults, and builds the
// search query. When ok is false the response carries the rejection.
func (o *Orchestrator) resolveFetch(req types.FetchRequest) (pubmed.Query, types.FetchResponse, bool) {
	if strings.TrimSpace(req.Query) == "" {
		return pubmed.Query{}, fetchFailure(types.StatusFetchFailed, "query must not be empty"), false
	}

	// NCBI requires an identification email on every E-utilities call.
	email := req.Email
	if email == "" {
		email = o.cfg.Search.Email
	}
	if email == "" {
		return pubmed.Query{}, fetchFailure(types.StatusFetchFailed,
			"an identification email is required; set email in the request or configuration"), false
	}

	from := req.FromDate
	if from == "" {
		from = defaultFromDate
	}
	if _, err := time.Parse(dateLayout, from); err != nil {
		return pubmed.Query{}, fetchFailure(types.StatusFetchFailed,
			fmt.Sprintf("invalid from date %q, want YYYY/MM/DD", from)), false
	}

	to := req.ToDate
	if to == "" {
		to = time.Now().Format(dateLayout)
	}
	if _, err := time.Parse(dateLayout, to); err != nil {
		return pubmed.Query{}, fetchFailure(types.StatusFetchFailed,
			fmt.Sprintf("invalid to date %q, want YYYY/MM/DD", to)), false
	}

	limit := req.Limit
	if limit <= 0 {
		limit = defaultLimit
	}

	return pubmed.Query{
		Term:     req.Query,
		FromDate: from,
		ToDate:   to,
		Limit:    limit,
		OrderBy:  req.OrderBy,
		Email:    email,
		APIKey:   o.cfg.Search.APIKey,
	}, types.FetchResponse{}, true
}

func fetchFailure(status types.Status, message string) types.FetchResponse {
	return types.FetchResponse{ToolResponse: types.ToolResponse{Status: status, Message: message}}
}
