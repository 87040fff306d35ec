// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package citation renders article records as reference strings.
package citation

import (
	"strings"

	"github.com/pdiddy/pubmed-insight/pkg/types"
)

// Format renders one citation line per record, in input order. It is
// total: a record with missing fields yields a shorter citation, never
// an error.
func Format(records []types.ArticleRecord) []string {
	citations := make([]string, 0, len(records))
	for _, r := range records {
		citations = append(citations, formatOne(r))
	}
	return citations
}

// formatOne builds "Authors (Year). Title. Journal. DOI:...; PMID:...",
// dropping each segment whose fields are absent.
func formatOne(r types.ArticleRecord) string {
	var segments []string

	authors := strings.Join(r.Authors, ", ")
	year := yearOf(r.PubDate)
	switch {
	case authors != "" && year != "":
		segments = append(segments, authors+" ("+year+").")
	case authors != "":
		segments = append(segments, authors+".")
	case year != "":
		segments = append(segments, "("+year+").")
	}

	if title := strings.TrimSpace(r.Title); title != "" {
		segments = append(segments, ensureStop(title))
	}
	if journal := strings.TrimSpace(r.Journal); journal != "" {
		segments = append(segments, ensureStop(journal))
	}

	switch {
	case r.DOI != "" && r.PMID != "":
		segments = append(segments, "DOI:"+r.DOI+"; PMID:"+r.PMID)
	case r.DOI != "":
		segments = append(segments, "DOI:"+r.DOI)
	case r.PMID != "":
		segments = append(segments, "PMID:"+r.PMID)
	}

	return strings.Join(segments, " ")
}

// yearOf extracts the leading year token from a publication date such
// as "2019 Aug 26" or "2018 Jan-Feb".
func yearOf(pubDate string) string {
	fields := strings.Fields(pubDate)
	if len(fields) == 0 {
		return ""
	}
	return fields[0]
}

// ensureStop appends a period unless the text already ends with
// terminal punctuation. PubMed titles usually carry their own.
func ensureStop(s string) string {
	switch {
	case strings.HasSuffix(s, "."), strings.HasSuffix(s, "!"), strings.HasSuffix(s, "?"):
		return s
	}
	return s + "."
}
