// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "time"

// ArticleRecord holds the normalized metadata for one retrieved PubMed
// publication. Records are immutable once fetched; they are owned by the
// ResultSet they were stored with.
type ArticleRecord struct {
	// PMID is the PubMed identifier assigned by NCBI.
	PMID string `json:"pmid" yaml:"pmid"`

	// Title is the article title.
	Title string `json:"title" yaml:"title"`

	// Abstract is the abstract text, with labeled sections flattened to
	// "LABEL: text" segments. May be empty for articles without one.
	Abstract string `json:"abstract,omitempty" yaml:"abstract,omitempty"`

	// Authors lists author names in source order, deduplicated on first
	// occurrence (e.g. "Vaswani Ashish").
	Authors []string `json:"authors" yaml:"authors"`

	// Journal is the full journal title.
	Journal string `json:"journal,omitempty" yaml:"journal,omitempty"`

	// PubDate is the publication date as reported by PubMed, either
	// "YYYY Mon D" parts or a Medline date string (e.g. "2023 Jan-Feb").
	PubDate string `json:"pub_date,omitempty" yaml:"pub_date,omitempty"`

	// DOI is the Digital Object Identifier, used for citation formatting.
	DOI string `json:"doi,omitempty" yaml:"doi,omitempty"`

	// Keywords merges MeSH descriptor names and author keywords,
	// deduplicated on first occurrence.
	Keywords []string `json:"keywords,omitempty" yaml:"keywords,omitempty"`
}

// ResultSet is a named, durable collection of ArticleRecords plus the
// provenance of the fetch that produced it. Created only by a successful
// fetch; read back (never mutated) by the summarize and citation tools.
type ResultSet struct {
	// Name is the filename-safe result-set name, without extension.
	Name string `json:"name" yaml:"name"`

	// Query is the PubMed advanced-search expression that produced the set.
	Query string `json:"query" yaml:"query"`

	// FromDate and ToDate bound the publication-date filter (YYYY/MM/DD).
	FromDate string `json:"from_date,omitempty" yaml:"from_date,omitempty"`
	ToDate   string `json:"to_date,omitempty" yaml:"to_date,omitempty"`

	// OrderBy is the sort order requested from PubMed, if any.
	OrderBy string `json:"order_by,omitempty" yaml:"order_by,omitempty"`

	// CreatedAt is the time the set was fetched.
	CreatedAt time.Time `json:"created_at" yaml:"created_at"`

	// Articles holds the records in the order PubMed returned them.
	Articles []ArticleRecord `json:"articles" yaml:"articles"`
}
