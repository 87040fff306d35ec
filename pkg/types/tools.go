// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

// Status is a terminal outcome code for one tool operation. The set is
// closed per operation; external callers branch on these exact strings.
type Status string

const (
	// fetch_articles outcomes.
	StatusFetchCompleted Status = "fetch_completed"
	StatusNoResults      Status = "no_results"
	StatusFetchFailed    Status = "fetch_failed"
	StatusSaveFailed     Status = "save_failed"

	// summarize_abstracts outcomes.
	StatusSummaryCompleted Status = "summary_completed"
	StatusMissingFiles     Status = "missing_files"
	StatusExtractFailed    Status = "extract_failed"
	StatusSummaryFailed    Status = "summary_failed"

	// format_citations outcomes.
	StatusCitationsFormatted Status = "citations_formatted"
	StatusFormatFailed       Status = "format_failed"
)

// ToolResponse is the envelope common to every tool operation. Success is
// true exactly when Status is one of the operation's completed codes
// (fetch_completed, no_results, summary_completed, citations_formatted).
type ToolResponse struct {
	Success bool   `json:"success"`
	Status  Status `json:"status"`
	Message string `json:"message"`
}

// FetchRequest is the input to fetch_articles. Query is required; all
// other fields are optional with documented defaults.
type FetchRequest struct {
	// Query is a PubMed advanced-search expression, passed through untouched.
	Query string `json:"query"`

	// Email identifies the caller to NCBI. Falls back to the configured
	// default (NCBI_EMAIL); the operation fails fast if neither is set.
	Email string `json:"email,omitempty"`

	// FromDate and ToDate bound the publication-date filter, formatted
	// YYYY/MM/DD. Defaults: 2015/01/01 and today.
	FromDate string `json:"from_date,omitempty"`
	ToDate   string `json:"to_date,omitempty"`

	// Limit caps the number of fetched records (default 8).
	Limit int `json:"limit,omitempty"`

	// OrderBy selects the PubMed sort order. Unrecognized values fall
	// back to the service default ordering.
	OrderBy string `json:"order_by,omitempty"`

	// Output names the result set. Empty derives a name from the query.
	Output string `json:"output,omitempty"`
}

// FetchResponse is the fetch_articles envelope plus payload.
type FetchResponse struct {
	ToolResponse

	// ResultFile is the stored result-set name callers pass to the
	// downstream tools.
	ResultFile string `json:"result_file,omitempty"`

	// ArticleCount is the number of persisted records.
	ArticleCount int `json:"article_count,omitempty"`
}

// SummarizeRequest is the input to summarize_abstracts. Filenames must
// name at least one stored result set. MaxTokens and Temperature are
// pointers so an explicit zero is distinguishable from an omitted field.
type SummarizeRequest struct {
	Filenames   []string `json:"filenames"`
	Model       string   `json:"model,omitempty"`
	MaxTokens   *int     `json:"max_tokens,omitempty"`
	Temperature *float64 `json:"temperature,omitempty"`
}

// SummarizeResponse is the summarize_abstracts envelope plus payload.
type SummarizeResponse struct {
	ToolResponse

	// Summary is the synthesized text covering all requested sets.
	Summary string `json:"summary,omitempty"`
}

// CitationsRequest is the input to format_citations.
type CitationsRequest struct {
	Filenames []string `json:"filenames"`
}

// CitationsResponse is the format_citations envelope plus payload.
type CitationsResponse struct {
	ToolResponse

	// Citations holds one formatted string per stored record,
	// order-preserved across the requested sets.
	Citations []string `json:"citations,omitempty"`
}
