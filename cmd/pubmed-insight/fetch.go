// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"strings"

	"github.com/spf13/cobra"

	"github.com/pdiddy/pubmed-insight/pkg/types"
)

var fetchCmd = &cobra.Command{
	Use:   "fetch [query]",
	Short: "Fetch matching articles from PubMed and store them",
	Long: `Fetch runs the fetch_articles tool: it searches PubMed with the given
advanced-search query, bounded by a publication-date range, and persists
the matching records as a named result set. The stored name is printed
in the envelope for the summarize and cite commands to consume.

NCBI requires an identification email; set it with --email, in the
configuration, or through NCBI_EMAIL.`,
	RunE: runFetch,
}

func init() {
	fetchCmd.Flags().String("query", "", "PubMed advanced-search query")
	fetchCmd.Flags().String("email", "", "identification email sent to NCBI")
	fetchCmd.Flags().String("from", "", "publication date range start (YYYY/MM/DD, default 2015/01/01)")
	fetchCmd.Flags().String("to", "", "publication date range end (YYYY/MM/DD, default today)")
	fetchCmd.Flags().Int("limit", 0, "maximum number of articles (default 8)")
	fetchCmd.Flags().String("order-by", "", "PubMed sort order (relevance, pub_date, Author, JournalName, first_author)")
	fetchCmd.Flags().String("output", "", "result-set name (default derived from the query)")

	rootCmd.AddCommand(fetchCmd)
}

func runFetch(cmd *cobra.Command, args []string) error {
	cfg := buildConfig()

	orch, st, err := newOrchestrator(cfg, newCLILogger())
	if err != nil {
		return err
	}
	defer st.Close()

	query, _ := cmd.Flags().GetString("query")
	if query == "" && len(args) > 0 {
		query = strings.Join(args, " ")
	}
	email, _ := cmd.Flags().GetString("email")
	from, _ := cmd.Flags().GetString("from")
	to, _ := cmd.Flags().GetString("to")
	limit, _ := cmd.Flags().GetInt("limit")
	orderBy, _ := cmd.Flags().GetString("order-by")
	output, _ := cmd.Flags().GetString("output")

	resp := orch.Fetch(cmd.Context(), types.FetchRequest{
		Query:    query,
		Email:    email,
		FromDate: from,
		ToDate:   to,
		Limit:    limit,
		OrderBy:  orderBy,
		Output:   output,
	})
	return printEnvelope(resp, resp.ToolResponse)
}
