// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pdiddy/pubmed-insight/internal/citation"
	"github.com/pdiddy/pubmed-insight/pkg/types"
)

var citeCmd = &cobra.Command{
	Use:   "cite [result-files...]",
	Short: "Format citations for the articles in result files",
	Long: `Cite runs the format_citations tool: it loads the named result sets
and renders one citation per stored article, in stored order.

Formats: text (one citation per line), json (the full tool envelope),
or csl (CSL-YAML items for reference managers).`,
	RunE: runCite,
}

func init() {
	citeCmd.Flags().String("format", "text", "output format: text, json, or csl")

	rootCmd.AddCommand(citeCmd)
}

func runCite(cmd *cobra.Command, args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("provide one or more stored result-file names")
	}

	format, _ := cmd.Flags().GetString("format")
	cfg := buildConfig()

	orch, st, err := newOrchestrator(cfg, newCLILogger())
	if err != nil {
		return err
	}
	defer st.Close()

	// CSL needs the records themselves, not the formatted lines.
	if format == "csl" {
		found, missing, err := st.Load(cmd.Context(), args)
		if err != nil {
			return err
		}
		if len(missing) > 0 {
			return fmt.Errorf("result files not found: %s", strings.Join(missing, ", "))
		}
		var records []types.ArticleRecord
		for _, name := range args {
			records = append(records, found[name].Articles...)
		}
		return citation.FormatCSL(os.Stdout, records)
	}

	resp := orch.Citations(cmd.Context(), types.CitationsRequest{Filenames: args})

	switch format {
	case "text", "":
		if !resp.Success {
			return fmt.Errorf("%s: %s", resp.Status, resp.Message)
		}
		for _, c := range resp.Citations {
			fmt.Println(c)
		}
		return nil
	case "json":
		return printEnvelope(resp, resp.ToolResponse)
	default:
		return fmt.Errorf("unsupported format %q: use text, json, or csl", format)
	}
}
