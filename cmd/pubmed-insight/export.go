// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pdiddy/pubmed-insight/internal/store"
)

var exportCmd = &cobra.Command{
	Use:   "export [result-files...]",
	Short: "Export stored result sets as readable text",
	Long: `Export renders stored result sets in a flat text layout, one block per
article with title, authors, abstract, and identifiers, suitable for
reading or archiving outside the toolchain.`,
	RunE: runExport,
}

func init() {
	exportCmd.Flags().String("out", "", "write to a file instead of stdout")

	rootCmd.AddCommand(exportCmd)
}

func runExport(cmd *cobra.Command, args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("provide one or more stored result-file names")
	}

	cfg := buildConfig()
	st, err := newStore(cfg.Store)
	if err != nil {
		return err
	}
	defer st.Close()

	found, missing, err := st.Load(cmd.Context(), args)
	if err != nil {
		return err
	}
	if len(missing) > 0 {
		return fmt.Errorf("result files not found: %s", strings.Join(missing, ", "))
	}

	out, _ := cmd.Flags().GetString("out")
	w := os.Stdout
	if out != "" {
		f, err := os.Create(out)
		if err != nil {
			return err
		}
		defer f.Close()
		w = f
	}

	for _, name := range args {
		if err := store.ExportText(w, found[name]); err != nil {
			return err
		}
	}

	if out != "" {
		fmt.Fprintf(os.Stderr, "Exported %d result set(s) to %s\n", len(args), out)
	}
	return nil
}
