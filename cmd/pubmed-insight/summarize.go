// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/pdiddy/pubmed-insight/pkg/types"
)

var summarizeCmd = &cobra.Command{
	Use:   "summarize [result-files...]",
	Short: "Summarize the abstracts stored in result files",
	Long: `Summarize runs the summarize_abstracts tool: it loads the named result
sets, gathers their abstracts, and produces one integrated summary
through the chat-completions API. The SILICONFLOW_API_KEY credential
must be available.`,
	RunE: runSummarize,
}

func init() {
	summarizeCmd.Flags().String("model", "", "chat model identifier (default deepseek-ai/DeepSeek-V3)")
	summarizeCmd.Flags().Int("max-tokens", 0, "generation token budget (default 512)")
	summarizeCmd.Flags().Float64("temperature", 0, "sampling temperature (default 0.3)")

	rootCmd.AddCommand(summarizeCmd)
}

func runSummarize(cmd *cobra.Command, args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("provide one or more stored result-file names")
	}

	cfg := buildConfig()

	orch, st, err := newOrchestrator(cfg, newCLILogger())
	if err != nil {
		return err
	}
	defer st.Close()

	req := types.SummarizeRequest{Filenames: args}
	req.Model, _ = cmd.Flags().GetString("model")

	// Changed() distinguishes an explicit zero from an omitted flag.
	if cmd.Flags().Changed("max-tokens") {
		v, _ := cmd.Flags().GetInt("max-tokens")
		req.MaxTokens = &v
	}
	if cmd.Flags().Changed("temperature") {
		v, _ := cmd.Flags().GetFloat64("temperature")
		req.Temperature = &v
	}

	resp := orch.Summarize(cmd.Context(), req)
	return printEnvelope(resp, resp.ToolResponse)
}
