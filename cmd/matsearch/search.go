package main

import (
	"encoding/json"
	"strings"

	"github.com/spf13/cobra"

	"github.com/kailas-cloud/matsearch/internal/usecase/chat"
	"github.com/kailas-cloud/matsearch/internal/usecase/orchestrator"
)

// searchOutput is the JSON printed by the search command.
type searchOutput struct {
	Query        string              `json:"query"`
	Narrative    string              `json:"narrative"`
	Description  string              `json:"description"`
	Source       string              `json:"source"`
	Strategy     string              `json:"strategy"`
	SemanticHits int                 `json:"semanticHits"`
	Reinterpret  bool                `json:"reinterpreted"`
	Rows         []map[string]string `json:"rows"`
}

func newSearchOutput(query string, res *orchestrator.Result) searchOutput {
	return searchOutput{
		Query:        query,
		Narrative:    res.Narrative,
		Description:  res.Description,
		Source:       string(res.Source),
		Strategy:     string(res.Strategy),
		SemanticHits: res.SemanticHits,
		Reinterpret:  res.Reinterpreted != nil,
		Rows:         chat.NewTable(res.Records, res.Description).Rows,
	}
}

func newSearchCmd(env *string) *cobra.Command {
	return &cobra.Command{
		Use:   "search <query>",
		Short: "Run one query through the search pipeline and print the result as JSON",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd.Context(), *env)
			if err != nil {
				return err
			}
			defer a.Close()

			query := strings.Join(args, " ")
			res := a.orchestrator.RunSearch(cmd.Context(), query)

			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			enc.SetEscapeHTML(false)
			return enc.Encode(newSearchOutput(query, &res))
		},
	}
}
