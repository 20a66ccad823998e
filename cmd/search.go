package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ziadkadry99/agentrag/internal/knowledge"
)

var (
	searchAgent string
	searchK     int
	searchJSON  bool
)

var searchCmd = &cobra.Command{
	Use:   "search <query>",
	Short: "Search an agent's documents",
	Long: `Embeds the query, fetches the nearest chunks of the agent's collection and
re-ranks them with maximal marginal relevance, so the results cover different
parts of the collection instead of repeating the same passage.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		a, err := openApp(ctx)
		if err != nil {
			return err
		}
		defer a.Close()

		agent, err := a.resolveAgent(ctx, searchAgent)
		if err != nil {
			return err
		}

		hits, err := a.lib.Search(ctx, agent.ID, strings.Join(args, " "), searchK)
		if err != nil {
			if knowledge.IsRetryable(err) {
				return fmt.Errorf("%w (the provider or store may be temporarily unavailable; try again)", err)
			}
			return err
		}

		if searchJSON {
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(hits)
		}
		fmt.Print(knowledge.FormatHits(hits))
		if len(hits) == 0 {
			fmt.Println()
		}
		return nil
	},
}

func init() {
	searchCmd.Flags().StringVar(&searchAgent, "agent", "", "agent ID or name (required)")
	searchCmd.Flags().IntVar(&searchK, "k", 0, "number of results (default: retrieval.k from config)")
	searchCmd.Flags().BoolVar(&searchJSON, "json", false, "print results as JSON")
	_ = searchCmd.MarkFlagRequired("agent")
	rootCmd.AddCommand(searchCmd)
}
