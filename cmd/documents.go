package cmd

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

var documentsAgent string

var documentsCmd = &cobra.Command{
	Use:   "documents",
	Short: "List the documents indexed for an agent",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		a, err := openApp(ctx)
		if err != nil {
			return err
		}
		defer a.Close()

		agent, err := a.resolveAgent(ctx, documentsAgent)
		if err != nil {
			return err
		}
		docs, err := a.lib.ListDocuments(ctx, agent.ID)
		if err != nil {
			return err
		}
		if len(docs) == 0 {
			fmt.Printf("No documents indexed for %s.\n", agent.Name)
			return nil
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "DOCUMENT\tCHUNKS\tINDEXED")
		for _, d := range docs {
			fmt.Fprintf(w, "%s%s\t%d\t%s\n", d.Path, d.Filename, d.TotalChunks, d.IndexedAt.Local().Format("2006-01-02 15:04"))
		}
		return w.Flush()
	},
}

func init() {
	documentsCmd.Flags().StringVar(&documentsAgent, "agent", "", "agent ID or name (required)")
	_ = documentsCmd.MarkFlagRequired("agent")
	rootCmd.AddCommand(documentsCmd)
}
