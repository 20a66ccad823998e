package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var (
	removeAgent    string
	removePath     string
	removeFilename string
)

var removeCmd = &cobra.Command{
	Use:   "remove",
	Short: "Remove a document and its chunks from an agent's collection",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		a, err := openApp(ctx)
		if err != nil {
			return err
		}
		defer a.Close()

		agent, err := a.resolveAgent(ctx, removeAgent)
		if err != nil {
			return err
		}
		if err := a.lib.DeleteDocument(ctx, agent.ID, removePath, removeFilename); err != nil {
			return err
		}
		fmt.Printf("Removed %s%s\n", removePath, removeFilename)
		return nil
	},
}

func init() {
	removeCmd.Flags().StringVar(&removeAgent, "agent", "", "agent ID or name (required)")
	removeCmd.Flags().StringVar(&removePath, "path", "", "document path prefix")
	removeCmd.Flags().StringVar(&removeFilename, "filename", "", "document filename (required)")
	_ = removeCmd.MarkFlagRequired("agent")
	_ = removeCmd.MarkFlagRequired("filename")
	rootCmd.AddCommand(removeCmd)
}
