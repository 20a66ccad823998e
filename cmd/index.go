package cmd

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/ziadkadry99/agentrag/internal/loader"
)

var (
	indexAgent    string
	indexPath     string
	indexFilename string
)

var indexCmd = &cobra.Command{
	Use:   "index <file>",
	Short: "Index a single document for an agent",
	Long: `Loads a text or Markdown file, splits it into chunks and stores their
embeddings in the agent's collection. Re-indexing a changed file replaces its
chunks; an unchanged file is skipped.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		text, err := loader.LoadFile(args[0])
		if err != nil {
			return err
		}

		a, err := openApp(ctx)
		if err != nil {
			return err
		}
		defer a.Close()

		agent, err := a.resolveAgent(ctx, indexAgent)
		if err != nil {
			return err
		}

		filename := indexFilename
		if filename == "" {
			filename = filepath.Base(args[0])
		}

		res, err := a.lib.AddDocument(ctx, agent.ID, indexPath, filename, text)
		if err != nil {
			return err
		}
		if res.Skipped {
			fmt.Printf("%s%s unchanged (%d chunks)\n", indexPath, filename, res.Record.TotalChunks)
			return nil
		}
		fmt.Printf("Indexed %s%s: %d chunks\n", indexPath, filename, res.Record.TotalChunks)
		return nil
	},
}

func init() {
	indexCmd.Flags().StringVar(&indexAgent, "agent", "", "agent ID or name (required)")
	indexCmd.Flags().StringVar(&indexPath, "path", "", `document path prefix, e.g. "faq/"`)
	indexCmd.Flags().StringVar(&indexFilename, "filename", "", "document filename (default: the file's base name)")
	_ = indexCmd.MarkFlagRequired("agent")
	rootCmd.AddCommand(indexCmd)
}
