package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	mcpserver "github.com/ziadkadry99/agentrag/internal/mcp"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the MCP server for AI agent integration",
	Long:  `Starts a Model Context Protocol (MCP) server on stdio, exposing agent document search tools for AI agents.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		a, err := openApp(ctx)
		if err != nil {
			return err
		}
		defer a.Close()

		// Set version from the cmd package variable.
		mcpserver.Version = Version

		count, _ := a.store.Count(ctx)
		fmt.Fprintf(os.Stderr, "agentrag MCP server started on stdio (vector store=%s, chunks=%d)\n", a.cfg.VectorStore.Backend, count)

		srv := mcpserver.NewServer(a.lib)
		return srv.Serve()
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
}
