package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/ziadkadry99/agentrag/internal/library"
	"github.com/ziadkadry99/agentrag/internal/server"
)

var serverPort int

var serverCmd = &cobra.Command{
	Use:   "server",
	Short: "Start the REST API server",
	Long:  `Starts the agentrag REST API for managing agents, indexing documents and searching them.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		a, err := openApp(ctx)
		if err != nil {
			return err
		}
		defer a.Close()

		port := a.cfg.Server.Port
		if cmd.Flags().Changed("port") {
			port = serverPort
		}

		srv := server.New(server.Config{
			Port:     port,
			AllowAll: a.cfg.Server.AllowAllOrigins,
		}, a.db, a.store)
		library.RegisterRoutes(srv.Router(), a.lib)

		// Graceful shutdown.
		go func() {
			<-ctx.Done()
			fmt.Fprintln(os.Stderr, "\nShutting down server...")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			srv.Shutdown(shutdownCtx)
		}()

		count, _ := a.store.Count(ctx)
		fmt.Fprintf(os.Stderr, "agentrag server %s starting on port %d\n", Version, port)
		fmt.Fprintf(os.Stderr, "  Registry: %s\n", a.db.Path())
		fmt.Fprintf(os.Stderr, "  Vector store: %s (%d chunks)\n", a.cfg.VectorStore.Backend, count)

		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	},
}

func init() {
	serverCmd.Flags().IntVar(&serverPort, "port", 8080, "Port to listen on (default: server.port from config)")
	rootCmd.AddCommand(serverCmd)
}
