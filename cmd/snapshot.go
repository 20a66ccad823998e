package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ziadkadry99/agentrag/internal/vectordb"
)

// snapshotter is implemented by stores that can dump and restore their
// contents to a single file.
type snapshotter interface {
	Export(ctx context.Context, path string) error
	Import(ctx context.Context, path string) error
}

var snapshotCmd = &cobra.Command{
	Use:   "snapshot",
	Short: "Export or import the embedded vector store",
	Long: `Writes the chromem vector store to a compressed snapshot file or restores
it from one. Snapshots do not include the registry database.`,
}

var snapshotExportCmd = &cobra.Command{
	Use:   "export <file>",
	Short: "Export the vector store to a snapshot file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withSnapshotter(cmd.Context(), func(ctx context.Context, s snapshotter) error {
			if err := s.Export(ctx, args[0]); err != nil {
				return err
			}
			fmt.Printf("Exported vector store to %s\n", args[0])
			return nil
		})
	},
}

var snapshotImportCmd = &cobra.Command{
	Use:   "import <file>",
	Short: "Import a snapshot file into the vector store",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withSnapshotter(cmd.Context(), func(ctx context.Context, s snapshotter) error {
			if err := s.Import(ctx, args[0]); err != nil {
				return err
			}
			fmt.Printf("Imported vector store from %s\n", args[0])
			return nil
		})
	},
}

func withSnapshotter(ctx context.Context, fn func(context.Context, snapshotter) error) error {
	a, err := openApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	s, ok := a.store.(snapshotter)
	if !ok {
		return fmt.Errorf("the %s backend does not support snapshots", a.cfg.VectorStore.Backend)
	}
	return fn(ctx, s)
}

var _ snapshotter = (*vectordb.ChromemStore)(nil)

func init() {
	snapshotCmd.AddCommand(snapshotExportCmd, snapshotImportCmd)
	rootCmd.AddCommand(snapshotCmd)
}
