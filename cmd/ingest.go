package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/ziadkadry99/agentrag/internal/library"
	"github.com/ziadkadry99/agentrag/internal/progress"
)

var (
	ingestAgent       string
	ingestPrefix      string
	ingestInclude     []string
	ingestExclude     []string
	ingestConcurrency int
	ingestWatch       bool
)

var ingestCmd = &cobra.Command{
	Use:   "ingest <dir>",
	Short: "Index every document under a directory for an agent",
	Long: `Walks the directory (respecting .gitignore and the include/exclude globs),
converts text and Markdown files and indexes them concurrently. Unchanged
files are skipped. With --watch, keeps running and re-indexes files as they
change.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		a, err := openApp(ctx)
		if err != nil {
			return err
		}
		defer a.Close()

		agent, err := a.resolveAgent(ctx, ingestAgent)
		if err != nil {
			return err
		}

		opts := library.IngestOptions{
			Root:        args[0],
			Include:     a.cfg.Ingest.Include,
			Exclude:     a.cfg.Ingest.Exclude,
			Prefix:      ingestPrefix,
			Concurrency: a.cfg.Ingest.MaxConcurrency,
		}
		if len(ingestInclude) > 0 {
			opts.Include = ingestInclude
		}
		opts.Exclude = append(opts.Exclude, ingestExclude...)
		if ingestConcurrency > 0 {
			opts.Concurrency = ingestConcurrency
		}

		reporter := progress.NewReporter("Indexing")
		res, err := a.lib.IngestDirectory(ctx, agent.ID, opts, progress.Callback(reporter))
		if err != nil {
			return err
		}
		reporter.Finish()

		skipped := 0
		for _, r := range res.Results {
			if r.Skipped {
				skipped++
			}
		}
		fmt.Printf("Indexed %d documents (%d unchanged) into %d chunks for %s\n",
			len(res.Results), skipped, res.Chunks, agent.Name)
		for _, e := range res.Errors {
			fmt.Fprintf(os.Stderr, "  failed: %v\n", e)
		}

		if ingestWatch {
			fmt.Fprintf(os.Stderr, "Watching %s for changes (Ctrl+C to stop)\n", args[0])
			return a.lib.WatchDirectory(ctx, agent.ID, opts, func(ev library.WatchEvent) {
				switch {
				case ev.Err != nil:
					fmt.Fprintf(os.Stderr, "  %s: %v\n", ev.RelPath, ev.Err)
				case ev.Removed:
					fmt.Printf("Removed %s\n", ev.RelPath)
				default:
					fmt.Printf("Re-indexed %s: %d chunks\n", ev.RelPath, ev.Result.Record.TotalChunks)
				}
			})
		}

		if len(res.Errors) > 0 {
			return fmt.Errorf("%d of %d documents failed to index", len(res.Errors), len(res.Results)+len(res.Errors))
		}
		return nil
	},
}

func init() {
	ingestCmd.Flags().StringVar(&ingestAgent, "agent", "", "agent ID or name (required)")
	ingestCmd.Flags().StringVar(&ingestPrefix, "prefix", "", `path prefix for every document, e.g. "handbook/"`)
	ingestCmd.Flags().StringSliceVar(&ingestInclude, "include", nil, "include globs (default: ingest.include from config)")
	ingestCmd.Flags().StringSliceVar(&ingestExclude, "exclude", nil, "extra exclude globs")
	ingestCmd.Flags().IntVar(&ingestConcurrency, "concurrency", 0, "parallel documents (default: ingest.max_concurrency)")
	ingestCmd.Flags().BoolVar(&ingestWatch, "watch", false, "keep watching the directory for changes")
	_ = ingestCmd.MarkFlagRequired("agent")
	rootCmd.AddCommand(ingestCmd)
}
