package library

import (
	"context"
	"path"

	"github.com/ziadkadry99/agentrag/internal/knowledge"
	"github.com/ziadkadry99/agentrag/internal/loader"
	"github.com/ziadkadry99/agentrag/internal/walker"
)

// IngestOptions controls directory ingestion.
type IngestOptions struct {
	Root        string
	Include     []string
	Exclude     []string
	Prefix      string // prepended to every document path, e.g. "handbook/"
	Concurrency int
}

// documentPath maps a file's directory to the document path stored for it.
func (o IngestOptions) documentPath(dir string) string {
	if o.Prefix == "" {
		return dir
	}
	p := path.Clean(o.Prefix + "/" + dir)
	if p == "." {
		return ""
	}
	return p + "/"
}

func (o IngestOptions) walkOptions() walker.Options {
	return walker.Options{Root: o.Root, Include: o.Include, Exclude: o.Exclude}
}

// IngestDirectory indexes every document under opts.Root for the agent.
// Per-file failures are collected in the result rather than aborting.
func (l *Library) IngestDirectory(ctx context.Context, agentID string, opts IngestOptions, onProgress knowledge.ProgressFunc) (*knowledge.BatchResult, error) {
	if _, err := l.GetAgent(ctx, agentID); err != nil {
		return nil, err
	}

	files, err := walker.Walk(opts.walkOptions())
	if err != nil {
		return nil, err
	}

	jobs := make([]knowledge.Job, len(files))
	for i, f := range files {
		jobs[i] = knowledge.Job{
			Key:    knowledge.DocumentKey{AgentID: agentID, Path: opts.documentPath(f.Dir), Filename: f.Name},
			Source: f.RelPath,
			Load: func(context.Context) (string, error) {
				return loader.LoadFile(f.Path)
			},
		}
	}

	b := knowledge.NewBatcher(opts.Concurrency, l.indexJob, onProgress)
	return b.Run(ctx, jobs), nil
}

func (l *Library) indexJob(ctx context.Context, key knowledge.DocumentKey, text string) (knowledge.JobResult, error) {
	res, err := l.AddDocument(ctx, key.AgentID, key.Path, key.Filename, text)
	if err != nil {
		return knowledge.JobResult{}, err
	}
	return knowledge.JobResult{Key: key, Chunks: res.Record.TotalChunks, Skipped: res.Skipped}, nil
}
