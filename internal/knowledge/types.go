package knowledge

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/ziadkadry99/agentrag/internal/vectordb"
)

// Chunk is a stored piece of a document.
type Chunk struct {
	Content  string `json:"content"`
	Ordinal  int    `json:"ordinal"`
	AgentID  string `json:"agent_id"`
	Path     string `json:"path"`
	Filename string `json:"filename"`
}

// ID returns the chunk's store id.
func (c Chunk) ID() string {
	return ChunkID(c.AgentID, c.Path, c.Filename, c.Ordinal)
}

// Hit is one search result.
type Hit struct {
	Score float32 `json:"score"`
	Chunk
}

func chunkFromRecord(r vectordb.Record) Chunk {
	ordinal, _ := strconv.Atoi(r.Metadata[MetaOrdinal])
	return Chunk{
		Content:  r.Content,
		Ordinal:  ordinal,
		AgentID:  r.Metadata[MetaAgentID],
		Path:     r.Metadata[MetaPath],
		Filename: r.Metadata[MetaFilename],
	}
}

// FormatHits renders hits as a human-readable numbered list.
func FormatHits(hits []Hit) string {
	if len(hits) == 0 {
		return "No results found."
	}

	var b strings.Builder
	for i, h := range hits {
		fmt.Fprintf(&b, "--- Result %d (score: %.4f) ---\n", i+1, h.Score)
		fmt.Fprintf(&b, "Source: %s%s (chunk %d)\n", h.Path, h.Filename, h.Ordinal)
		b.WriteString(h.Content)
		if !strings.HasSuffix(h.Content, "\n") {
			b.WriteByte('\n')
		}
		b.WriteByte('\n')
	}
	return b.String()
}
