package knowledge

import (
	"fmt"
	"strconv"
)

// Metadata keys attached to every stored chunk.
const (
	MetaAgentID  = "agent_id"
	MetaPath     = "path"
	MetaFilename = "filename"
	MetaOrdinal  = "ordinal"
)

// DocumentKey identifies a document. Callers must keep keys unique per
// agent; Path is expected to end with a separator since it is joined to
// Filename without one.
type DocumentKey struct {
	AgentID  string
	Path     string
	Filename string
}

func (k DocumentKey) String() string {
	return k.AgentID + "|" + k.Path + k.Filename
}

// Metadata returns the store metadata for the chunk of k at ordinal.
func (k DocumentKey) Metadata(ordinal int) map[string]string {
	return map[string]string{
		MetaAgentID:  k.AgentID,
		MetaPath:     k.Path,
		MetaFilename: k.Filename,
		MetaOrdinal:  strconv.Itoa(ordinal),
	}
}

// ChunkID returns the store id of a chunk: "{agent}|{path}{filename}|{ordinal}".
func ChunkID(agentID, path, filename string, ordinal int) string {
	return fmt.Sprintf("%s|%s%s|%d", agentID, path, filename, ordinal)
}

// ChunkIDs returns the ids of ordinals [0, total) of the document.
func ChunkIDs(key DocumentKey, total int) []string {
	return ChunkIDRange(key, 0, total)
}

// ChunkIDRange returns the ids of ordinals [from, to) of the document.
func ChunkIDRange(key DocumentKey, from, to int) []string {
	if from < 0 {
		from = 0
	}
	if to <= from {
		return nil
	}
	ids := make([]string, 0, to-from)
	for i := from; i < to; i++ {
		ids = append(ids, ChunkID(key.AgentID, key.Path, key.Filename, i))
	}
	return ids
}
