package vectordb

// Record is one chunk as stored in the vector store.
type Record struct {
	ID        string
	Content   string
	Embedding []float32
	Metadata  map[string]string
}

// Match pairs a stored record with its similarity to a query embedding.
// Record.Embedding is populated so callers can compare matches with each
// other.
type Match struct {
	Record
	Similarity float32
}
