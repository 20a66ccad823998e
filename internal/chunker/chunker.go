// Package chunker splits document text into overlapping, size-bounded chunks
// using recursive separator splitting.
package chunker

import (
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"
)

// ErrInvalidConfiguration is returned when chunk size or overlap are out of range.
var ErrInvalidConfiguration = errors.New("invalid chunking configuration")

// DefaultSeparators are tried from coarsest to finest. The empty separator
// splits between runes and always matches. A custom list without it may emit
// chunks longer than the chunk size when a piece contains none of its
// separators.
var DefaultSeparators = []string{"\n\n", "\n", ". ", "? ", "! ", " ", ""}

const (
	DefaultChunkSize    = 2000
	DefaultChunkOverlap = 500
)

// Options configures a Splitter.
type Options struct {
	ChunkSize    int
	ChunkOverlap int
	Separators   []string // nil means DefaultSeparators
}

// Chunk is one emitted chunk. Start is the rune offset of Text in the source
// and Overlap is the number of leading runes shared with the previous chunk.
type Chunk struct {
	Text    string
	Start   int
	Overlap int
}

// Splitter partitions text into chunks. It holds no mutable state and is safe
// for concurrent use.
type Splitter struct {
	size       int
	overlap    int
	separators []string
}

// New validates opts and returns a Splitter.
func New(opts Options) (*Splitter, error) {
	if opts.ChunkSize <= 0 {
		return nil, fmt.Errorf("%w: chunk size must be positive, got %d", ErrInvalidConfiguration, opts.ChunkSize)
	}
	if opts.ChunkOverlap < 0 || opts.ChunkOverlap >= opts.ChunkSize {
		return nil, fmt.Errorf("%w: chunk overlap must be in [0, %d), got %d",
			ErrInvalidConfiguration, opts.ChunkSize, opts.ChunkOverlap)
	}

	seps := opts.Separators
	if len(seps) == 0 {
		seps = DefaultSeparators
	}

	return &Splitter{size: opts.ChunkSize, overlap: opts.ChunkOverlap, separators: seps}, nil
}

// Split is a convenience wrapper around New(...).Split(text).
func Split(text string, chunkSize, chunkOverlap int) ([]string, error) {
	s, err := New(Options{ChunkSize: chunkSize, ChunkOverlap: chunkOverlap})
	if err != nil {
		return nil, err
	}
	return s.Split(text), nil
}

// ChunkSize returns the configured maximum chunk length in runes.
func (s *Splitter) ChunkSize() int { return s.size }

// ChunkOverlap returns the configured overlap length in runes.
func (s *Splitter) ChunkOverlap() int { return s.overlap }

// Split returns the chunk contents of text in document order.
func (s *Splitter) Split(text string) []string {
	chunks := s.SplitChunks(text)
	out := make([]string, len(chunks))
	for i, c := range chunks {
		out[i] = c.Text
	}
	return out
}

// SplitChunks returns the chunks of text together with their offsets.
func (s *Splitter) SplitChunks(text string) []Chunk {
	if text == "" {
		return nil
	}
	pieces := s.splitRecursive(text, s.separators)
	return s.merge(pieces)
}

// splitRecursive breaks text on the first separator present in it and
// recurses with finer separators on pieces that are still too long.
// Separators stay attached to the end of the piece they terminate.
func (s *Splitter) splitRecursive(text string, separators []string) []string {
	sep, found := "", false
	var finer []string
	for i, candidate := range separators {
		if candidate == "" || strings.Contains(text, candidate) {
			sep, found = candidate, true
			finer = separators[i+1:]
			break
		}
	}
	if !found {
		return []string{text}
	}

	var out []string
	for _, part := range strings.SplitAfter(text, sep) {
		if part == "" {
			continue
		}
		if utf8.RuneCountInString(part) <= s.size || len(finer) == 0 {
			out = append(out, part)
			continue
		}
		out = append(out, s.splitRecursive(part, finer)...)
	}
	return out
}

// merge packs pieces into chunks of at most s.size runes. When a chunk is
// emitted, the trailing pieces that fit within s.overlap are carried over as
// the prefix of the next chunk.
func (s *Splitter) merge(pieces []string) []Chunk {
	lengths := make([]int, len(pieces))
	for i, p := range pieces {
		lengths[i] = utf8.RuneCountInString(p)
	}

	var chunks []Chunk

	// The open window is pieces[start:end]; total is its rune length and
	// offset the rune offset of pieces[start]. carried counts the runes of the
	// window that were already part of the previous chunk.
	start, end, total, offset, carried := 0, 0, 0, 0, 0
	emittedEnd := 0

	emit := func() {
		var b strings.Builder
		for _, p := range pieces[start:end] {
			b.WriteString(p)
		}
		chunks = append(chunks, Chunk{Text: b.String(), Start: offset, Overlap: carried})
		emittedEnd = end
	}

	for end < len(pieces) {
		n := lengths[end]
		if total+n > s.size && end > start {
			emit()
			for start < end && (total > s.overlap || total+n > s.size) {
				total -= lengths[start]
				offset += lengths[start]
				start++
			}
			carried = total
		}
		total += n
		end++
	}
	if end > start && end > emittedEnd {
		emit()
	}
	return chunks
}

// Reconstruct joins chunks back into the source text by dropping each
// chunk's overlap prefix.
func Reconstruct(chunks []Chunk) string {
	var b strings.Builder
	for _, c := range chunks {
		if c.Overlap == 0 {
			b.WriteString(c.Text)
			continue
		}
		b.WriteString(string([]rune(c.Text)[c.Overlap:]))
	}
	return b.String()
}
