package ingest

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
	"unicode"
	"unicode/utf8"

	"trip-assistant/internal/models"

	"github.com/google/uuid"
)

// MetaContentHash is set on every chunk; identical text hashes identically.
const MetaContentHash = "contentHash"

// Chunker splits text at paragraph, then sentence boundaries into pieces
// close to a target size measured in runes.
type Chunker struct {
	size      int
	minSize   int
	maxChunks int
}

func NewChunker(cfg *Config) *Chunker {
	c := &Chunker{size: cfg.ChunkSize, minSize: cfg.MinChunkSize, maxChunks: cfg.MaxChunks}
	if c.size <= 0 {
		c.size = 500
	}
	if c.minSize < 0 || c.minSize > c.size {
		c.minSize = 0
	}
	if c.maxChunks <= 0 {
		c.maxChunks = 20
	}
	return c
}

// Split returns at most maxChunks non-empty pieces. Pieces shorter than the
// minimum size are merged into a neighbour; a document shorter than the
// minimum stays a single piece.
func (c *Chunker) Split(text string) []string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = strings.ReplaceAll(text, "\r", "\n")

	var units []string
	for _, para := range strings.Split(text, "\n\n") {
		para = strings.TrimSpace(para)
		if para == "" {
			continue
		}
		if runeLen(para) <= c.size {
			units = append(units, para)
			continue
		}
		for _, sentence := range splitSentences(para) {
			units = append(units, c.hardSplit(sentence)...)
		}
	}

	pieces := c.pack(units)
	pieces = c.mergeShort(pieces)
	if len(pieces) > c.maxChunks {
		pieces = pieces[:c.maxChunks]
	}
	return pieces
}

// Chunk splits a document into chunks carrying a copy of its metadata.
func (c *Chunker) Chunk(doc models.Document) []models.Chunk {
	pieces := c.Split(doc.Content)
	chunks := make([]models.Chunk, 0, len(pieces))
	for i, piece := range pieces {
		meta := models.CopyMetadata(doc.Metadata)
		if _, ok := meta[models.MetaDocumentID]; !ok {
			meta[models.MetaDocumentID] = doc.ID
		}
		sum := sha256.Sum256([]byte(piece))
		meta[MetaContentHash] = hex.EncodeToString(sum[:])

		chunks = append(chunks, models.Chunk{
			ID:         uuid.NewString(),
			DocumentID: doc.ID,
			Index:      i,
			Content:    piece,
			Metadata:   meta,
		})
	}
	return chunks
}

// pack greedily joins consecutive units while they fit the target size.
func (c *Chunker) pack(units []string) []string {
	var out []string
	var current strings.Builder
	currentLen := 0
	for _, u := range units {
		ul := runeLen(u)
		if currentLen > 0 && currentLen+1+ul > c.size {
			out = append(out, current.String())
			current.Reset()
			currentLen = 0
		}
		if currentLen > 0 {
			current.WriteByte('\n')
			currentLen++
		}
		current.WriteString(u)
		currentLen += ul
	}
	if currentLen > 0 {
		out = append(out, current.String())
	}
	return out
}

func (c *Chunker) mergeShort(pieces []string) []string {
	if c.minSize == 0 || len(pieces) < 2 {
		return pieces
	}
	out := make([]string, 0, len(pieces))
	for _, p := range pieces {
		if len(out) > 0 && (runeLen(p) < c.minSize || runeLen(out[len(out)-1]) < c.minSize) {
			out[len(out)-1] = out[len(out)-1] + "\n" + p
			continue
		}
		out = append(out, p)
	}
	return out
}

// hardSplit cuts s into size-rune windows, preferring whitespace near the cut.
func (c *Chunker) hardSplit(s string) []string {
	if runeLen(s) <= c.size {
		return []string{s}
	}
	var out []string
	runes := []rune(s)
	for len(runes) > c.size {
		cut := c.size
		for i := c.size; i > c.size/2; i-- {
			if unicode.IsSpace(runes[i]) {
				cut = i
				break
			}
		}
		out = append(out, strings.TrimSpace(string(runes[:cut])))
		runes = []rune(strings.TrimSpace(string(runes[cut:])))
	}
	if len(runes) > 0 {
		out = append(out, string(runes))
	}
	return out
}

func splitSentences(para string) []string {
	var out []string
	runes := []rune(para)
	start := 0
	for i, r := range runes {
		if !isTerminator(r) {
			continue
		}
		if i+1 < len(runes) && !unicode.IsSpace(runes[i+1]) && !alwaysSplits(r) {
			continue
		}
		if s := strings.TrimSpace(string(runes[start : i+1])); s != "" {
			out = append(out, s)
		}
		start = i + 1
	}
	if s := strings.TrimSpace(string(runes[start:])); s != "" {
		out = append(out, s)
	}
	return out
}

func isTerminator(r rune) bool {
	switch r {
	case '.', '!', '?':
		return true
	}
	return alwaysSplits(r)
}

// alwaysSplits reports terminators that end a sentence even without trailing space.
func alwaysSplits(r rune) bool {
	switch r {
	case '\n', '。', '！', '？':
		return true
	}
	return false
}

func runeLen(s string) int {
	return utf8.RuneCountInString(s)
}
