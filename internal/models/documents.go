package models

// Metadata keys attached to documents and copied onto their chunks.
const (
	MetaDocumentID = "documentId"
	MetaPlaceID    = "placeId"
	MetaName       = "name"
	MetaRegion     = "region"
	MetaThemes     = "themes"
)

// Document is a unit of ingestible text.
type Document struct {
	ID       string                 `json:"id"`
	Content  string                 `json:"content"`
	Metadata map[string]interface{} `json:"metadata"`
}

// Chunk is a contiguous piece of a document, the unit of embedding and retrieval.
type Chunk struct {
	ID         string                 `json:"id"`
	DocumentID string                 `json:"documentId"`
	Index      int                    `json:"index"`
	Content    string                 `json:"content"`
	Metadata   map[string]interface{} `json:"metadata"`
}

// SearchResult is one retrieved chunk with its similarity score.
type SearchResult struct {
	DocumentID string                 `json:"documentId"`
	Content    string                 `json:"content"`
	Metadata   map[string]interface{} `json:"metadata"`
	Score      float64                `json:"score"`
}

// Title is the best human readable label for a result, used in source lists.
func (r SearchResult) Title() string {
	if name, ok := r.Metadata[MetaName].(string); ok && name != "" {
		return name
	}
	if id, ok := r.Metadata[MetaDocumentID].(string); ok && id != "" {
		return id
	}
	return r.DocumentID
}

// CopyMetadata returns a shallow copy so chunks never alias their parent's map.
func CopyMetadata(in map[string]interface{}) map[string]interface{} {
	out := make(map[string]interface{}, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}
