package store

// Evidence is a retrieved fragment supporting a generated answer.
// Page and ResourcePath are empty when the source did not carry them.
type Evidence struct {
	ID           string                 `json:"id"`
	Text         string                 `json:"text"`
	Page         string                 `json:"page,omitempty"`
	ResourcePath string                 `json:"resource_path,omitempty"`
	Score        *float64               `json:"score"`
	Metadata     map[string]interface{} `json:"metadata"`
}

// Metadata keys the retriever fills in, mirrored into Page / ResourcePath.
const (
	MetadataPageLabel = "page_label"
	MetadataFilePath  = "file_path"
)

// FromMetadata builds an Evidence, lifting page and path out of the metadata map.
func FromMetadata(id, text string, score *float64, metadata map[string]interface{}) Evidence {
	if metadata == nil {
		metadata = map[string]interface{}{}
	}
	ev := Evidence{
		ID:       id,
		Text:     text,
		Score:    score,
		Metadata: metadata,
	}
	if v, ok := metadata[MetadataPageLabel].(string); ok {
		ev.Page = v
	}
	if v, ok := metadata[MetadataFilePath].(string); ok {
		ev.ResourcePath = v
	}
	return ev
}

// SourceNode is the client-facing shape of an evidence item.
type SourceNode struct {
	ID       string                 `json:"id"`
	Metadata map[string]interface{} `json:"metadata"`
	Score    *float64               `json:"score"`
	Text     string                 `json:"text"`
}

func (e Evidence) Node() SourceNode {
	md := e.Metadata
	if md == nil {
		md = map[string]interface{}{}
	}
	return SourceNode{
		ID:       e.ID,
		Metadata: md,
		Score:    e.Score,
		Text:     e.Text,
	}
}

func Nodes(evidence []Evidence) []SourceNode {
	nodes := make([]SourceNode, len(evidence))
	for i, e := range evidence {
		nodes[i] = e.Node()
	}
	return nodes
}
