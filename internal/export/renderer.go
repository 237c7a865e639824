package export

import "encoding/json"

// Renderer serializes a Document to artifact bytes. DOCX and PDF
// renderers live behind this interface; the JSON renderer is the
// default and the test vehicle.
type Renderer interface {
	Render(doc Document) ([]byte, error)
	ContentType() string
	Extension() string
}

// JSONRenderer emits the document structure as indented JSON.
type JSONRenderer struct{}

func (JSONRenderer) Render(doc Document) ([]byte, error) {
	return json.MarshalIndent(doc, "", "  ")
}

func (JSONRenderer) ContentType() string { return "application/json" }

func (JSONRenderer) Extension() string { return "json" }
