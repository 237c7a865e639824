// Package export projects the program state into structured documents
// and catalog CSV files. Builders are pure: they read a snapshot and
// never mutate their inputs; rendering and artifact storage live in the
// Service.
package export

// BlockKind discriminates document content blocks.
type BlockKind string

// Supported block kinds.
const (
	BlockParagraph BlockKind = "paragraph"
	BlockTable     BlockKind = "table"
)

// ParagraphStyle hints how a renderer should weight a paragraph.
type ParagraphStyle string

// Paragraph styles understood by renderers.
const (
	StyleTitle   ParagraphStyle = "title"
	StyleHeading ParagraphStyle = "heading"
	StyleBody    ParagraphStyle = "body"
)

// Paragraph is a single run of styled text.
type Paragraph struct {
	Text  string         `json:"text"`
	Style ParagraphStyle `json:"style"`
}

// Table is a header row plus body rows. Cells are plain text; column
// count follows the header.
type Table struct {
	Header []string   `json:"header"`
	Rows   [][]string `json:"rows"`
}

// Block is one content block of a document. Exactly one of Paragraph or
// Table is set, per Kind.
type Block struct {
	Kind      BlockKind  `json:"kind"`
	Paragraph *Paragraph `json:"paragraph,omitempty"`
	Table     *Table     `json:"table,omitempty"`
}

// Document is an ordered list of content blocks a renderer serializes
// to its output format.
type Document struct {
	Title  string  `json:"title"`
	Blocks []Block `json:"blocks"`
}

func (d *Document) paragraph(style ParagraphStyle, text string) {
	d.Blocks = append(d.Blocks, Block{Kind: BlockParagraph, Paragraph: &Paragraph{Text: text, Style: style}})
}

func (d *Document) table(header []string, rows [][]string) {
	d.Blocks = append(d.Blocks, Block{Kind: BlockTable, Table: &Table{Header: header, Rows: rows}})
}
