package extract

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
)

// Lexical handles .json and .lexical uploads containing a Lexical editor
// export. The node tree is flattened into markdown so downstream prompts
// see readable text instead of serialized editor state.
type Lexical struct{}

var _ Extractor = &Lexical{}

func (l *Lexical) Supports(ext string) bool {
	switch ext {
	case ".json", ".lexical":
		return true
	}
	return false
}

func (l *Lexical) Extract(data []byte) (string, error) {
	data = bytes.TrimPrefix(data, utf8BOM)
	var doc lexicalDocument
	if err := json.Unmarshal(data, &doc); err != nil || doc.Root.Type != "root" {
		return "", fmt.Errorf("%w: file is not a Lexical editor export", ErrUnsupportedType)
	}
	var sb strings.Builder
	for _, child := range doc.Root.Children {
		renderBlock(&sb, child, 0)
	}
	return strings.TrimRight(sb.String(), "\n") + "\n", nil
}

type lexicalDocument struct {
	Root lexicalNode `json:"root"`
}

// lexicalNode carries the union of fields the renderer reads. Format is
// kept raw because Lexical stores an int bitmask on text nodes and an
// alignment string on block nodes.
type lexicalNode struct {
	Type     string          `json:"type"`
	Tag      string          `json:"tag"`
	Text     string          `json:"text"`
	Format   json.RawMessage `json:"format"`
	URL      string          `json:"url"`
	ListType string          `json:"listType"`
	Start    int             `json:"start"`
	Checked  bool            `json:"checked"`
	Children []lexicalNode   `json:"children"`
}

const (
	styleBold      = 1 << 0
	styleItalic    = 1 << 1
	styleStrike    = 1 << 2
	styleUnderline = 1 << 3
	styleCode      = 1 << 4
)

func (n *lexicalNode) styleMask() int {
	var mask int
	if len(n.Format) > 0 && json.Unmarshal(n.Format, &mask) == nil {
		return mask
	}
	return 0
}

func renderBlock(sb *strings.Builder, n lexicalNode, depth int) {
	switch n.Type {
	case "paragraph":
		renderInline(sb, n.Children)
		sb.WriteString("\n\n")
	case "heading":
		sb.WriteString(strings.Repeat("#", headingLevel(n.Tag)))
		sb.WriteString(" ")
		renderInline(sb, n.Children)
		sb.WriteString("\n\n")
	case "quote":
		sb.WriteString("> ")
		renderInline(sb, n.Children)
		sb.WriteString("\n\n")
	case "code":
		sb.WriteString("```\n")
		renderInline(sb, n.Children)
		sb.WriteString("\n```\n\n")
	case "list":
		renderList(sb, n, depth)
		if depth == 0 {
			sb.WriteString("\n")
		}
	case "table":
		renderTable(sb, n)
	case "horizontalrule":
		sb.WriteString("---\n\n")
	default:
		for _, child := range n.Children {
			renderBlock(sb, child, depth)
		}
	}
}

func renderInline(sb *strings.Builder, nodes []lexicalNode) {
	for _, n := range nodes {
		renderInlineNode(sb, n)
	}
}

func renderInlineNode(sb *strings.Builder, n lexicalNode) {
	switch n.Type {
	case "text":
		writeStyled(sb, n)
	case "linebreak":
		sb.WriteString("\n")
	case "link", "autolink":
		sb.WriteString("[")
		renderInline(sb, n.Children)
		sb.WriteString("](")
		sb.WriteString(n.URL)
		sb.WriteString(")")
	default:
		if n.Text != "" {
			sb.WriteString(n.Text)
			return
		}
		renderInline(sb, n.Children)
	}
}

// writeStyled wraps a text run in markdown markers. Inline code wins over
// the other bits since styled code renders poorly in most viewers.
func writeStyled(sb *strings.Builder, n lexicalNode) {
	mask := n.styleMask()
	if mask&styleCode != 0 {
		sb.WriteString("`")
		sb.WriteString(n.Text)
		sb.WriteString("`")
		return
	}
	wrappers := []struct {
		bit          int
		open, closer string
	}{
		{styleBold, "**", "**"},
		{styleItalic, "_", "_"},
		{styleStrike, "~~", "~~"},
		{styleUnderline, "<u>", "</u>"},
	}
	for _, w := range wrappers {
		if mask&w.bit != 0 {
			sb.WriteString(w.open)
		}
	}
	sb.WriteString(n.Text)
	for i := len(wrappers) - 1; i >= 0; i-- {
		if mask&wrappers[i].bit != 0 {
			sb.WriteString(wrappers[i].closer)
		}
	}
}

func renderList(sb *strings.Builder, n lexicalNode, depth int) {
	counter := 1
	if n.Start > 0 {
		counter = n.Start
	}
	for _, item := range n.Children {
		if item.Type != "listitem" {
			continue
		}
		// Lexical wraps a nested list in its own item without content.
		if len(item.Children) == 1 && item.Children[0].Type == "list" {
			renderList(sb, item.Children[0], depth+1)
			continue
		}
		sb.WriteString(strings.Repeat("  ", depth))
		switch n.ListType {
		case "number":
			fmt.Fprintf(sb, "%d. ", counter)
			counter++
		case "check":
			if item.Checked {
				sb.WriteString("- [x] ")
			} else {
				sb.WriteString("- [ ] ")
			}
		default:
			sb.WriteString("- ")
		}
		nested := false
		for _, child := range item.Children {
			if child.Type == "list" {
				sb.WriteString("\n")
				renderList(sb, child, depth+1)
				nested = true
				continue
			}
			renderInlineNode(sb, child)
		}
		if !nested {
			sb.WriteString("\n")
		}
	}
}

func renderTable(sb *strings.Builder, n lexicalNode) {
	var rows [][]string
	width := 0
	for _, row := range n.Children {
		if row.Type != "tablerow" {
			continue
		}
		var cells []string
		for _, cell := range row.Children {
			var cb strings.Builder
			for _, child := range cell.Children {
				renderBlock(&cb, child, 0)
			}
			cells = append(cells, strings.Join(strings.Fields(cb.String()), " "))
		}
		rows = append(rows, cells)
		if len(cells) > width {
			width = len(cells)
		}
	}
	if len(rows) == 0 || width == 0 {
		return
	}
	writeRow := func(cells []string) {
		for i := 0; i < width; i++ {
			cell := ""
			if i < len(cells) {
				cell = cells[i]
			}
			sb.WriteString("| ")
			sb.WriteString(cell)
			sb.WriteString(" ")
		}
		sb.WriteString("|\n")
	}
	writeRow(rows[0])
	for i := 0; i < width; i++ {
		sb.WriteString("| --- ")
	}
	sb.WriteString("|\n")
	for _, row := range rows[1:] {
		writeRow(row)
	}
	sb.WriteString("\n")
}

func headingLevel(tag string) int {
	if len(tag) == 2 && tag[0] == 'h' && tag[1] >= '1' && tag[1] <= '6' {
		return int(tag[1] - '0')
	}
	return 1
}
