package dot

import (
	"fmt"
	"html"
	"io"
	"strings"

	"github.com/aretw0/typomata/pkg/graph"
)

// DefaultFont is the font used for nodes and edges.
const DefaultFont = "DejaVu Sans"

// Renderer produces Graphviz DOT source.
// Edge labels are HTML-like: the action on the first line and, when present,
// the edge label on a smaller second line.
type Renderer struct {
	Font string // Defaults to DefaultFont
}

// Render implements graph.Renderer.
func (r Renderer) Render(w io.Writer, d graph.Description) error {
	_, err := io.WriteString(w, r.Generate(d))
	return err
}

// Generate returns the DOT source for d.
func (r Renderer) Generate(d graph.Description) string {
	font := r.Font
	if font == "" {
		font = DefaultFont
	}

	name := d.Name
	if name == "" {
		name = "machine"
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "digraph %s {\n", quote(name))
	fmt.Fprintf(&sb, "    node [fontname=%s];\n", quote(font))
	fmt.Fprintf(&sb, "    edge [fontname=%s];\n", quote(font))

	for _, n := range d.Nodes {
		fmt.Fprintf(&sb, "    %s;\n", quote(n.ID))
	}

	for _, e := range d.Edges {
		label := fmt.Sprintf("<FONT POINT-SIZE='12'>%s</FONT>", html.EscapeString(e.Action))
		if e.Label != "" {
			label += fmt.Sprintf("<BR/><FONT POINT-SIZE='10'>%s</FONT>", html.EscapeString(e.Label))
		}
		fmt.Fprintf(&sb, "    %s -> %s [label=<%s>, tooltip=%s];\n",
			quote(e.From), quote(e.To), label, quote(e.Handler))
	}

	sb.WriteString("}\n")
	return sb.String()
}

func quote(s string) string {
	return "\"" + strings.ReplaceAll(s, "\"", "\\\"") + "\""
}
