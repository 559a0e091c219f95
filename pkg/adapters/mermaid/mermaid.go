package mermaid

import (
	"fmt"
	"io"
	"strings"

	"github.com/aretw0/typomata/pkg/graph"
)

// Overlay contains dynamic state data to visualize on the graph.
type Overlay struct {
	Visited []string
	Current string
}

// Renderer produces Mermaid flowchart syntax.
// Nodes without outgoing edges are drawn as ((circles)).
type Renderer struct {
	Overlay *Overlay
}

// Render implements graph.Renderer.
func (r Renderer) Render(w io.Writer, d graph.Description) error {
	_, err := io.WriteString(w, Generate(d, r.Overlay))
	return err
}

// Generate returns the Mermaid source for d.
// It also applies overlay styles (Visited/Current) if provided.
func Generate(d graph.Description, overlay *Overlay) string {
	var sb strings.Builder
	sb.WriteString("graph TD\n")

	outgoing := make(map[string]bool, len(d.Nodes))
	for _, e := range d.Edges {
		outgoing[e.From] = true
	}

	for _, n := range d.Nodes {
		opener, closer := "[", "]"
		if !outgoing[n.ID] {
			opener, closer = "((", "))"
		}
		fmt.Fprintf(&sb, "    %s%s\"%s\"%s\n", sanitizeID(n.ID), opener, escape(n.ID), closer)
	}

	for _, e := range d.Edges {
		label := escape(e.Action) + "<br/>" + escape(e.Handler)
		if e.Label != "" {
			label += "<br/>" + escape(e.Label)
		}
		fmt.Fprintf(&sb, "    %s -- \"%s\" --> %s\n", sanitizeID(e.From), label, sanitizeID(e.To))
	}

	if overlay != nil {
		sb.WriteString("\n    %% Overlay Styles\n")
		// Black text keeps contrast on light fills in both themes.
		sb.WriteString("    classDef visited fill:#e1f5fe,stroke:#01579b,stroke-width:2px,color:#000;\n")
		sb.WriteString("    classDef current fill:#ffeb3b,stroke:#fbc02d,stroke-width:4px,color:#000;\n")

		visited := make(map[string]bool)
		for _, id := range overlay.Visited {
			safeID := sanitizeID(id)
			if safeID != "" && !visited[safeID] {
				visited[safeID] = true
				fmt.Fprintf(&sb, "    class %s visited;\n", safeID)
			}
		}

		if overlay.Current != "" {
			fmt.Fprintf(&sb, "    class %s current;\n", sanitizeID(overlay.Current))
		}
	}

	return sb.String()
}

func escape(s string) string {
	return strings.ReplaceAll(s, "\"", "'")
}

func sanitizeID(id string) string {
	s := strings.ReplaceAll(id, ".", "_")
	s = strings.ReplaceAll(s, "-", "_")
	s = strings.ReplaceAll(s, "/", "_")
	s = strings.ReplaceAll(s, "\\", "_")
	s = strings.ReplaceAll(s, "*", "ptr_")
	s = strings.ReplaceAll(s, " ", "_")
	return s
}
