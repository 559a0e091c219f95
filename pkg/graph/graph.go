package graph

import (
	"io"
	"reflect"
	"slices"

	"github.com/aretw0/typomata/pkg/index"
	"github.com/aretw0/typomata/pkg/types"
)

// Node is one distinct concrete state type.
type Node struct {
	ID   string       `json:"id"`
	Type reflect.Type `json:"-"`
}

// Edge is one possible (from, action, to) move of a handler.
type Edge struct {
	From    string `json:"from"`
	Action  string `json:"action"`
	To      string `json:"to"`
	Handler string `json:"handler"`
	Label   string `json:"label,omitempty"`
}

// Description is the renderer-neutral graph of a machine.
type Description struct {
	Name  string `json:"name"`
	Nodes []Node `json:"nodes"`
	Edges []Edge `json:"edges"`
}

// Renderer turns a Description into a concrete diagram format.
type Renderer interface {
	Render(w io.Writer, d Description) error
}

// RendererFunc adapts an ordinary function to the Renderer interface.
type RendererFunc func(w io.Writer, d Description) error

// Render calls f(w, d).
func (f RendererFunc) Render(w io.Writer, d Description) error {
	return f(w, d)
}

// Export walks idx in declaration order.
// Nodes are the distinct state types in first-seen order, followed by any
// extra declared states not reached by an edge. Every edge of idx yields one
// graph edge per result type.
func Export(name string, idx *index.Index, extra ...reflect.Type) Description {
	d := Description{Name: name, Nodes: []Node{}, Edges: []Edge{}}

	var seen []reflect.Type
	addNode := func(t reflect.Type) {
		if t == nil || slices.Contains(seen, t) {
			return
		}
		seen = append(seen, t)
		d.Nodes = append(d.Nodes, Node{ID: types.Name(t), Type: t})
	}

	for _, e := range idx.Edges() {
		addNode(e.State)
		for _, r := range e.Results {
			addNode(r)
			d.Edges = append(d.Edges, Edge{
				From:    types.Name(e.State),
				Action:  types.Name(e.Action),
				To:      types.Name(r),
				Handler: e.Handler,
				Label:   e.Label,
			})
		}
	}
	for _, t := range extra {
		addNode(t)
	}

	return d
}

// Node returns the node with the given ID.
func (d Description) Node(id string) (Node, bool) {
	for _, n := range d.Nodes {
		if n.ID == id {
			return n, true
		}
	}
	return Node{}, false
}
