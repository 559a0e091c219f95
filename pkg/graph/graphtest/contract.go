package graphtest

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/aretw0/typomata/pkg/graph"
)

// Sample is the coffee machine graph used by the contract.
var Sample = graph.Description{
	Name: "coffee",
	Nodes: []graph.Node{
		{ID: "Idle"},
		{ID: "Brewing"},
		{ID: "OutOfCoffee"},
	},
	Edges: []graph.Edge{
		{From: "Idle", Action: "InsertCoin", To: "Brewing", Handler: "start_brewing"},
		{From: "Brewing", Action: "BrewCoffee", To: "Idle", Handler: "finish_brewing"},
		{From: "Brewing", Action: "BrewCoffee", To: "OutOfCoffee", Handler: "finish_brewing"},
		{From: "Idle", Action: "Refill", To: "Idle", Handler: "refill", Label: "restock"},
		{From: "OutOfCoffee", Action: "Refill", To: "Idle", Handler: "refill", Label: "restock"},
	},
}

var errWrite = errors.New("disk full")

type failingWriter struct{}

func (failingWriter) Write([]byte) (int, error) { return 0, errWrite }

// RunRendererContract is a reusable test suite that verifies if a renderer complies with graph.Renderer.
func RunRendererContract(t *testing.T, r graph.Renderer) {
	t.Helper()

	t.Run("Render_MentionsEveryNodeAndAction", func(t *testing.T) {
		var buf bytes.Buffer
		if err := r.Render(&buf, Sample); err != nil {
			t.Fatalf("unexpected error rendering sample: %v", err)
		}
		out := buf.String()
		for _, n := range Sample.Nodes {
			if !strings.Contains(out, n.ID) {
				t.Errorf("node %s missing from output:\n%s", n.ID, out)
			}
		}
		for _, e := range Sample.Edges {
			if !strings.Contains(out, e.Action) {
				t.Errorf("action %s missing from output:\n%s", e.Action, out)
			}
		}
	})

	t.Run("Render_Deterministic", func(t *testing.T) {
		var a, b bytes.Buffer
		if err := r.Render(&a, Sample); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if err := r.Render(&b, Sample); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if a.String() != b.String() {
			t.Errorf("output differs between runs")
		}
	})

	t.Run("Render_Empty", func(t *testing.T) {
		var buf bytes.Buffer
		if err := r.Render(&buf, graph.Description{Name: "empty"}); err != nil {
			t.Errorf("unexpected error rendering empty graph: %v", err)
		}
	})

	t.Run("Render_WriterError", func(t *testing.T) {
		if err := r.Render(failingWriter{}, Sample); !errors.Is(err, errWrite) {
			t.Errorf("expected writer error to propagate, got %v", err)
		}
	})
}
