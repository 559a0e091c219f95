package mermaid_test

import (
	"strings"
	"testing"

	"github.com/aretw0/typomata/pkg/adapters/mermaid"
	"github.com/aretw0/typomata/pkg/graph"
	"github.com/aretw0/typomata/pkg/graph/graphtest"
)

func TestRendererContract(t *testing.T) {
	graphtest.RunRendererContract(t, mermaid.Renderer{})
}

func TestGenerate(t *testing.T) {
	tests := []struct {
		name     string
		desc     graph.Description
		overlay  *mermaid.Overlay
		contains []string
	}{
		{
			name: "Node Shapes",
			desc: graphtest.Sample,
			contains: []string{
				"graph TD\n",
				"Idle[\"Idle\"]",
				"Brewing[\"Brewing\"]",
			},
		},
		{
			name: "Sink Node Is A Circle",
			desc: graph.Description{
				Nodes: []graph.Node{{ID: "Open"}, {ID: "Closed"}},
				Edges: []graph.Edge{{From: "Open", Action: "Close", To: "Closed", Handler: "close"}},
			},
			contains: []string{
				"Open[\"Open\"]",
				"Closed((\"Closed\"))",
			},
		},
		{
			name: "Edge Labels",
			desc: graphtest.Sample,
			contains: []string{
				"Idle -- \"InsertCoin<br/>start_brewing\" --> Brewing",
				"Brewing -- \"BrewCoffee<br/>finish_brewing\" --> OutOfCoffee",
				"OutOfCoffee -- \"Refill<br/>refill<br/>restock\" --> Idle",
			},
		},
		{
			name: "ID Sanitization",
			desc: graph.Description{
				Nodes: []graph.Node{{ID: "*Idle"}, {ID: "v1.State"}},
				Edges: []graph.Edge{{From: "*Idle", Action: "Go", To: "v1.State", Handler: "go"}},
			},
			contains: []string{
				"ptr_Idle[\"*Idle\"]",
				"ptr_Idle -- \"Go<br/>go\" --> v1_State",
			},
		},
		{
			name: "Label Escaping",
			desc: graph.Description{
				Nodes: []graph.Node{{ID: "A"}},
				Edges: []graph.Edge{{From: "A", Action: "Say", To: "A", Handler: "say", Label: "say \"hi\""}},
			},
			contains: []string{
				"<br/>say 'hi'\"",
			},
		},
		{
			name:    "Overlay",
			desc:    graphtest.Sample,
			overlay: &mermaid.Overlay{Visited: []string{"Idle", "Brewing", "Idle"}, Current: "OutOfCoffee"},
			contains: []string{
				"classDef visited",
				"classDef current",
				"class Idle visited;",
				"class Brewing visited;",
				"class OutOfCoffee current;",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := mermaid.Generate(tt.desc, tt.overlay)
			for _, want := range tt.contains {
				if !strings.Contains(got, want) {
					t.Errorf("Generate() missing %q\nGot:\n%s", want, got)
				}
			}
		})
	}
}

func TestGenerate_OverlayDeduplicatesVisited(t *testing.T) {
	got := mermaid.Generate(graphtest.Sample, &mermaid.Overlay{Visited: []string{"Idle", "Idle"}})

	if n := strings.Count(got, "class Idle visited;"); n != 1 {
		t.Errorf("expected one visited class for Idle, got %d", n)
	}
}
