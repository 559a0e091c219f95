package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/aretw0/typomata"
	"github.com/aretw0/typomata/pkg/adapters/dot"
	"github.com/aretw0/typomata/pkg/adapters/mermaid"
	"github.com/aretw0/typomata/pkg/graph"
	"github.com/spf13/cobra"
)

// graphCmd represents the graph command
var graphCmd = &cobra.Command{
	Use:   "graph",
	Short: "Export the state graph visualization",
	Long: `Builds the selected machine and writes its state graph to stdout.
Formats: mermaid (graph TD, default), dot (Graphviz) or json.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		format, _ := cmd.Flags().GetString("format")
		current, _ := cmd.Flags().GetString("current")

		m, err := loadMachine(cmd)
		if err != nil {
			return err
		}

		var r graph.Renderer
		switch format {
		case "mermaid":
			r = mermaid.Renderer{}
			if current != "" {
				r = mermaid.Renderer{Overlay: &mermaid.Overlay{Current: current}}
			}
		case "dot":
			r = dot.Renderer{}
		case "json":
			r = graph.RendererFunc(func(w io.Writer, d graph.Description) error {
				enc := json.NewEncoder(w)
				enc.SetIndent("", "  ")
				return enc.Encode(d)
			})
		default:
			return fmt.Errorf("unknown format %q (supported: mermaid, dot, json)", format)
		}

		return typomata.GenerateDiagram(m, r, os.Stdout)
	},
}

func init() {
	rootCmd.AddCommand(graphCmd)

	graphCmd.Flags().StringP("format", "f", "mermaid", "Output format: mermaid, dot or json")
	graphCmd.Flags().String("current", "", "State to highlight (mermaid only)")
}
