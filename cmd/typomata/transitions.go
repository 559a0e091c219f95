package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/aretw0/typomata/internal/presentation/tui"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

var transitionsCmd = &cobra.Command{
	Use:     "transitions",
	Aliases: []string{"map"},
	Short:   "Print the transition map of a machine",
	Long: `Lists every (state, action) pair the machine accepts together with the handler,
the declared result types and the optional label.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		format, _ := cmd.Flags().GetString("format")
		pretty, _ := cmd.Flags().GetBool("pretty")

		m, err := loadMachine(cmd)
		if err != nil {
			return err
		}
		entries := m.TransitionMap()

		switch format {
		case "table":
			tw := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "STATE\tACTION\tHANDLER\tRESULTS\tLABEL")
			for _, e := range entries {
				fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n", e.State, e.Action, e.Handler, strings.Join(e.Results, ", "), e.Label)
			}
			return tw.Flush()
		case "markdown":
			md := tui.TransitionTable(m.Name(), entries)
			if pretty {
				out, err := tui.NewRenderer()(md)
				if err != nil {
					return err
				}
				md = out
			}
			fmt.Print(md)
			return nil
		case "yaml":
			enc := yaml.NewEncoder(os.Stdout)
			enc.SetIndent(2)
			defer enc.Close()
			return enc.Encode(entries)
		case "json":
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(entries)
		default:
			return fmt.Errorf("unknown format %q (supported: table, markdown, yaml, json)", format)
		}
	},
}

func init() {
	rootCmd.AddCommand(transitionsCmd)

	transitionsCmd.Flags().StringP("format", "f", "table", "Output format: table, markdown, yaml or json")
	transitionsCmd.Flags().Bool("pretty", false, "Render markdown output for the terminal")
}
