package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/aretw0/typomata/internal/cli"
	"github.com/aretw0/typomata/internal/presentation/tui"
	"github.com/aretw0/typomata/pkg/codec"
	"github.com/spf13/cobra"
)

// runCmd represents the run command
var runCmd = &cobra.Command{
	Use:   "run [script]",
	Short: "Apply actions to a machine and trace each transition",
	Long: `Runs a script (YAML or JSON) of actions against the selected machine,
printing one line per transition. A single step can be given inline:

  typomata run --state '{"type":"Idle","data":{"stock":1}}' --action '{"type":"InsertCoin"}'`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		script, err := scriptFrom(cmd, args)
		if err != nil {
			return err
		}
		if script.Machine != "" && !cmd.Flags().Changed("machine") {
			if err := cmd.Flags().Set("machine", script.Machine); err != nil {
				return err
			}
		}

		m, err := loadMachine(cmd)
		if err != nil {
			return err
		}

		tracer := tui.NewTracer(os.Stdout)
		final, err := cli.RunScript(context.Background(), m, script, func(s cli.Step) {
			if s.Err != nil {
				tracer.Fail(s.Index, s.Err)
				return
			}
			tracer.Step(s.Index, s.From, s.Action, s.Handler, s.To)
		})
		if err != nil {
			return err
		}

		fmt.Printf("final: %+v\n", final)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().String("state", "", "Initial state as a JSON envelope")
	runCmd.Flags().String("action", "", "Action as a JSON envelope")
}

func scriptFrom(cmd *cobra.Command, args []string) (*cli.Script, error) {
	if len(args) > 0 {
		return cli.LoadScript(args[0])
	}

	state, _ := cmd.Flags().GetString("state")
	action, _ := cmd.Flags().GetString("action")
	if state == "" || action == "" {
		return nil, errors.New("either a script file or both --state and --action are required")
	}

	var s cli.Script
	if err := json.Unmarshal([]byte(state), &s.Initial); err != nil {
		return nil, fmt.Errorf("invalid --state: %w", err)
	}
	var a codec.Envelope
	if err := json.Unmarshal([]byte(action), &a); err != nil {
		return nil, fmt.Errorf("invalid --action: %w", err)
	}
	s.Actions = []codec.Envelope{a}
	return &s, nil
}
