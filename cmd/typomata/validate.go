package main

import (
	"errors"
	"fmt"

	"github.com/aretw0/typomata/internal/machines"
	"github.com/spf13/cobra"
)

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Build every bundled machine and report declaration errors",
	Long:  `Builds each registered machine. Ambiguous or unsupported declarations are reported per machine.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		logger, err := newLogger(cmd)
		if err != nil {
			return err
		}

		reg := machines.Default()
		var errs []error
		for _, name := range reg.Names() {
			m, err := reg.Build(name)
			if err != nil {
				fmt.Printf("✗ %s\n", name)
				errs = append(errs, fmt.Errorf("%s: %w", name, err))
				continue
			}
			logger.Debug("Machine valid", "machine", name, "transitions", len(m.TransitionMap()))
			fmt.Printf("✓ %s (%d transitions)\n", name, len(m.TransitionMap()))
		}

		if err := errors.Join(errs...); err != nil {
			return fmt.Errorf("validation failed: %w", err)
		}
		fmt.Println("All machines are valid!")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(validateCmd)
}
