package main

import (
	"fmt"
	"strings"

	"github.com/aretw0/typomata"
	"github.com/spf13/cobra"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number of typomata",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("typomata version %s\n", strings.TrimSpace(typomata.Version))
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
