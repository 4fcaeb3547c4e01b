package main

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"ignis/internal/transform"
)

var passesCmd = &cobra.Command{
	Use:   "passes",
	Short: "List registered transformation passes",
	Run: func(cmd *cobra.Command, args []string) {
		setupColor(cmd)
		name := color.New(color.Bold)
		for _, info := range transform.Registry() {
			name.Printf("%-20s", info.Name)
			fmt.Printf(" %s\n", info.Summary)
		}
	},
}
