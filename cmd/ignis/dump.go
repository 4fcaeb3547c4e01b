package main

import (
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"ignis/internal/ir"
	"ignis/internal/types"
)

var dumpCmd = &cobra.Command{
	Use:   "dump",
	Short: "Build the sample kernels and dump their IR without running passes",
	RunE:  runDump,
}

func init() {
	dumpCmd.Flags().String("kernel", "", "dump a single kernel by name")
}

func runDump(cmd *cobra.Command, args []string) error {
	setupColor(cmd)
	kernel, _ := cmd.Flags().GetString("kernel")

	ctx := ir.NewContext(types.NewInterner())
	methods, err := buildKernels(ctx, kernel)
	if err != nil {
		return err
	}

	header := color.New(color.FgCyan, color.Bold)
	for _, m := range methods {
		header.Printf("== %s ==\n", m.Name())
		if err := ir.DumpMethod(os.Stdout, m); err != nil {
			return err
		}
	}
	return nil
}
