package main

import (
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"ignis/internal/version"
)

var rootCmd = &cobra.Command{
	Use:   "ignis",
	Short: "Ignis kernel compiler IR toolbox",
	Long:  `Ignis lowers accelerator kernels through an SSA IR; this tool builds, transforms and dumps that IR`,
}

func main() {
	rootCmd.Version = version.Version

	rootCmd.AddCommand(demoCmd)
	rootCmd.AddCommand(dumpCmd)
	rootCmd.AddCommand(passesCmd)
	rootCmd.AddCommand(versionCmd)

	rootCmd.PersistentFlags().String("color", "auto", "colorize output (auto|on|off)")
	rootCmd.PersistentFlags().Bool("timings", false, "show timing information")
	rootCmd.PersistentFlags().Int("jobs", 0, "parallel method jobs (0 = the config's jobs, all cores when that is 0 too)")
	rootCmd.PersistentFlags().String("config", "", "pipeline configuration file (ignis.toml)")
	rootCmd.PersistentFlags().String("trace", "off", "trace level (off|pass|detail)")

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// isTerminal reports whether f is attached to a terminal.
func isTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}

// setupColor applies the --color flag to the global color toggle.
func setupColor(cmd *cobra.Command) {
	mode, _ := cmd.Flags().GetString("color")
	switch mode {
	case "on":
		color.NoColor = false
	case "off":
		color.NoColor = true
	default:
		color.NoColor = !isTerminal(os.Stdout)
	}
}
