package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/pathlab/coderunner"
	"github.com/pathlab/coderunner/platform"
	"github.com/pathlab/coderunner/player"
)

var runCmd = &cobra.Command{
	Use:   "run [file]",
	Short: "Run one snippet and print its output",
	Long: `Execute a JavaScript or Python snippet in the sandbox.

Code can be provided via:
  - File argument: coderunner run script.py
  - Inline flag: coderunner run --lang js -c 'console.log(1+1)'
  - Stdin: echo 'print(1+1)' | coderunner run --lang python`,
	Args: cobra.MaximumNArgs(1),
	Run:  runRun,
}

func init() {
	addRunFlags(runCmd)
	rootCmd.AddCommand(runCmd)
}

func addRunFlags(cmd *cobra.Command) {
	cmd.Flags().StringP("code", "c", "", "Code to execute")
	cmd.Flags().Duration("timeout", 60*time.Second, "Execution ceiling (0 disables)")
	cmd.Flags().StringSlice("package", nil, "Pre-load a package before the run (repeatable)")
}

func runRun(cmd *cobra.Command, args []string) {
	code, _ := cmd.Flags().GetString("code")
	langFlag, _ := cmd.Flags().GetString("lang")
	timeout, _ := cmd.Flags().GetDuration("timeout")
	packages, _ := cmd.Flags().GetStringSlice("package")
	verbose, _ := cmd.Flags().GetBool("verbose")

	var source string
	var filename string

	switch {
	case code != "":
		source = code
	case len(args) > 0:
		filename = args[0]
		data, err := os.ReadFile(filename)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		source = string(data)
	default:
		stat, _ := os.Stdin.Stat()
		if (stat.Mode() & os.ModeCharDevice) != 0 {
			_ = cmd.Help()
			return
		}
		data, err := io.ReadAll(os.Stdin)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		source = string(data)
		if source == "" {
			_ = cmd.Help()
			return
		}
	}

	lang, err := getLanguage(langFlag, filename)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	var handler slog.Handler
	if verbose {
		handler = slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug})
	} else {
		handler = slog.NewTextHandler(io.Discard, nil)
	}

	opts := []player.Option{player.WithPhaseFunc(printPhase(verbose))}
	p := coderunner.NewPlayer(handler, opts...)

	ctx := context.Background()
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	result, err := p.Run(ctx, source, lang, packages...)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	for _, line := range result.OutputLines {
		fmt.Println(line)
	}
	if result.Failed() {
		fmt.Fprintf(os.Stderr, "Error: %s\n", result.Error)
		os.Exit(1)
	}
}

// printPhase renders the phase stream the way the task player's console
// panel would: quiet unless something needs the user's attention, chattier
// with --verbose.
func printPhase(verbose bool) platform.PhaseFunc {
	return func(phase platform.Phase) {
		switch phase.Kind {
		case platform.PhaseLoadingPackages:
			if len(phase.Skipped) > 0 {
				fmt.Fprintf(os.Stderr, "skipped unsupported packages: %s\n", strings.Join(phase.Skipped, ", "))
			} else if verbose && len(phase.Packages) > 0 {
				fmt.Fprintf(os.Stderr, "loading packages: %s\n", strings.Join(phase.Packages, ", "))
			}
		case platform.PhaseBootingRuntime:
			fmt.Fprintln(os.Stderr, "booting runtime...")
		default:
			if verbose {
				fmt.Fprintf(os.Stderr, "%s\n", phase.Kind)
			}
		}
	}
}
