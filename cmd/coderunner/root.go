package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pathlab/coderunner/platform"
)

var rootCmd = &cobra.Command{
	Use:   "coderunner [file]",
	Short: "Sandboxed snippet runner for JavaScript and Python",
	Long: `coderunner - Run short JavaScript and Python snippets in a sandbox.

Imports are detected statically; supported packages are fetched and loaded
on demand (CDN bundles for JavaScript, builtin or wheel-installed modules
for the WASM-hosted Python interpreter). Code can come from a file, an
inline flag, or stdin.`,
	Args: cobra.MaximumNArgs(1),
	Run:  runRun, // Default to run command behavior
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringP("lang", "l", "", "Language: js, python (default: infer from file extension)")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "Log phase transitions to stderr")

	addRunFlags(rootCmd)
}

// getLanguage resolves the language from the flag, falling back to the file
// extension when a file argument was given.
func getLanguage(langFlag, filename string) (platform.Language, error) {
	spelling := langFlag

	if spelling == "" && filename != "" {
		switch strings.ToLower(filepath.Ext(filename)) {
		case ".py":
			spelling = "python"
		case ".js", ".mjs", ".cjs":
			spelling = "javascript"
		}
	}

	if spelling == "" {
		return "", fmt.Errorf("language required: use --lang js or --lang python")
	}
	return platform.ParseLanguage(spelling)
}
