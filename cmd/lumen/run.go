package main

import (
	"fmt"
	"os"

	"github.com/lumenjs/lumen/internal/parser"
	"github.com/lumenjs/lumen/pkg/engine"
	"github.com/spf13/cobra"
)

var (
	evalExpr string
	dumpAST  bool
	trace    bool
)

var runCmd = &cobra.Command{
	Use:   "run [file]",
	Short: "Run a script file or expression",
	Long: `Execute a script from a file or inline expression.

Examples:
  # Run a script file
  lumen run script.js

  # Evaluate an inline expression
  lumen run -e "1 + 2 * 3;"

  # Run with AST dump (for debugging)
  lumen run --dump-ast script.js`,
	Args: cobra.MaximumNArgs(1),
	RunE: runScript,
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().StringVarP(&evalExpr, "eval", "e", "", "evaluate inline code instead of reading from file")
	runCmd.Flags().BoolVar(&dumpAST, "dump-ast", false, "dump the parsed AST (for debugging)")
	runCmd.Flags().BoolVar(&trace, "trace", false, "note that execution started (for debugging)")
}

func runScript(cmd *cobra.Command, args []string) error {
	input, filename, err := resolveScriptInput(evalExpr, args)
	if err != nil {
		return err
	}

	if dumpAST {
		program, parseErrs := parser.Parse(input)
		if len(parseErrs) != 0 {
			return reportParseErrors(input, filename, parseErrs)
		}
		fmt.Println("AST:")
		fmt.Println(program.String())
		fmt.Println()
	}

	if trace {
		fmt.Fprintf(os.Stderr, "[trace] executing %s\n", filename)
	}

	e, err := engine.New()
	if err != nil {
		return fmt.Errorf("failed to create engine: %w", err)
	}

	result, err := e.ExecuteScript(input)
	if err != nil {
		return err
	}

	verbose, _ := cmd.Flags().GetBool("verbose")
	if verbose {
		fmt.Printf("=> %s\n", result.String())
	}

	return nil
}

// resolveScriptInput picks the script source from the -e flag, a file
// argument, or neither, following the same shape across run/lex/compile.
func resolveScriptInput(eval string, args []string) (input, filename string, err error) {
	if eval != "" {
		return eval, "<eval>", nil
	}
	if len(args) == 1 {
		content, readErr := os.ReadFile(args[0])
		if readErr != nil {
			return "", "", fmt.Errorf("failed to read file %s: %w", args[0], readErr)
		}
		return string(content), args[0], nil
	}
	return "", "", fmt.Errorf("either provide a file path or use -e flag for inline code")
}
