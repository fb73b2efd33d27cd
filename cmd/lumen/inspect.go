package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"
)

var inspectSet string

var inspectCmd = &cobra.Command{
	Use:   "inspect <file> [path]",
	Short: "Query or patch a persisted bytecode document",
	Long: `Query (gjson) or patch (sjson) a field of a compact bytecode document
without reconstructing a Chunk from it. This only touches the serialized
document on disk; it never loads the result into a VM.

Examples:
  # Read a field
  lumen inspect dump.lbc constants.0.value

  # Patch a field in place
  lumen inspect --set constants.0.value=42 dump.lbc`,
	Args: cobra.RangeArgs(1, 2),
	RunE: runInspect,
}

func init() {
	rootCmd.AddCommand(inspectCmd)
	inspectCmd.Flags().StringVar(&inspectSet, "set", "", "path=value assignment to patch into the document")
}

func runInspect(_ *cobra.Command, args []string) error {
	path := args[0]
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", path, err)
	}

	if inspectSet != "" {
		key, value, ok := strings.Cut(inspectSet, "=")
		if !ok {
			return fmt.Errorf("--set expects path=value, got %q", inspectSet)
		}
		patched, err := sjson.SetRaw(string(data), key, jsonLiteral(value))
		if err != nil {
			return fmt.Errorf("failed to patch %s at %s: %w", path, key, err)
		}
		if err := os.WriteFile(path, []byte(patched), 0644); err != nil {
			return fmt.Errorf("failed to write %s: %w", path, err)
		}
		fmt.Printf("Patched %s at %s\n", path, key)
		return nil
	}

	if len(args) != 2 {
		return fmt.Errorf("query mode requires a path argument, e.g. lumen inspect %s constants.0.value", path)
	}
	result := gjson.GetBytes(data, args[1])
	if !result.Exists() {
		return fmt.Errorf("path %s not found in %s", args[1], path)
	}
	fmt.Println(result.String())
	return nil
}

// jsonLiteral decides whether value should be patched in as a raw JSON
// literal (number, bool, null, already-quoted string) or quoted as a plain
// string, since sjson.SetRaw inserts its argument verbatim.
func jsonLiteral(value string) string {
	switch value {
	case "true", "false", "null":
		return value
	}
	if value == "" {
		return `""`
	}
	if (value[0] == '"' && value[len(value)-1] == '"') ||
		(value[0] == '{' || value[0] == '[') {
		return value
	}
	if isNumeric(value) {
		return value
	}
	return fmt.Sprintf("%q", value)
}

func isNumeric(s string) bool {
	if s == "" {
		return false
	}
	seenDigit := false
	for i, r := range s {
		switch {
		case r >= '0' && r <= '9':
			seenDigit = true
		case r == '-' && i == 0:
		case r == '.':
		default:
			return false
		}
	}
	return seenDigit
}
