package main

import (
	"fmt"
	"os"

	"github.com/lumenjs/lumen/internal/bytecode"
	"github.com/spf13/cobra"
)

var disasmPretty bool

var disasmCmd = &cobra.Command{
	Use:   "disasm <bytecode-file>",
	Short: "Disassemble a persisted bytecode document",
	Long: `Load a bytecode document previously written by "lumen compile" and
print its disassembly. The document format (compact JSON or pretty YAML)
is detected from the --pretty flag, matching how it was written.

Examples:
  lumen disasm script.lbc
  lumen disasm --pretty script.lbc.yaml`,
	Args: cobra.ExactArgs(1),
	RunE: disasmBytecode,
}

func init() {
	rootCmd.AddCommand(disasmCmd)
	disasmCmd.Flags().BoolVar(&disasmPretty, "pretty", false, "the input file is the YAML document form")
}

func disasmBytecode(_ *cobra.Command, args []string) error {
	path := args[0]
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", path, err)
	}

	serializer := bytecode.NewSerializer()
	var chunk *bytecode.Chunk
	if disasmPretty {
		chunk, err = serializer.Unpretty(data)
	} else {
		chunk, err = serializer.Decompact(data)
	}
	if err != nil {
		return fmt.Errorf("failed to read bytecode document %s: %w", path, err)
	}

	fmt.Println(bytecode.Disassemble(chunk))
	return nil
}
