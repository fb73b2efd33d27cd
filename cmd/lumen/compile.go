package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/lumenjs/lumen/internal/bytecode"
	"github.com/lumenjs/lumen/internal/parser"
	"github.com/spf13/cobra"
)

var (
	outputFile     string
	disassemble    bool
	compileVerbose bool
	prettyFormat   bool
)

var compileCmd = &cobra.Command{
	Use:   "compile [file]",
	Short: "Compile a script to a persisted bytecode document",
	Long: `Compile a script to bytecode and save it as a persisted document.

The compiled bytecode can be loaded and executed without reparsing the
source. By default the document is the compact JSON form; --pretty writes
the same document tree as readable YAML instead.

Examples:
  # Compile a script to bytecode
  lumen compile script.js

  # Compile with a custom output file
  lumen compile script.js -o output.lbc

  # Compile and show disassembled bytecode
  lumen compile script.js --disassemble

  # Write the readable YAML document instead of compact JSON
  lumen compile script.js --pretty`,
	Args: cobra.ExactArgs(1),
	RunE: compileScript,
}

func init() {
	rootCmd.AddCommand(compileCmd)

	compileCmd.Flags().StringVarP(&outputFile, "output", "o", "", "output file (default: <input>.lbc, or .lbc.yaml with --pretty)")
	compileCmd.Flags().BoolVar(&disassemble, "disassemble", false, "show disassembled bytecode after compilation")
	compileCmd.Flags().BoolVar(&prettyFormat, "pretty", false, "write the readable YAML document instead of compact JSON")
	compileCmd.Flags().BoolVarP(&compileVerbose, "verbose", "v", false, "verbose output")
}

func compileScript(_ *cobra.Command, args []string) error {
	filename := args[0]

	content, err := os.ReadFile(filename)
	if err != nil {
		return fmt.Errorf("failed to read file %s: %w", filename, err)
	}
	input := string(content)

	if compileVerbose {
		fmt.Fprintf(os.Stderr, "Compiling %s...\n", filename)
	}

	program, parseErrs := parser.Parse(input)
	if len(parseErrs) != 0 {
		return reportParseErrors(input, filename, parseErrs)
	}

	chunk, compileErrs := bytecode.Compile(program, input)
	if len(compileErrs) != 0 {
		for _, e := range compileErrs {
			fmt.Fprintln(os.Stderr, e)
		}
		return fmt.Errorf("bytecode compilation of %s failed with %d error(s)", filename, len(compileErrs))
	}

	if compileVerbose {
		fmt.Fprintf(os.Stderr, "Bytecode compilation successful\n")
		fmt.Fprintf(os.Stderr, "  Instructions: %d\n", len(chunk.Code))
		fmt.Fprintf(os.Stderr, "  Constants: %d\n", len(chunk.Constants))
		fmt.Fprintf(os.Stderr, "  Locals: %d\n", chunk.LocalCount)
	}

	if disassemble {
		fmt.Fprintf(os.Stderr, "\n== Disassembled Bytecode (%s) ==\n", chunk.Name)
		fmt.Fprintln(os.Stderr, bytecode.Disassemble(chunk))
	}

	serializer := bytecode.NewSerializer()
	var data []byte
	if prettyFormat {
		data, err = serializer.Pretty(chunk)
	} else {
		data, err = serializer.Compact(chunk)
	}
	if err != nil {
		return fmt.Errorf("failed to serialize bytecode: %w", err)
	}

	outFile := outputFile
	if outFile == "" {
		ext := filepath.Ext(filename)
		base := filename
		if ext != "" {
			base = strings.TrimSuffix(filename, ext)
		}
		if prettyFormat {
			outFile = base + ".lbc.yaml"
		} else {
			outFile = base + ".lbc"
		}
	}

	if err := os.WriteFile(outFile, data, 0644); err != nil {
		return fmt.Errorf("failed to write output file %s: %w", outFile, err)
	}

	if compileVerbose {
		fmt.Fprintf(os.Stderr, "Bytecode written to %s (%d bytes)\n", outFile, len(data))
	} else {
		fmt.Printf("Compiled %s -> %s\n", filename, outFile)
	}

	return nil
}
