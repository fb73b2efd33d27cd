package main

import (
	"fmt"
	"io"
	"os"

	"github.com/lumenjs/lumen/internal/ast"
	"github.com/lumenjs/lumen/internal/parser"
	"github.com/spf13/cobra"
)

var (
	parseExpression bool
	parseDumpAST    bool
)

var parseCmd = &cobra.Command{
	Use:   "parse [file]",
	Short: "Parse source code and display the AST",
	Long: `Parse source code and display the Abstract Syntax Tree (AST).

If no file is provided, reads from stdin.
Use -e to parse a single expression from the command line.
Use --dump-ast to show the full AST structure.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runParse,
}

func init() {
	rootCmd.AddCommand(parseCmd)

	parseCmd.Flags().BoolVarP(&parseExpression, "expression", "e", false, "parse an expression from the command line")
	parseCmd.Flags().BoolVar(&parseDumpAST, "dump-ast", false, "dump the full AST structure")
}

func runParse(cmd *cobra.Command, args []string) error {
	var input string
	filename := "<stdin>"

	if parseExpression {
		if len(args) == 0 {
			return fmt.Errorf("no expression provided")
		}
		input = args[0]
		filename = "<expression>"
	} else if len(args) > 0 {
		data, err := os.ReadFile(args[0])
		if err != nil {
			return fmt.Errorf("error reading file: %w", err)
		}
		input = string(data)
		filename = args[0]
	} else {
		data, err := io.ReadAll(os.Stdin)
		if err != nil {
			return fmt.Errorf("error reading stdin: %w", err)
		}
		input = string(data)
	}

	program, parseErrs := parser.Parse(input)
	if len(parseErrs) != 0 {
		return reportParseErrors(input, filename, parseErrs)
	}

	if parseDumpAST {
		fmt.Println("Abstract Syntax Tree:")
		fmt.Println("=====================")
		dumpASTNode(program, 0)
	} else {
		fmt.Println(program.String())
	}

	return nil
}

func dumpASTNode(node ast.Node, indent int) {
	indentStr := ""
	for i := 0; i < indent; i++ {
		indentStr += "  "
	}

	switch n := node.(type) {
	case *ast.Program:
		fmt.Printf("%sProgram (%d statements)\n", indentStr, len(n.Statements))
		for _, stmt := range n.Statements {
			dumpASTNode(stmt, indent+1)
		}
	case *ast.ExpressionStatement:
		fmt.Printf("%sExpressionStatement\n", indentStr)
		if n.Expression != nil {
			dumpASTNode(n.Expression, indent+1)
		}
	case *ast.BlockStatement:
		fmt.Printf("%sBlockStatement (%d statements)\n", indentStr, len(n.Statements))
		for _, stmt := range n.Statements {
			dumpASTNode(stmt, indent+1)
		}
	case *ast.BinaryExpression:
		fmt.Printf("%sBinaryExpression (%s)\n", indentStr, n.Operator)
		fmt.Printf("%s  Left:\n", indentStr)
		dumpASTNode(n.Left, indent+2)
		fmt.Printf("%s  Right:\n", indentStr)
		dumpASTNode(n.Right, indent+2)
	case *ast.UnaryExpression:
		fmt.Printf("%sUnaryExpression (%s)\n", indentStr, n.Operator)
		dumpASTNode(n.Operand, indent+1)
	case *ast.UpdateExpression:
		fmt.Printf("%sUpdateExpression (%s)\n", indentStr, n.Operator)
		dumpASTNode(n.Operand, indent+1)
	case *ast.AssignmentExpression:
		fmt.Printf("%sAssignmentExpression (%s)\n", indentStr, n.Operator)
		dumpASTNode(n.Target, indent+1)
		dumpASTNode(n.Value, indent+1)
	case *ast.CallExpression:
		fmt.Printf("%sCallExpression (%d args)\n", indentStr, len(n.Arguments))
		dumpASTNode(n.Callee, indent+1)
		for _, arg := range n.Arguments {
			dumpASTNode(arg, indent+1)
		}
	case *ast.MemberExpression:
		fmt.Printf("%sMemberExpression\n", indentStr)
		dumpASTNode(n.Object, indent+1)
	case *ast.NumberLiteral:
		fmt.Printf("%sNumberLiteral: %g\n", indentStr, n.Value)
	case *ast.StringLiteral:
		fmt.Printf("%sStringLiteral: %q\n", indentStr, n.Value)
	case *ast.BooleanLiteral:
		fmt.Printf("%sBooleanLiteral: %v\n", indentStr, n.Value)
	case *ast.Identifier:
		fmt.Printf("%sIdentifier: %s\n", indentStr, n.Value)
	case *ast.NullLiteral:
		fmt.Printf("%sNullLiteral\n", indentStr)
	case *ast.UndefinedLiteral:
		fmt.Printf("%sUndefinedLiteral\n", indentStr)
	default:
		fmt.Printf("%s%T: %v\n", indentStr, node, node)
	}
}
