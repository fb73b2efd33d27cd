package main

import (
	"fmt"
	"os"

	"github.com/lumenjs/lumen/internal/errors"
)

// reportParseErrors formats parseErrs the way the lexer/parser/compiler
// errors package does (source context, no color since terminals here are
// not guaranteed to support it) and returns the summary error RunE expects.
func reportParseErrors(source, filename string, parseErrs []error) error {
	typed := make([]*errors.ParseError, 0, len(parseErrs))
	for _, e := range parseErrs {
		if pe, ok := e.(*errors.ParseError); ok {
			typed = append(typed, pe)
		}
	}
	if len(typed) > 0 {
		fmt.Fprint(os.Stderr, errors.FormatErrors(typed, false))
		fmt.Fprintln(os.Stderr)
	} else {
		for _, e := range parseErrs {
			fmt.Fprintln(os.Stderr, e)
		}
	}
	return fmt.Errorf("parsing %s failed with %d error(s)", filename, len(parseErrs))
}
