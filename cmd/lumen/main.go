// Command lumen is the CLI front end for the bytecode compiler, VM, and
// module loader implemented under internal/ and pkg/engine.
package main

import "os"

func main() {
	if err := Execute(); err != nil {
		os.Exit(1)
	}
}
