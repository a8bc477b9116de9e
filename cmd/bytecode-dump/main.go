// Command bytecode-dump compiles a JMESPath expression and prints its
// instruction sequence, one opcode plus immediate per line. A direct port
// of cmd/inspect-slice's dump loop, generalized from a handful of hardcoded
// queries to one expression read from argv.
package main

import (
	"fmt"
	"os"

	jmespath "github.com/nozzle/jmespath"
)

func main() {
	if len(os.Args) != 2 {
		fmt.Fprintf(os.Stderr, "usage: %s <expression>\n", os.Args[0])
		os.Exit(2)
	}
	expr := os.Args[1]

	program, err := jmespath.Compile(expr)
	if err != nil {
		fmt.Fprintf(os.Stderr, "compile error: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("=== %s ===\n", expr)
	for i, ins := range program.Instructions() {
		if ins.HasJmp {
			fmt.Printf("%4d: %-15s %v -> %d\n", i, ins.Op, ins.Value, ins.Target)
			continue
		}
		fmt.Printf("%4d: %-15s %v\n", i, ins.Op, ins.Value)
	}
}
