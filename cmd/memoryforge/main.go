// Command memoryforge is the CLI entry point for the knowledge index and
// MCP tool server.
package main

import (
	"fmt"
	"os"

	"github.com/mwillard/memoryforge/cmd/memoryforge/cmd"
	amerrors "github.com/mwillard/memoryforge/internal/errors"
)

func main() {
	if err := cmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		if amerrors.IsFatal(err) {
			os.Exit(2)
		}
		os.Exit(1)
	}
}
