// Command assistant manages an address book and a notebook from the
// terminal.
package main

import (
	"os"

	"github.com/mesh-intelligence/assistant/internal/cli"
)

func main() {
	os.Exit(cli.Execute(os.Args[1:]))
}
