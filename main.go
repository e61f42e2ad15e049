// Idiomatic entrypoint for the cobra CLI; delegates to the root command in
// cmd/root.go.

package main

import (
	"github.com/meshachvetz/meshachvetz/cmd"
)

func main() {
	cmd.Execute()
}
