package main

import (
	"os"

	"github.com/medgraph/medgraph/internal/cli"
)

func main() {
	os.Exit(cli.Execute())
}
