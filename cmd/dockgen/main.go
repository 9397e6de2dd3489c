package main

import (
	"context"
	"os"

	"github.com/melih/dockgen/internal/cli"
)

func main() {
	os.Exit(cli.Execute(context.Background()))
}
