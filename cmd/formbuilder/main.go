package main

import (
	"context"
	"fmt"
	"os"

	"github.com/goliatone/go-formbuilder/internal/cli"
)

var version = "dev"

func main() {
	if err := cli.Run(context.Background(), os.Args, version); err != nil {
		fmt.Fprintf(os.Stderr, "formbuilder: %v\n", err)
		os.Exit(1)
	}
}
