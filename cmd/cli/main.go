package main

import (
	"context"
	"os"

	"github.com/dmitrijs2005/fileconv/internal/client/cli"
)

func main() {
	os.Exit(cli.Execute(context.Background(), os.Args[1:]))
}
