package main

import (
	"os"

	"github.com/MrSnakeDoc/quill/internal/cli"
)

func main() {
	os.Exit(cli.Execute())
}
