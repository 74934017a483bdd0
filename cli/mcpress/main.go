package main

import (
	"os"

	mcpresscmder "github.com/mcpress/mcpress/cmd/mcpress"
)

func main() {
	cmd := mcpresscmder.NewMcpressCmd()
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
