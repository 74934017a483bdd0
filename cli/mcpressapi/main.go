package main

import (
	"os"

	servecmder "github.com/mcpress/mcpress/cmd/mcpress/serve"
)

func main() {
	cmd := servecmder.NewServeCmd()
	cmd.Use = "mcpressapi"
	cmd.PersistentFlags().BoolP("debug", "d", false, "Enable debug logging")
	cmd.PersistentFlags().String("config-dir", "", "Override the .mcpress config directory")

	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
