// Package mcpresscmder
package mcpresscmder

import (
	"github.com/spf13/cobra"

	configcmder "github.com/mcpress/mcpress/cmd/mcpress/config"
	ingestcmder "github.com/mcpress/mcpress/cmd/mcpress/ingest"
	initcmder "github.com/mcpress/mcpress/cmd/mcpress/init"
	searchcmder "github.com/mcpress/mcpress/cmd/mcpress/search"
	seedcmder "github.com/mcpress/mcpress/cmd/mcpress/seed"
	servecmder "github.com/mcpress/mcpress/cmd/mcpress/serve"
	versioncmder "github.com/mcpress/mcpress/cmd/version"
)

const mcpressLongDesc string = `mcpress turns web articles into a searchable knowledge base.

Ingest a URL and mcpress fetches the page, extracts the article with an LLM,
and stores it with a vector embedding for semantic search. The API server
also exposes the store as MCP tools for agents.

Common commands:
  mcpress serve                 Run the API and MCP server
  mcpress ingest <url>          Fetch, extract and save an article
  mcpress search <query>        Semantic search over saved articles`

const mcpressShortDesc string = "mcpress - article ingestion and semantic search"

func NewMcpressCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "mcpress",
		Short: mcpressShortDesc,
		Long:  mcpressLongDesc,
	}

	// Global flags
	cmd.PersistentFlags().BoolP("debug", "d", false, "Enable debug logging")
	cmd.PersistentFlags().String("config-dir", "", "Override the .mcpress config directory")

	// Add subcommands
	cmd.AddCommand(servecmder.NewServeCmd())
	cmd.AddCommand(ingestcmder.NewIngestCmd())
	cmd.AddCommand(searchcmder.NewSearchCmd())
	cmd.AddCommand(seedcmder.NewSeedCmd())
	cmd.AddCommand(configcmder.NewConfigCmd())
	cmd.AddCommand(initcmder.NewInitCmd())
	cmd.AddCommand(versioncmder.NewVersionCmd())

	return cmd
}
