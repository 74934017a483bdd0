// Package configcmder provides the config command for managing persistent
// mcpress configuration stored in the .mcpress/ directory.
package configcmder

import (
	"github.com/spf13/cobra"
)

const configLongDesc string = `Manage persistent mcpress configuration.

Configuration is stored as config.toml in the .mcpress/ directory and provides
default values for command flags. CLI flags always take precedence over
config file values.

Keys use dotted notation matching the TOML section structure:
  api.listen, client.api_target,
  reader.provider, reader.target,
  llm.target, llm.model,
  embedding.provider, embedding.target, embedding.model, embedding.dimensions,
  vector_store.provider, vector_store.target,
  articles.categories, search.similarity_threshold,
  events.provider, events.brokers, events.topic

Use subcommands to get, set, or list configuration values:
  mcpress config set <key> <value>    Set a configuration value
  mcpress config get <key>            Get a configuration value
  mcpress config list                 List all configuration values

Examples:
  mcpress config set reader.provider readability
  mcpress config set embedding.model text-embedding-3-small
  mcpress config get llm.model
  mcpress config list`

const configShortDesc string = "Manage persistent mcpress configuration"

func NewConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: configShortDesc,
		Long:  configLongDesc,
	}

	cmd.AddCommand(newSetCmd())
	cmd.AddCommand(newGetCmd())
	cmd.AddCommand(newListCmd())

	return cmd
}
