// Package servecmder provides the serve command for running the mcpress
// API and MCP server.
package servecmder

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/mcpress/mcpress/api"
	"github.com/mcpress/mcpress/api/mcp"
	"github.com/mcpress/mcpress/pkg/config"
	embeddingutils "github.com/mcpress/mcpress/pkg/embeddings/utils"
	eventstreamutils "github.com/mcpress/mcpress/pkg/eventstream/utils"
	"github.com/mcpress/mcpress/pkg/extractor"
	"github.com/mcpress/mcpress/pkg/logger"
	readerutils "github.com/mcpress/mcpress/pkg/reader/utils"
	storeutils "github.com/mcpress/mcpress/pkg/store/utils"
)

type serveCommander struct {
	listen     string
	disableMCP bool
	debug      bool

	cfg    *config.Config
	logger *zap.Logger
}

const serveLongDesc string = `Run the mcpress API server.

Serves the article ingestion and search API, and exposes the article store
as MCP tools on /mcp. Settings come from config.toml in the .mcpress/
directory and MCPRESS_* environment variables. CLI flags take precedence.

Examples:
  mcpress serve
  mcpress serve --listen :9090
  mcpress serve --no-mcp`

const serveShortDesc string = "Run the mcpress API and MCP server"

func NewServeCmd() *cobra.Command {
	cmder := &serveCommander{}

	cmd := &cobra.Command{
		Use:   "serve",
		Short: serveShortDesc,
		Long:  serveLongDesc,
		Args:  cobra.NoArgs,
		PreRunE: func(cmd *cobra.Command, _ []string) error {
			configDir, _ := cmd.Flags().GetString("config-dir")

			cfger := config.NewConfiger()
			cfger.OverrideDir = configDir

			cfg, err := cfger.LoadWithEnv()
			if err != nil {
				return fmt.Errorf("loading config: %w", err)
			}
			cmder.cfg = cfg

			if !cmd.Flags().Changed("listen") {
				cmder.listen = cfg.API.Listen
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			var err error
			cmder.debug, err = cmd.Flags().GetBool("debug")
			if err != nil {
				return fmt.Errorf("could not get debug flag: %v", err)
			}
			return cmder.run(cmd.Context())
		},
	}

	defaults := config.NewDefaultConfig()
	cmd.Flags().StringVarP(&cmder.listen, "listen", "l", defaults.API.Listen, "Address for the API server to listen on")
	cmd.Flags().BoolVar(&cmder.disableMCP, "no-mcp", false, "Disable the MCP endpoint")

	return cmd
}

func (c *serveCommander) run(ctx context.Context) error {
	c.logger = logger.NewLogger(c.debug)
	defer func() { _ = c.logger.Sync() }()

	cfg := c.cfg

	embedder, err := embeddingutils.NewEmbedder(&embeddingutils.NewEmbedderOpts{
		ProviderType: cfg.Embedding.Provider,
		TargetURL:    cfg.Embedding.Target,
		Model:        cfg.Embedding.Model,
		APIKey:       cfg.Embedding.ResolveAPIKey(),
		Dimensions:   cfg.Embedding.Dimensions,
	})
	if err != nil {
		return fmt.Errorf("creating embedder: %w", err)
	}
	defer embedder.Close()

	articles, err := storeutils.NewArticleStore(ctx, &storeutils.NewArticleStoreOpts{
		ProviderType: cfg.VectorStore.Provider,
		Target:       cfg.VectorStore.Target,
		Dimensions:   cfg.Embedding.Dimensions,
		Embedder:     embedder,
		Logger:       c.logger,
	})
	if err != nil {
		return fmt.Errorf("creating article store: %w", err)
	}
	defer articles.Close()

	pageReader, err := readerutils.NewReader(&readerutils.NewReaderOpts{
		ProviderType: cfg.Reader.Provider,
		TargetURL:    cfg.Reader.Target,
	})
	if err != nil {
		return fmt.Errorf("creating reader: %w", err)
	}

	extract := extractor.New(extractor.Config{
		Target:     cfg.LLM.Target,
		Model:      cfg.LLM.Model,
		APIKey:     cfg.LLM.ResolveAPIKey(),
		Categories: cfg.Articles.Categories,
	}, c.logger)

	publisher, err := eventstreamutils.NewPublisher(&eventstreamutils.NewPublisherOpts{
		ProviderType: cfg.Events.Provider,
		Brokers:      cfg.Events.Brokers,
		Topic:        cfg.Events.Topic,
		Logger:       c.logger,
	})
	if err != nil {
		return fmt.Errorf("creating event publisher: %w", err)
	}
	defer publisher.Close()

	mcpServer, err := mcp.NewServer(mcp.Config{
		Store:               articles,
		SimilarityThreshold: cfg.Search.SimilarityThreshold,
		Noop:                c.disableMCP,
		Logger:              c.logger,
	})
	if err != nil {
		return fmt.Errorf("creating MCP server: %w", err)
	}

	server := api.NewServer(api.Config{
		ListenAddr:          c.listen,
		SimilarityThreshold: cfg.Search.SimilarityThreshold,
	}, articles, pageReader, extract, publisher, mcpServer.Handler(), c.logger)

	c.logger.Info("starting mcpress server",
		zap.String("listen", c.listen),
		zap.String("reader", cfg.Reader.Provider),
		zap.String("vector_store", cfg.VectorStore.Provider),
		zap.Bool("mcp_enabled", !c.disableMCP),
	)

	errChan := make(chan error, 1)
	go func() {
		if err := server.Run(); err != nil {
			errChan <- fmt.Errorf("API server error: %w", err)
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errChan:
		return err
	case sig := <-sigChan:
		c.logger.Info("received signal, shutting down", zap.String("signal", sig.String()))
		return server.Shutdown()
	}
}
