// Package seedcmder provides the seed command for bulk-ingesting articles
// from a file of URLs through the mcpress API.
package seedcmder

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mcpress/mcpress/api"
	"github.com/mcpress/mcpress/pkg/cliui"
	"github.com/mcpress/mcpress/pkg/config"
)

type seedCommander struct {
	file      string
	apiTarget string
	category  string
}

const seedLongDesc string = `Bulk-ingest articles from a file of URLs.

Reads one URL per line (blank lines and lines starting with # are skipped)
and queues them for background ingestion on a running mcpress API server.
The server fetches, extracts and saves each article asynchronously; URLs
that exceed the server's queue capacity are reported as dropped.

Examples:
  mcpress seed urls.txt
  mcpress seed urls.txt --category tech`

const seedShortDesc string = "Bulk-ingest articles from a file of URLs"

func NewSeedCmd() *cobra.Command {
	cmder := &seedCommander{}

	cmd := &cobra.Command{
		Use:   "seed <file>",
		Short: seedShortDesc,
		Long:  seedLongDesc,
		Args:  cobra.ExactArgs(1),
		PreRunE: func(cmd *cobra.Command, _ []string) error {
			configDir, _ := cmd.Flags().GetString("config-dir")

			cfger := config.NewConfiger()
			cfger.OverrideDir = configDir

			cfg, err := cfger.Load()
			if err != nil {
				return fmt.Errorf("loading config: %w", err)
			}

			if !cmd.Flags().Changed("api-target") {
				cmder.apiTarget = cfg.Client.APITarget
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			cmder.file = args[0]
			return cmder.run(cmd.Context())
		},
	}

	defaults := config.NewDefaultConfig()
	cmd.Flags().StringVar(&cmder.apiTarget, "api-target", defaults.Client.APITarget, "mcpress API server URL")
	cmd.Flags().StringVarP(&cmder.category, "category", "c", "", "Override the extracted category for every URL")

	return cmd
}

func (c *seedCommander) run(ctx context.Context) error {
	urls, err := ReadURLFile(c.file)
	if err != nil {
		return err
	}
	if len(urls) == 0 {
		return fmt.Errorf("no URLs found in %s", c.file)
	}

	var resp api.IngestResponse
	if err := cliui.Step(os.Stdout, fmt.Sprintf("Queueing %d URLs for ingestion", len(urls)), func() error {
		return postJSON(ctx, c.apiTarget+"/v1/articles/ingest", api.IngestRequest{
			URLs:     urls,
			Category: c.category,
		}, &resp)
	}); err != nil {
		return err
	}

	fmt.Printf("\n  %s Queued %s\n",
		cliui.SuccessMark,
		cliui.ValueStyle.Render(fmt.Sprintf("%d of %d URLs", resp.Queued, len(urls))),
	)
	if resp.Dropped > 0 {
		fmt.Printf("  %s\n", cliui.DimStyle.Render(fmt.Sprintf("%d dropped, queue is full; re-run to retry them", resp.Dropped)))
	}
	fmt.Println()
	return nil
}

// ReadURLFile reads one URL per line, skipping blank lines and # comments.
func ReadURLFile(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening url file: %w", err)
	}
	defer f.Close()

	var urls []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		urls = append(urls, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading url file: %w", err)
	}
	return urls, nil
}

func postJSON(ctx context.Context, url string, in, out any) error {
	body, err := json.Marshal(in)
	if err != nil {
		return fmt.Errorf("encoding request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to connect to mcpress API at %s: %w", url, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var apiErr api.ErrorResponse
		if json.Unmarshal(respBody, &apiErr) == nil && apiErr.Error != "" {
			return fmt.Errorf("request failed (HTTP %d): %s", resp.StatusCode, apiErr.Error)
		}
		return fmt.Errorf("request failed (HTTP %d): %s", resp.StatusCode, string(respBody))
	}

	return json.Unmarshal(respBody, out)
}
