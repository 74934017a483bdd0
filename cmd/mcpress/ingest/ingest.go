// Package ingestcmder provides the ingest command for fetching, extracting
// and saving articles through the mcpress API.
package ingestcmder

import (
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
	"github.com/mcpress/mcpress/pkg/article"
	"github.com/mcpress/mcpress/pkg/cliui"
	"github.com/mcpress/mcpress/pkg/config"
)

type ingestCommander struct {
	url       string
	apiTarget string
	category  string
	dryRun    bool
}

const ingestLongDesc string = `Ingest an article from a URL.

Fetches the page through the configured reader, extracts the article fields
with the configured LLM, and saves the result to the article store. Requires
a running mcpress API server.

Ingesting a URL that was already saved updates the stored article in place.

Use --dry-run to extract without saving, printing the extracted fields.

Examples:
  mcpress ingest https://example.com/some-article
  mcpress ingest https://example.com/some-article --category tech
  mcpress ingest https://example.com/some-article --dry-run`

const ingestShortDesc string = "Fetch, extract and save an article"

func NewIngestCmd() *cobra.Command {
	cmder := &ingestCommander{}

	cmd := &cobra.Command{
		Use:   "ingest <url>",
		Short: ingestShortDesc,
		Long:  ingestLongDesc,
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
			cmder.url = args[0]
			return cmder.run(cmd.Context())
		},
	}

	defaults := config.NewDefaultConfig()
	cmd.Flags().StringVar(&cmder.apiTarget, "api-target", defaults.Client.APITarget, "mcpress API server URL")
	cmd.Flags().StringVarP(&cmder.category, "category", "c", "", "Override the extracted category")
	cmd.Flags().BoolVar(&cmder.dryRun, "dry-run", false, "Extract without saving")

	return cmd
}

func (c *ingestCommander) run(ctx context.Context) error {
	var extracted api.ExtractResponse
	if err := cliui.Step(os.Stdout, "Fetching and extracting article", func() error {
		return postJSON(ctx, c.apiTarget+"/v1/articles/extract", api.ExtractRequest{URL: c.url}, &extracted)
	}); err != nil {
		return err
	}

	content := extracted.Content
	if c.category != "" {
		content.Category = c.category
	}

	if c.dryRun {
		printContent(c.url, content)
		return nil
	}

	var saved article.Article
	if err := cliui.Step(os.Stdout, "Saving article", func() error {
		return postJSON(ctx, c.apiTarget+"/v1/articles", article.SaveRequest{
			URL:           c.url,
			Title:         content.Title,
			Author:        content.Author,
			PublishedDate: content.PublishedDate,
			Content:       content.Content,
			Summary:       content.Summary,
			Keywords:      content.Keywords,
			Category:      content.Category,
		}, &saved)
	}); err != nil {
		return err
	}

	fmt.Printf("\n  %s Saved %s %s\n\n",
		cliui.SuccessMark,
		cliui.ValueStyle.Render(saved.Title),
		cliui.DimStyle.Render(fmt.Sprintf("(%s, id %s)", saved.Category, saved.ID)),
	)
	return nil
}

func printContent(url string, content article.Content) {
	fmt.Printf("\n  %s %s\n\n", cliui.KeyStyle.Render("URL:"), url)
	fmt.Printf("  %s %s\n", cliui.KeyStyle.Render("Title:"), content.Title)
	if content.Author != "" {
		fmt.Printf("  %s %s\n", cliui.KeyStyle.Render("Author:"), content.Author)
	}
	if content.PublishedDate != "" {
		fmt.Printf("  %s %s\n", cliui.KeyStyle.Render("Published:"), content.PublishedDate)
	}
	fmt.Printf("  %s %s\n", cliui.KeyStyle.Render("Category:"), content.Category)
	if len(content.Keywords) > 0 {
		fmt.Printf("  %s %s\n", cliui.KeyStyle.Render("Keywords:"), strings.Join(content.Keywords, ", "))
	}
	fmt.Printf("  %s %s\n\n", cliui.KeyStyle.Render("Summary:"), content.Summary)
}

// postJSON posts a JSON body to the given URL and decodes the response
// into out. Non-2xx responses surface the API's error message.
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
