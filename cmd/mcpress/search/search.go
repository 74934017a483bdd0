// Package searchcmder provides the search command for semantic search over
// saved articles.
package searchcmder

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/mcpress/mcpress/api"
	"github.com/mcpress/mcpress/pkg/article"
	"github.com/mcpress/mcpress/pkg/config"
)

var (
	rankStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("82")).Bold(true)
	scoreStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	titleStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("39")).Bold(true)
	metaStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	textStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("252"))
	headerStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("252")).Bold(true)
	dimStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
)

type searchCommander struct {
	query    string
	topK     int
	category string
	source   string
	quiet    bool

	apiTarget string
}

const searchLongDesc string = `Search saved articles via the mcpress API.

Semantic search over the article store, returning the most relevant articles
for the query text. Requires a running mcpress API server.

Use --quiet to output only article IDs, one per line, for piping into other
commands.

Examples:
  mcpress search "central bank rate decision"
  mcpress search "go generics" --category tech
  mcpress search "transfer rumors" --top 10
  mcpress search "wildfire coverage" --quiet`

const searchShortDesc string = "Search saved articles"

func NewSearchCmd() *cobra.Command {
	cmder := &searchCommander{}

	cmd := &cobra.Command{
		Use:   "search <query>",
		Short: searchShortDesc,
		Long:  searchLongDesc,
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
			cmder.query = args[0]
			return cmder.run(cmd.Context())
		},
	}

	defaults := config.NewDefaultConfig()
	cmd.Flags().IntVarP(&cmder.topK, "top", "k", 5, "Number of results to return")
	cmd.Flags().StringVarP(&cmder.category, "category", "c", "", "Only return articles in this category")
	cmd.Flags().StringVar(&cmder.source, "source", "", "Only return articles from this organization")
	cmd.Flags().BoolVarP(&cmder.quiet, "quiet", "q", false, "Output only article IDs, one per line (for piping)")
	cmd.Flags().StringVar(&cmder.apiTarget, "api-target", defaults.Client.APITarget, "mcpress API server URL")

	return cmd
}

func (c *searchCommander) run(ctx context.Context) error {
	output, err := SearchAPI(ctx, c.apiTarget, c.query, c.topK, c.category, c.source)
	if err != nil {
		return err
	}

	if output.Count == 0 {
		if !c.quiet {
			fmt.Println("No results found.")
		}
		return nil
	}

	if c.quiet {
		for _, result := range output.Results {
			fmt.Println(result.ID)
		}
		return nil
	}

	fmt.Printf("\n%s %s\n\n",
		headerStyle.Render("Search results for:"),
		titleStyle.Render(fmt.Sprintf("%q", output.Query)),
	)

	for i, result := range output.Results {
		printResult(i+1, result)
	}

	return nil
}

func printResult(rank int, result article.Match) {
	fmt.Printf("  %s  %s  %s\n",
		rankStyle.Render(fmt.Sprintf("#%d", rank)),
		scoreStyle.Render(fmt.Sprintf("score: %.4f", result.Score)),
		titleStyle.Render(result.Title),
	)

	meta := []string{result.Category}
	if result.Organization != "" {
		meta = append(meta, result.Organization)
	}
	if result.PublishedDate != "" {
		meta = append(meta, result.PublishedDate)
	}
	fmt.Printf("  %s\n", metaStyle.Render(strings.Join(meta, " · ")))

	summary := strings.ReplaceAll(result.Summary, "\n", " ")
	if len(summary) > 160 {
		summary = summary[:157] + "..."
	}
	if summary != "" {
		fmt.Printf("  %s\n", textStyle.Render(summary))
	}

	fmt.Printf("  %s\n", dimStyle.Render(result.URL))
	fmt.Printf("  %s\n\n", dimStyle.Render("id "+result.ID.String()))
}

// SearchAPI calls the article search API and returns the parsed output.
func SearchAPI(ctx context.Context, apiTarget, query string, topK int, category, source string) (*api.SearchResponse, error) {
	searchURL, err := url.Parse(apiTarget)
	if err != nil {
		return nil, fmt.Errorf("invalid API target URL: %w", err)
	}
	searchURL.Path = "/v1/articles/search"
	q := searchURL.Query()
	q.Set("q", query)
	q.Set("limit", strconv.Itoa(topK))
	if category != "" {
		q.Set("category", category)
	}
	if source != "" {
		q.Set("source", source)
	}
	searchURL.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, searchURL.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("creating search request: %w", err)
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to mcpress API at %s: %w", apiTarget, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("search request failed (HTTP %d): %s", resp.StatusCode, string(body))
	}

	var output api.SearchResponse
	if err := json.Unmarshal(body, &output); err != nil {
		return nil, fmt.Errorf("failed to parse search response: %w", err)
	}

	return &output, nil
}
