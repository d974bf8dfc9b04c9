// Package slack posts recipe digests to a Slack incoming webhook.
package slack

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"pantryfinder"
)

type doer interface {
	Do(req *http.Request) (*http.Response, error)
}

type Client struct {
	webhookURL string
	httpClient doer
}

func NewClient(webhookURL string, httpClient doer) *Client {
	return &Client{
		webhookURL: webhookURL,
		httpClient: httpClient,
	}
}

func (c *Client) PostMessage(ctx context.Context, channel string, message string) error {
	payload, err := json.Marshal(map[string]any{
		"channel": channel,
		"text":    message,
	})
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.webhookURL, bytes.NewReader(payload))
	if err != nil {
		return err
	}

	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("failed to post message: %s", resp.Status)
	}

	return nil
}

// PostRecipes formats a completed discovery session as a digest and posts it.
func (c *Client) PostRecipes(ctx context.Context, channel string, result pantryfinder.FindResult) error {
	return c.PostMessage(ctx, channel, FormatDigest(result))
}

// FormatDigest renders ranked recipes as a Slack-friendly text digest.
func FormatDigest(result pantryfinder.FindResult) string {
	if len(result.Recipes) == 0 {
		return "No recipe suggestions this time. Try restocking the pantry!"
	}

	var b strings.Builder
	fmt.Fprintf(&b, "*%d recipe suggestions from your pantry*\n", len(result.Recipes))

	for i, r := range result.Recipes {
		fmt.Fprintf(&b, "%d. *%s* (%d%% match)", i+1, r.Title, r.MatchPercent)
		if r.URL != "" {
			fmt.Fprintf(&b, " <%s|recipe>", r.URL)
		}
		b.WriteString("\n")
		if r.Reasoning != "" {
			fmt.Fprintf(&b, "   _%s_\n", r.Reasoning)
		}
	}

	if result.Reasoning != "" {
		fmt.Fprintf(&b, "\n%s", result.Reasoning)
	}

	return b.String()
}
