// Package slack posts plan and rejection summaries to an incoming webhook.
package slack

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"nutriguide"
)

type Client struct {
	webhookURL string
	httpClient nutriguide.HTTPClient
}

var _ nutriguide.SlackClient = (*Client)(nil)

func NewClient(webhookURL string, httpClient nutriguide.HTTPClient) *Client {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
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
	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("failed to post message: %s", resp.Status)
	}
	return nil
}

// PostOutcome posts the summary of a planning cycle.
func PostOutcome(ctx context.Context, client nutriguide.SlackClient, channel string, out nutriguide.PlanOutcome) error {
	return client.PostMessage(ctx, channel, Summary(out))
}

// Summary renders an outcome as Slack mrkdwn.
func Summary(out nutriguide.PlanOutcome) string {
	var b strings.Builder
	if out.Status != nutriguide.StatusComplete || out.Plan == nil {
		fmt.Fprintf(&b, ":no_entry: *Plan rejected* (`%s`)\n", out.CorrelationID)
		if r := out.Rejection; r != nil {
			fmt.Fprintf(&b, "*%s* at %s: %s\n", r.AgentID, r.Stage, r.Reason)
		}
		return b.String()
	}

	p := out.Plan
	fmt.Fprintf(&b, ":white_check_mark: *Nutrition plan for %s* (`%s`)\n", p.ProfileID, out.CorrelationID)
	if p.Targets != nil {
		fmt.Fprintf(&b, "Target %.0f kcal, planned %.0f kcal (P %.0fg / C %.0fg / F %.0fg)\n",
			p.Targets.Calories, p.Totals.Calories, p.Totals.ProteinG, p.Totals.CarbsG, p.Totals.FatG)
	}
	for _, s := range p.Meals {
		names := make([]string, 0, len(s.Items))
		for _, it := range s.Items {
			names = append(names, fmt.Sprintf("%s (%.0f g)", it.Name, it.PortionG))
		}
		line := fmt.Sprintf("• *%s*", s.Slot)
		if s.Time != "" {
			line += " " + s.Time
		}
		fmt.Fprintf(&b, "%s: %s, %.0f kcal\n", line, strings.Join(names, ", "), s.Totals.Calories)
	}
	for _, a := range p.SafetyAnnotations {
		fmt.Fprintf(&b, ":warning: %s\n", a)
	}
	if p.Degraded {
		fmt.Fprintf(&b, "_Degraded: no answer from %s_\n", strings.Join(p.MissingAgents, ", "))
	}
	return b.String()
}
