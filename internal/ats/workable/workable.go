// Package workable integrates the Workable public widget API. The feed
// returns the whole board in one response, so the adapter is non-paginated.
package workable

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	atsdomain "github.com/openhire/jobfeed/internal/ats/domain"
	"github.com/openhire/jobfeed/internal/ats/fetch"
	"github.com/openhire/jobfeed/internal/ats/normalize"
)

type Adapter struct {
	client *http.Client
}

func New(client *http.Client) *Adapter {
	return &Adapter{client: client}
}

func (a *Adapter) Provider() string { return "workable" }
func (a *Adapter) Paginated() bool  { return false }

type widgetResponse struct {
	Jobs []json.RawMessage `json:"jobs"`
}

type widgetJob struct {
	Shortcode     string `json:"shortcode"`
	Title         string `json:"title"`
	URL           string `json:"url"`
	City          string `json:"city"`
	State         string `json:"state"`
	Country       string `json:"country"`
	Telecommuting bool   `json:"telecommuting"`
	PublishedOn   string `json:"published_on"`
	Description   string `json:"description"`
}

func (a *Adapter) FetchPage(ctx context.Context, apiBase string, _ atsdomain.Page) ([]atsdomain.Posting, error) {
	var resp widgetResponse
	if err := fetch.GetJSON(ctx, a.client, apiBase, &resp); err != nil {
		return nil, err
	}

	out := make([]atsdomain.Posting, 0, len(resp.Jobs))
	for _, raw := range resp.Jobs {
		var j widgetJob
		if err := json.Unmarshal(raw, &j); err != nil {
			continue
		}
		jobID := strings.TrimSpace(j.Shortcode)
		if jobID == "" {
			continue
		}

		location := joinNonEmpty(j.City, j.State, j.Country)
		workplace := normalize.Workplace(location)
		if j.Telecommuting {
			workplace = "Remote"
		}

		var postedAt *time.Time
		if j.PublishedOn != "" {
			if t, err := time.Parse("2006-01-02", j.PublishedOn); err == nil {
				t = t.UTC()
				postedAt = &t
			}
		}

		rawText := normalize.StripHTML(j.Description)

		title := normalize.Truncate(j.Title, normalize.MaxTitle)
		if title == "" {
			title = "Untitled"
		}

		out = append(out, atsdomain.Posting{
			ATSJobID:     jobID,
			Title:        title,
			URL:          normalize.Truncate(j.URL, normalize.MaxURL),
			LocationRaw:  normalize.Truncate(location, normalize.MaxLocation),
			WorkplaceRaw: workplace,
			PostedAt:     postedAt,
			RawJSON:      raw,
			RawText:      rawText,
			SalaryText:   normalize.ExtractSalary(rawText),
		})
	}
	return out, nil
}

func joinNonEmpty(parts ...string) string {
	kept := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			kept = append(kept, p)
		}
	}
	return strings.Join(kept, ", ")
}
