// Package lever integrates the Lever postings API. The feed is a single
// JSON array, so the adapter is non-paginated.
package lever

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

func (a *Adapter) Provider() string { return "lever" }
func (a *Adapter) Paginated() bool  { return false }

type leverPosting struct {
	ID         string `json:"id"`
	Text       string `json:"text"`
	HostedURL  string `json:"hostedUrl"`
	CreatedAt  int64  `json:"createdAt"`
	Categories struct {
		Location string `json:"location"`
	} `json:"categories"`
	DescriptionPlain string `json:"descriptionPlain"`
	Description      string `json:"description"`
}

func (a *Adapter) FetchPage(ctx context.Context, apiBase string, _ atsdomain.Page) ([]atsdomain.Posting, error) {
	url := apiBase
	if !strings.Contains(url, "mode=json") {
		sep := "?"
		if strings.Contains(url, "?") {
			sep = "&"
		}
		url += sep + "mode=json"
	}

	var items []json.RawMessage
	if err := fetch.GetJSON(ctx, a.client, url, &items); err != nil {
		return nil, err
	}

	out := make([]atsdomain.Posting, 0, len(items))
	for _, raw := range items {
		var p leverPosting
		if err := json.Unmarshal(raw, &p); err != nil {
			continue
		}
		jobID := strings.TrimSpace(p.ID)
		if jobID == "" {
			continue
		}

		var postedAt *time.Time
		if p.CreatedAt > 0 {
			t := time.UnixMilli(p.CreatedAt).UTC()
			postedAt = &t
		}

		rawText := strings.TrimSpace(p.DescriptionPlain)
		if rawText == "" {
			rawText = normalize.StripHTML(p.Description)
		}

		title := normalize.Truncate(p.Text, normalize.MaxTitle)
		if title == "" {
			title = "Untitled"
		}

		out = append(out, atsdomain.Posting{
			ATSJobID:     jobID,
			Title:        title,
			URL:          normalize.Truncate(p.HostedURL, normalize.MaxURL),
			LocationRaw:  normalize.Truncate(p.Categories.Location, normalize.MaxLocation),
			WorkplaceRaw: normalize.Workplace(p.Categories.Location),
			PostedAt:     postedAt,
			RawJSON:      raw,
			RawText:      rawText,
			SalaryText:   normalize.ExtractSalary(rawText),
		})
	}
	return out, nil
}
