// Package greenhouse integrates the Greenhouse job board API, paginated
// with page/per_page. The list payload has no description text; the
// per-job detail endpoint backfills it when the call budget allows.
package greenhouse

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
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

func (a *Adapter) Provider() string { return "greenhouse" }
func (a *Adapter) Paginated() bool  { return true }

type listResponse struct {
	Jobs []json.RawMessage `json:"jobs"`
}

type listJob struct {
	ID          json.Number `json:"id"`
	Title       string      `json:"title"`
	AbsoluteURL string      `json:"absolute_url"`
	Location    struct {
		Name string `json:"name"`
	} `json:"location"`
	UpdatedAt string `json:"updated_at"`
}

func (a *Adapter) FetchPage(ctx context.Context, apiBase string, page atsdomain.Page) ([]atsdomain.Posting, error) {
	base := strings.TrimRight(apiBase, "/")
	u := fmt.Sprintf("%s/jobs?page=%d&per_page=%d", base, page.Number, page.Size)

	var resp listResponse
	if err := fetch.GetJSON(ctx, a.client, u, &resp); err != nil {
		return nil, err
	}

	out := make([]atsdomain.Posting, 0, len(resp.Jobs))
	for _, raw := range resp.Jobs {
		var j listJob
		if err := json.Unmarshal(raw, &j); err != nil {
			continue
		}
		jobID := strings.TrimSpace(j.ID.String())
		if jobID == "" || jobID == "0" {
			continue
		}

		var postedAt *time.Time
		if j.UpdatedAt != "" {
			if t, err := time.Parse(time.RFC3339, j.UpdatedAt); err == nil {
				t = t.UTC()
				postedAt = &t
			}
		}

		title := normalize.Truncate(j.Title, normalize.MaxTitle)
		if title == "" {
			title = "Untitled"
		}

		out = append(out, atsdomain.Posting{
			ATSJobID:     jobID,
			Title:        title,
			URL:          normalize.Truncate(j.AbsoluteURL, normalize.MaxURL),
			LocationRaw:  normalize.Truncate(j.Location.Name, normalize.MaxLocation),
			WorkplaceRaw: normalize.Workplace(j.Location.Name),
			PostedAt:     postedAt,
			RawJSON:      raw,
		})
	}
	return out, nil
}

type detailResponse struct {
	Content string `json:"content"`
}

// FetchDetail fetches one job's description. The content field arrives as
// entity-escaped HTML.
func (a *Adapter) FetchDetail(ctx context.Context, apiBase, atsJobID string) (atsdomain.Detail, error) {
	base := strings.TrimRight(apiBase, "/")
	u := fmt.Sprintf("%s/jobs/%s", base, url.PathEscape(atsJobID))

	var resp detailResponse
	if err := fetch.GetJSON(ctx, a.client, u, &resp); err != nil {
		return atsdomain.Detail{}, err
	}

	text := normalize.StripHTML(resp.Content)
	return atsdomain.Detail{
		RawText:    text,
		SalaryText: normalize.ExtractSalary(text),
	}, nil
}
