// Package workday integrates the Workday CXS job posting API, paginated
// with offset/limit over a POST search endpoint.
package workday

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

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

func (a *Adapter) Provider() string { return "workday" }
func (a *Adapter) Paginated() bool  { return true }

type searchRequest struct {
	Limit      int    `json:"limit"`
	Offset     int    `json:"offset"`
	SearchText string `json:"searchText"`
}

type searchResponse struct {
	Total       int               `json:"total"`
	JobPostings []json.RawMessage `json:"jobPostings"`
}

type jobPosting struct {
	Title         string   `json:"title"`
	ExternalPath  string   `json:"externalPath"`
	LocationsText string   `json:"locationsText"`
	PostedOn      string   `json:"postedOn"`
	BulletFields  []string `json:"bulletFields"`
}

func (a *Adapter) FetchPage(ctx context.Context, apiBase string, page atsdomain.Page) ([]atsdomain.Posting, error) {
	base := strings.TrimRight(apiBase, "/")
	body := searchRequest{
		Limit:  page.Size,
		Offset: (page.Number - 1) * page.Size,
	}

	var resp searchResponse
	if err := fetch.PostJSON(ctx, a.client, base+"/jobs", body, &resp); err != nil {
		return nil, err
	}

	out := make([]atsdomain.Posting, 0, len(resp.JobPostings))
	for _, raw := range resp.JobPostings {
		var j jobPosting
		if err := json.Unmarshal(raw, &j); err != nil {
			continue
		}

		// The requisition id travels in the first bullet field; fall back
		// to the external path, which is unique per posting.
		jobID := ""
		if len(j.BulletFields) > 0 {
			jobID = strings.TrimSpace(j.BulletFields[0])
		}
		if jobID == "" {
			jobID = strings.TrimSpace(j.ExternalPath)
		}
		if jobID == "" {
			continue
		}

		title := normalize.Truncate(j.Title, normalize.MaxTitle)
		if title == "" {
			title = "Untitled"
		}

		jobURL := ""
		if j.ExternalPath != "" {
			jobURL = base + "/" + strings.TrimLeft(j.ExternalPath, "/")
		}

		out = append(out, atsdomain.Posting{
			ATSJobID:     jobID,
			Title:        title,
			URL:          normalize.Truncate(jobURL, normalize.MaxURL),
			LocationRaw:  normalize.Truncate(j.LocationsText, normalize.MaxLocation),
			WorkplaceRaw: normalize.Workplace(j.LocationsText),
			RawJSON:      raw,
		})
	}
	return out, nil
}
