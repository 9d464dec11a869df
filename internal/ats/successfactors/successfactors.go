// Package successfactors integrates the SAP SuccessFactors career site
// OData feed. The configured api_base points at the requisition entity
// set; the whole feed arrives in one response.
package successfactors

import (
	"context"
	"encoding/json"
	"net/http"
	"regexp"
	"strconv"
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

func (a *Adapter) Provider() string { return "successfactors" }
func (a *Adapter) Paginated() bool  { return false }

type odataResponse struct {
	D struct {
		Results []json.RawMessage `json:"results"`
	} `json:"d"`
}

type requisition struct {
	JobReqID       string `json:"jobReqId"`
	ExternalTitle  string `json:"externalTitle"`
	Location       string `json:"location"`
	PostedDate     string `json:"postedDate"`
	JobDescription string `json:"externalJobDescription"`
	ApplyURL       string `json:"applyUrl"`
}

// odataDateRe matches the OData V2 epoch-millisecond date literal, e.g.
// "/Date(1700000000000)/".
var odataDateRe = regexp.MustCompile(`\/Date\((\d+)\)\/`)

func (a *Adapter) FetchPage(ctx context.Context, apiBase string, _ atsdomain.Page) ([]atsdomain.Posting, error) {
	url := apiBase
	if !strings.Contains(url, "$format=json") {
		sep := "?"
		if strings.Contains(url, "?") {
			sep = "&"
		}
		url += sep + "$format=json"
	}

	var resp odataResponse
	if err := fetch.GetJSON(ctx, a.client, url, &resp); err != nil {
		return nil, err
	}

	out := make([]atsdomain.Posting, 0, len(resp.D.Results))
	for _, raw := range resp.D.Results {
		var r requisition
		if err := json.Unmarshal(raw, &r); err != nil {
			continue
		}
		jobID := strings.TrimSpace(r.JobReqID)
		if jobID == "" {
			continue
		}

		var postedAt *time.Time
		if m := odataDateRe.FindStringSubmatch(r.PostedDate); m != nil {
			if ms, err := strconv.ParseInt(m[1], 10, 64); err == nil {
				t := time.UnixMilli(ms).UTC()
				postedAt = &t
			}
		}

		rawText := normalize.StripHTML(r.JobDescription)

		title := normalize.Truncate(r.ExternalTitle, normalize.MaxTitle)
		if title == "" {
			title = "Untitled"
		}

		out = append(out, atsdomain.Posting{
			ATSJobID:     jobID,
			Title:        title,
			URL:          normalize.Truncate(r.ApplyURL, normalize.MaxURL),
			LocationRaw:  normalize.Truncate(r.Location, normalize.MaxLocation),
			WorkplaceRaw: normalize.Workplace(r.Location),
			PostedAt:     postedAt,
			RawJSON:      raw,
			RawText:      rawText,
			SalaryText:   normalize.ExtractSalary(rawText),
		})
	}
	return out, nil
}
