package successfactors

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	atsdomain "github.com/openhire/jobfeed/internal/ats/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFetchParsesODataFeed(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "json", r.URL.Query().Get("$format"))
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{
			"d": {
				"results": [
					{
						"jobReqId": "9001",
						"externalTitle": "Cloud Architect",
						"location": "Walldorf, Remote option",
						"postedDate": "/Date(1700000000000)/",
						"externalJobDescription": "<p>Design platforms. $180,000 - $210,000 annually.</p>",
						"applyUrl": "https://careers.example.com/job/9001"
					},
					{"externalTitle": "no req id"}
				]
			}
		}`))
	}))
	defer srv.Close()

	adapter := New(srv.Client())
	postings, err := adapter.FetchPage(context.Background(), srv.URL, atsdomain.Page{})
	require.NoError(t, err)
	require.Len(t, postings, 1)

	p := postings[0]
	assert.Equal(t, "9001", p.ATSJobID)
	assert.Equal(t, "Cloud Architect", p.Title)
	assert.Equal(t, "Remote", p.WorkplaceRaw)
	assert.Equal(t, "$180,000 - $210,000", p.SalaryText)
	require.NotNil(t, p.PostedAt)
	assert.Equal(t, time.UnixMilli(1700000000000).UTC(), *p.PostedAt)
}

func TestFetchKeepsExplicitFormatParam(t *testing.T) {
	var gotQuery string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.RawQuery
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"d": {"results": []}}`))
	}))
	defer srv.Close()

	adapter := New(srv.Client())
	_, err := adapter.FetchPage(context.Background(), srv.URL+"?$format=json&$top=50", atsdomain.Page{})
	require.NoError(t, err)
	assert.Equal(t, "$format=json&$top=50", gotQuery)
}
