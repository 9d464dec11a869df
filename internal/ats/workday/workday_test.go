package workday

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	atsdomain "github.com/openhire/jobfeed/internal/ats/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFetchPagePostsOffsetAndLimit(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/jobs", r.URL.Path)

		var body searchRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, 20, body.Limit)
		assert.Equal(t, 40, body.Offset, "page 3 with size 20 starts at offset 40")

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{
			"total": 41,
			"jobPostings": [
				{
					"title": "Platform Engineer",
					"externalPath": "/job/Berlin/Platform-Engineer_REQ-1001",
					"locationsText": "Berlin, Germany",
					"postedOn": "Posted 3 Days Ago",
					"bulletFields": ["REQ-1001"]
				}
			]
		}`))
	}))
	defer srv.Close()

	adapter := New(srv.Client())
	postings, err := adapter.FetchPage(context.Background(), srv.URL, atsdomain.Page{Number: 3, Size: 20})
	require.NoError(t, err)
	require.Len(t, postings, 1)

	p := postings[0]
	assert.Equal(t, "REQ-1001", p.ATSJobID)
	assert.Equal(t, "Platform Engineer", p.Title)
	assert.Equal(t, srv.URL+"/job/Berlin/Platform-Engineer_REQ-1001", p.URL)
	assert.Equal(t, "Berlin, Germany", p.LocationRaw)
	assert.Empty(t, p.WorkplaceRaw)
	assert.Nil(t, p.PostedAt, "workday posts relative dates only")
}

func TestFetchPageFallsBackToExternalPathID(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{
			"jobPostings": [
				{"title": "A", "externalPath": "/job/x/A_123"},
				{"title": "B"}
			]
		}`))
	}))
	defer srv.Close()

	adapter := New(srv.Client())
	postings, err := adapter.FetchPage(context.Background(), srv.URL, atsdomain.Page{Number: 1, Size: 20})
	require.NoError(t, err)
	require.Len(t, postings, 1, "posting without any id is dropped")
	assert.Equal(t, "/job/x/A_123", postings[0].ATSJobID)
}

func TestFetchPageEmpty(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"total": 0, "jobPostings": []}`))
	}))
	defer srv.Close()

	adapter := New(srv.Client())
	postings, err := adapter.FetchPage(context.Background(), srv.URL, atsdomain.Page{Number: 1, Size: 20})
	require.NoError(t, err)
	assert.Empty(t, postings)
}
