package service

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/glebarez/sqlite"
	"github.com/openhire/jobfeed/internal/ats"
	"github.com/openhire/jobfeed/internal/ats/lever"
	"github.com/openhire/jobfeed/internal/clock"
	sourcedomain "github.com/openhire/jobfeed/internal/source/domain"
	"github.com/openhire/jobfeed/internal/source/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	name := strings.ReplaceAll(t.Name(), "/", "_")
	db, err := gorm.Open(sqlite.Open("file:"+name+"?mode=memory&cache=shared"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&sourcedomain.Source{}))
	return db
}

func newTestService(t *testing.T, db *gorm.DB, fc clock.Clock) *Service {
	t.Helper()
	node, err := snowflake.NewNode(1)
	require.NoError(t, err)
	return &Service{
		db:       db,
		log:      zap.NewNop(),
		genID:    node,
		registry: ats.NewRegistry(lever.New(http.DefaultClient)),
		clock:    fc,
		repo:     repository.Provide(),
	}
}

func TestUpsertCreatesThenUpdates(t *testing.T) {
	db := openTestDB(t)
	fc := clock.NewFakeClock(time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC))
	svc := newTestService(t, db, fc)
	ctx := context.Background()

	src, err := svc.Upsert(ctx, sourcedomain.UpsertRequest{
		ATSType:       "Lever",
		CompanyName:   "Acme Robotics",
		APIBase:       "https://api.lever.co/v0/postings/acme",
		DiscoveredVia: "manual",
	})
	require.NoError(t, err)
	assert.Equal(t, "lever", src.ATSType, "provider is normalized to lowercase")
	assert.Equal(t, "acme-robotics", src.CompanySlug, "slug derived from company name")
	assert.False(t, src.IsActive)

	// Same target again only updates, no second row.
	again, err := svc.Upsert(ctx, sourcedomain.UpsertRequest{
		ATSType:     "lever",
		CompanySlug: "acme-robotics",
		CompanyName: "Acme Robotics GmbH",
		APIBase:     "https://api.lever.co/v0/postings/acme",
		Activate:    true,
	})
	require.NoError(t, err)
	assert.Equal(t, src.ID, again.ID)
	assert.Equal(t, "Acme Robotics GmbH", again.CompanyName)
	assert.True(t, again.IsActive)

	var count int64
	require.NoError(t, db.Model(&sourcedomain.Source{}).Count(&count).Error)
	assert.EqualValues(t, 1, count)
}

func TestUpsertValidation(t *testing.T) {
	db := openTestDB(t)
	fc := clock.NewFakeClock(time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC))
	svc := newTestService(t, db, fc)
	ctx := context.Background()

	_, err := svc.Upsert(ctx, sourcedomain.UpsertRequest{
		ATSType: "taleo",
		APIBase: "https://example.invalid",
	})
	assert.ErrorIs(t, err, sourcedomain.ErrInvalidATSType)

	_, err = svc.Upsert(ctx, sourcedomain.UpsertRequest{
		ATSType:     "lever",
		CompanySlug: "acme",
	})
	assert.ErrorIs(t, err, sourcedomain.ErrInvalidAPIBase)

	_, err = svc.Upsert(ctx, sourcedomain.UpsertRequest{
		ATSType: "lever",
		APIBase: "https://example.invalid",
	})
	assert.ErrorIs(t, err, sourcedomain.ErrInvalidSlug)
}

func TestVerifyInactivePromotesAndDemotes(t *testing.T) {
	db := openTestDB(t)
	fc := clock.NewFakeClock(time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC))
	svc := newTestService(t, db, fc)
	ctx := context.Background()

	healthy := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[]`))
	}))
	t.Cleanup(healthy.Close)

	broken := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	t.Cleanup(broken.Close)

	good, err := svc.Upsert(ctx, sourcedomain.UpsertRequest{
		ATSType: "lever", CompanySlug: "acme", APIBase: healthy.URL,
	})
	require.NoError(t, err)
	bad, err := svc.Upsert(ctx, sourcedomain.UpsertRequest{
		ATSType: "lever", CompanySlug: "umbrella", APIBase: broken.URL,
	})
	require.NoError(t, err)

	res, err := svc.VerifyInactive(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, res.Verified)
	assert.Equal(t, 1, res.Failed)

	var promoted sourcedomain.Source
	require.NoError(t, db.First(&promoted, "id = ?", good.ID).Error)
	assert.True(t, promoted.IsActive)
	assert.NotNil(t, promoted.VerifiedAt)
	assert.NotNil(t, promoted.LastOKAt)
	assert.Nil(t, promoted.LastError)

	var demoted sourcedomain.Source
	require.NoError(t, db.First(&demoted, "id = ?", bad.ID).Error)
	assert.False(t, demoted.IsActive)
	require.NotNil(t, demoted.LastError)
	assert.True(t, strings.HasPrefix(*demoted.LastError, "verify_failed:"))
}

func TestVerifyInactiveSkipsActiveSources(t *testing.T) {
	db := openTestDB(t)
	fc := clock.NewFakeClock(time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC))
	svc := newTestService(t, db, fc)
	ctx := context.Background()

	var hits int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits++
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[]`))
	}))
	t.Cleanup(srv.Close)

	_, err := svc.Upsert(ctx, sourcedomain.UpsertRequest{
		ATSType: "lever", CompanySlug: "acme", APIBase: srv.URL, Activate: true,
	})
	require.NoError(t, err)

	res, err := svc.VerifyInactive(ctx)
	require.NoError(t, err)
	assert.Zero(t, res.Verified)
	assert.Zero(t, res.Failed)
	assert.Zero(t, hits, "active sources are not probed")
}
