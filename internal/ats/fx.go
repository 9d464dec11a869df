package ats

import (
	"net/http"

	"github.com/openhire/jobfeed/internal/ats/greenhouse"
	"github.com/openhire/jobfeed/internal/ats/lever"
	"github.com/openhire/jobfeed/internal/ats/successfactors"
	"github.com/openhire/jobfeed/internal/ats/workable"
	"github.com/openhire/jobfeed/internal/ats/workday"
	"github.com/openhire/jobfeed/internal/config"
	"go.uber.org/fx"
)

var Module = fx.Module("ats",
	fx.Provide(NewHTTPClient),
	fx.Provide(ProvideRegistry),
)

// NewHTTPClient returns the shared provider HTTP client. The timeout is
// the only cancellation mechanism a hanging board gets.
func NewHTTPClient(cfg config.Config) *http.Client {
	return &http.Client{Timeout: cfg.RequestTimeout}
}

func ProvideRegistry(client *http.Client) *Registry {
	return NewRegistry(
		greenhouse.New(client),
		lever.New(client),
		workday.New(client),
		workable.New(client),
		successfactors.New(client),
	)
}
