package config

import (
	"log"
	"strings"
	"sync/atomic"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
)

// QuotaHolder exposes the currently effective ingest limits. The limits
// start from the environment defaults and can be overridden by a
// `quota.yml` file that is watched and hot-reloaded, so operators can
// tighten a budget without restarting the service.
type QuotaHolder struct {
	current atomic.Value // holds IngestConfig
}

func NewQuotaHolder(cfg Config) (*QuotaHolder, error) {
	defaults := cfg.Ingest

	v := viper.New()
	v.SetConfigName("quota")
	v.SetConfigType("yml")
	v.AddConfigPath("/etc/jobfeed")
	v.AddConfigPath(".")

	v.SetEnvPrefix("JOBFEED")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("quota.maxCallsPerDay", defaults.MaxCallsPerDay)
	v.SetDefault("quota.maxNewJobsPerDay", defaults.MaxNewJobsPerDay)
	v.SetDefault("quota.maxFetchPerRun", defaults.MaxFetchPerRun)
	v.SetDefault("quota.perSourceLimit", defaults.PerSourceLimit)

	fileFound := true
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, err
		}
		fileFound = false
	}

	holder := &QuotaHolder{}
	holder.current.Store(holder.merge(defaults, v))

	if fileFound {
		v.WatchConfig()
		v.OnConfigChange(func(e fsnotify.Event) {
			updated := holder.merge(defaults, v)
			if updated.MaxFetchPerRun < 1 {
				log.Printf("[quota-config] invalid config ignored: maxFetchPerRun must be >= 1")
				return
			}
			holder.current.Store(updated)
			log.Printf("[quota-config] reloaded from %s", e.Name)
		})
	}

	return holder, nil
}

func (h *QuotaHolder) merge(defaults IngestConfig, v *viper.Viper) IngestConfig {
	out := defaults
	out.MaxCallsPerDay = v.GetInt("quota.maxCallsPerDay")
	out.MaxNewJobsPerDay = v.GetInt("quota.maxNewJobsPerDay")
	out.MaxFetchPerRun = v.GetInt("quota.maxFetchPerRun")
	out.PerSourceLimit = v.GetInt("quota.perSourceLimit")
	return out
}

// Get returns the effective ingest limits.
func (h *QuotaHolder) Get() IngestConfig {
	return h.current.Load().(IngestConfig)
}

// Set replaces the effective limits. Test hook.
func (h *QuotaHolder) Set(cfg IngestConfig) {
	h.current.Store(cfg)
}
