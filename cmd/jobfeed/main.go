package main

import (
	"hash/fnv"
	"os"

	"github.com/bwmarrin/snowflake"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/openhire/jobfeed/internal/ats"
	"github.com/openhire/jobfeed/internal/clock"
	"github.com/openhire/jobfeed/internal/config"
	"github.com/openhire/jobfeed/internal/ingest"
	"github.com/openhire/jobfeed/internal/job"
	jobdomain "github.com/openhire/jobfeed/internal/job/domain"
	"github.com/openhire/jobfeed/internal/observability/metrics"
	"github.com/openhire/jobfeed/internal/quota"
	quotadomain "github.com/openhire/jobfeed/internal/quota/domain"
	"github.com/openhire/jobfeed/internal/runlock"
	"github.com/openhire/jobfeed/internal/scheduler"
	"github.com/openhire/jobfeed/internal/server"
	"github.com/openhire/jobfeed/internal/source"
	sourcedomain "github.com/openhire/jobfeed/internal/source/domain"
	"github.com/openhire/jobfeed/pkg/db"
	"github.com/openhire/jobfeed/pkg/log"
)

func main() {
	fx.New(
		config.Module,
		log.Module,
		db.Module,
		clock.Module,
		metrics.Module,
		fx.Provide(newSnowflakeNode),
		ats.Module,
		quota.Module,
		job.Module,
		source.Module,
		ingest.Module,
		runlock.Module,
		scheduler.Module,
		server.Module,
		fx.Invoke(migrate),
	).Run()
}

// newSnowflakeNode derives the node id from the hostname so replicas do
// not collide on generated ids.
func newSnowflakeNode() (*snowflake.Node, error) {
	hostname, err := os.Hostname()
	if err != nil {
		hostname = "jobfeed"
	}
	h := fnv.New32a()
	_, _ = h.Write([]byte(hostname))
	return snowflake.NewNode(int64(h.Sum32() % 1024))
}

func migrate(gdb *gorm.DB, logger *zap.Logger) error {
	err := gdb.AutoMigrate(
		&sourcedomain.Source{},
		&jobdomain.Job{},
		&quotadomain.ProviderDailyUsage{},
		&quotadomain.NewJobDaily{},
	)
	if err != nil {
		logger.Error("auto migration failed", zap.Error(err))
		return err
	}
	logger.Info("database schema ready")
	return nil
}
