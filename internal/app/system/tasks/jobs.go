package tasks

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"

	"github.com/dalemusser/flockhub/internal/app/store/queries/roster"
)

// RosterReconcileJob rebuilds lifegroup member rosters from the members
// collection. The handlers keep rosters in sync on every write; this job
// repairs drift left behind by crashes between the two updates.
func RosterReconcileJob(db *mongo.Database, logger *zap.Logger, interval time.Duration) Job {
	return Job{
		Name:     "roster-reconcile",
		Interval: interval,
		Run: func(ctx context.Context) error {
			fixed, err := roster.Rebuild(ctx, db)
			if err != nil {
				return err
			}
			if fixed > 0 {
				logger.Info("repaired lifegroup rosters", zap.Int64("count", fixed))
			}
			return nil
		},
	}
}
