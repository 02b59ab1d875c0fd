// services/scheduler.go
package services

import (
	"log"
	"time"

	"github.com/go-co-op/gocron/v2"
)

// StartEngagementJobs runs the periodic housekeeping the request path leaves
// behind: force-finalizing abandoned watch sessions and expiring open duels.
func StartEngagementJobs(watch *WatchService, duels *DuelService) {
	sched, _ := gocron.NewScheduler()
	sched.Start()

	// Every 10 minutes: finalize watch sessions abandoned past the cap
	_, _ = sched.NewJob(
		gocron.DurationJob(10*time.Minute),
		gocron.NewTask(func() {
			if err := watch.FinalizeStaleSessions(); err != nil {
				log.Printf("[Scheduler] Stale session sweep failed: %v", err)
			}
		}),
	)

	// Every 10 minutes: expire open duels past their deadline
	_, _ = sched.NewJob(
		gocron.DurationJob(10*time.Minute),
		gocron.NewTask(func() {
			if err := duels.ExpireOpenDuels(); err != nil {
				log.Printf("[Scheduler] Duel expiry sweep failed: %v", err)
			}
		}),
	)
}
