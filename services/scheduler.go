// services/scheduler.go
package services

import (
	"context"
	"log"
	"time"

	"github.com/go-co-op/gocron/v2"
)

// StartEscrowAuditScheduler runs the escrow reconciliation every interval.
// The audit only reads and logs; it never moves value.
func (s *PlatformService) StartEscrowAuditScheduler(interval time.Duration) {
	sched, _ := gocron.NewScheduler()
	sched.Start()

	_, _ = sched.NewJob(
		gocron.DurationJob(interval),
		gocron.NewTask(func() {
			ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			defer cancel()

			expected, actual, perTournament, err := s.AuditEscrow(ctx)
			if err != nil {
				log.Printf("[EscrowAudit] audit failed: %v", err)
				return
			}
			if expected == actual {
				log.Printf("[EscrowAudit] escrow reconciled: %d held across %d open tournaments", actual, len(perTournament))
			}
		}),
	)
}
