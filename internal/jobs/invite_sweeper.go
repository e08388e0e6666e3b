package jobs

import (
	"context"
	"log"
	"time"

	"famledger/internal/repositories"

	"github.com/go-co-op/gocron/v2"
)

// InviteSweeper periodically soft-deletes family invitations that were
// never accepted. Invitations count against the (family, user) uniqueness
// constraint, so stale ones would block re-inviting the same user forever.
type InviteSweeper struct {
	scheduler   gocron.Scheduler
	memberships repositories.MembershipRepository
	interval    time.Duration
	maxAge      time.Duration
}

func NewInviteSweeper(memberships repositories.MembershipRepository, interval, maxAge time.Duration) (*InviteSweeper, error) {
	scheduler, err := gocron.NewScheduler()
	if err != nil {
		return nil, err
	}

	sweeper := &InviteSweeper{
		scheduler:   scheduler,
		memberships: memberships,
		interval:    interval,
		maxAge:      maxAge,
	}

	_, err = scheduler.NewJob(
		gocron.DurationJob(interval),
		gocron.NewTask(sweeper.sweep, context.Background()),
		gocron.WithName("stale-invite-sweep"),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
	)
	if err != nil {
		return nil, err
	}

	return sweeper, nil
}

func (s *InviteSweeper) Start() {
	log.Printf("Starting invite sweeper (every %s, max invite age %s)", s.interval, s.maxAge)
	s.scheduler.Start()
}

func (s *InviteSweeper) Stop() error {
	return s.scheduler.Shutdown()
}

func (s *InviteSweeper) sweep(ctx context.Context) {
	cutoff := time.Now().Add(-s.maxAge)
	swept, err := s.memberships.SweepStaleInvites(ctx, cutoff)
	if err != nil {
		log.Printf("invite sweep failed: %v", err)
		return
	}
	if swept > 0 {
		log.Printf("invite sweep removed %d stale invitations", swept)
	}
}
