package engine

import (
	"context"
	"errors"
	"log"
	"sort"
	"time"

	"fleet-maintenance-backend/internal/followup"
)

// ErrPushDisabled means no alert pusher is configured.
var ErrPushDisabled = errors.New("alert push is not configured")

// DispatchAlerts queues the current alerts of every equipment for push
// delivery and returns how many equipment had alerts.
func (s *Service) DispatchAlerts(ctx context.Context, windowDays int) (int, error) {
	if s.pusher == nil {
		return 0, ErrPushDisabled
	}
	alerts, err := s.Alerts(ctx, 0, windowDays)
	if err != nil {
		return 0, err
	}

	byMatricule := followup.GroupByMatricule(alerts)
	matricules := make([]string, 0, len(byMatricule))
	for m := range byMatricule {
		matricules = append(matricules, m)
	}
	sort.Strings(matricules)
	for _, m := range matricules {
		s.pusher.Dispatch(m, byMatricule[m])
	}
	log.Printf("Dispatched %d alerts for %d equipment", len(alerts), len(matricules))
	return len(matricules), nil
}

// RunAlertLoop dispatches alerts now and then every interval until ctx is
// done. A non-positive interval returns immediately.
func (s *Service) RunAlertLoop(ctx context.Context, interval time.Duration) {
	if interval <= 0 || s.pusher == nil {
		log.Println("Periodic alert dispatch is disabled.")
		return
	}
	log.Printf("Dispatching alerts every %s", interval)

	dispatch := func() {
		if _, err := s.DispatchAlerts(ctx, 0); err != nil {
			log.Printf("Alert dispatch failed: %v", err)
		}
	}
	dispatch()

	timer := time.NewTimer(interval)
	defer timer.Stop()
	for {
		select {
		case <-ctx.Done():
			log.Println("Alert dispatch loop shutting down.")
			return
		case <-timer.C:
			dispatch()
			timer.Reset(interval)
		}
	}
}
