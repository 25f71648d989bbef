package exchange_test

import (
	"testing"
	"time"

	"pgregory.net/rapid"

	"github.com/Code102SoftwareProject/skill-swap-hub-sub004/internal/exchange"
	"github.com/Code102SoftwareProject/skill-swap-hub-sub004/internal/models"
)

// Property: no sequence of operations, issued by any actor in any order,
// ever moves a session along an edge outside the lifecycle graph, and no
// terminal session ever changes status again.
func TestLifecycleNeverEscapesGraph(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		s := pendingSession()
		var cancellation *models.CancellationRequest
		now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

		actors := []string{alice, bob, carol}
		steps := rapid.IntRange(1, 40).Draw(rt, "steps")

		for i := 0; i < steps; i++ {
			before := s.Status
			actor := rapid.SampledFrom(actors).Draw(rt, "actor")
			action := rapid.IntRange(0, 7).Draw(rt, "action")
			now = now.Add(time.Minute)

			var err error
			switch action {
			case 0:
				err = exchange.Decide(s, actor, rapid.Bool().Draw(rt, "accept"), now)
			case 1:
				err = exchange.RequestCompletion(s, actor, now)
			case 2:
				err = exchange.ApproveCompletion(s, actor, now)
			case 3:
				err = exchange.RejectCompletion(s, actor, "", now)
			case 4:
				if err = exchange.ValidateCancellation(s, cancellation, actor); err == nil {
					cancellation = &models.CancellationRequest{
						ID:             "cxl",
						SessionID:      s.ID,
						InitiatorID:    actor,
						Reason:         "reason",
						ResponseStatus: models.CancellationResponsePending,
						Resolution:     models.CancellationResolutionPending,
					}
				}
			case 5:
				if cancellation == nil {
					continue
				}
				err = exchange.AgreeCancellation(s, cancellation, actor, now)
			case 6:
				if cancellation == nil {
					continue
				}
				err = exchange.DisputeCancellation(s, cancellation, actor, "note", now)
			case 7:
				if cancellation == nil {
					continue
				}
				err = exchange.FinalizeCancellation(s, cancellation, actor, "note", now)
			}

			after := s.Status
			if err != nil && after != before {
				rt.Fatalf("refused operation %d still changed status %s -> %s", action, before, after)
			}
			if after != before {
				if before.Terminal() {
					rt.Fatalf("terminal status %s changed to %s", before, after)
				}
				if !exchange.CanTransition(before, after) {
					rt.Fatalf("illegal transition %s -> %s via operation %d", before, after, action)
				}
			}
			if s.Status == models.SessionStatusActive && (s.IsAccepted == nil || !*s.IsAccepted) {
				rt.Fatalf("active session without an accept decision")
			}
			if cancellation != nil &&
				cancellation.Resolution == models.CancellationResolutionCanceled &&
				cancellation.ResolvedAt == nil {
				rt.Fatalf("resolved cancellation without a resolution timestamp")
			}

			// A resolved request no longer blocks a fresh one.
			if cancellation != nil && cancellation.Resolution != models.CancellationResolutionPending {
				cancellation = nil
			}
		}
	})
}
