package service_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/Code102SoftwareProject/skill-swap-hub-sub004/internal/exchange"
	"github.com/Code102SoftwareProject/skill-swap-hub-sub004/internal/models"
	"github.com/Code102SoftwareProject/skill-swap-hub-sub004/internal/repository"
	"github.com/Code102SoftwareProject/skill-swap-hub-sub004/internal/service"
)

func newSessionService(sessions *fakeSessionStore, notifications *fakeNotificationStore) (*service.SessionService, *fakeCounterOfferStore, *fakeInvalidator) {
	skills := newFakeSkillStore(
		models.Skill{ID: "skill_go", UserID: alice, Name: "Go", Category: "programming"},
		models.Skill{ID: "skill_photo", UserID: bob, Name: "Photography", Category: "arts"},
		models.Skill{ID: "skill_carol", UserID: carol, Name: "Baking", Category: "cooking"},
	)
	offers := newFakeCounterOfferStore(sessions)
	invalidator := &fakeInvalidator{}
	svc := service.NewSessionService(
		sessions, skills, offers,
		testNotifier(notifications), invalidator,
		testConfig(), zerolog.Nop(),
	)
	return svc, offers, invalidator
}

func createInput() service.CreateSessionInput {
	start := time.Date(2026, 4, 1, 9, 0, 0, 0, time.UTC)
	return service.CreateSessionInput{
		ProposerID:         alice,
		CounterpartID:      bob,
		ProposerSkillID:    "skill_go",
		ProposerService:    "weekly Go lessons",
		CounterpartSkillID: "skill_photo",
		CounterpartService: "portrait shoots",
		StartDate:          start,
		EndDate:            start.AddDate(0, 3, 0),
	}
}

func TestSessionCreate(t *testing.T) {
	ctx := context.Background()

	t.Run("happy path notifies the counterpart", func(t *testing.T) {
		sessions := newFakeSessionStore()
		notifications := &fakeNotificationStore{}
		svc, _, _ := newSessionService(sessions, notifications)

		created, err := svc.Create(ctx, createInput())
		if err != nil {
			t.Fatalf("create: %v", err)
		}
		if created.Status != models.SessionStatusPending || created.IsAccepted != nil {
			t.Fatalf("new session must be pending and undecided")
		}
		sent := notifications.sent()
		if len(sent) != 1 || sent[0].UserID != bob || sent[0].Kind != "session.proposed" {
			t.Fatalf("unexpected notifications: %+v", sent)
		}
	})

	t.Run("proposing to yourself refuses", func(t *testing.T) {
		svc, _, _ := newSessionService(newFakeSessionStore(), &fakeNotificationStore{})
		input := createInput()
		input.CounterpartID = alice
		if _, err := svc.Create(ctx, input); !errors.Is(err, exchange.ErrSelfSession) {
			t.Fatalf("got %v, want ErrSelfSession", err)
		}
	})

	t.Run("skill owned by someone else refuses", func(t *testing.T) {
		svc, _, _ := newSessionService(newFakeSessionStore(), &fakeNotificationStore{})
		input := createInput()
		input.CounterpartSkillID = "skill_carol"
		if _, err := svc.Create(ctx, input); !errors.Is(err, service.ErrSkillOwnership) {
			t.Fatalf("got %v, want ErrSkillOwnership", err)
		}
	})

	t.Run("outgoing pending throttle", func(t *testing.T) {
		sessions := newFakeSessionStore()
		svc, _, _ := newSessionService(sessions, &fakeNotificationStore{})

		for i := 0; i < 3; i++ {
			input := createInput()
			if _, err := svc.Create(ctx, input); err != nil {
				t.Fatalf("create %d: %v", i, err)
			}
		}
		if _, err := svc.Create(ctx, createInput()); !errors.Is(err, service.ErrTooManyPending) {
			t.Fatalf("got %v, want ErrTooManyPending", err)
		}
	})
}

func TestSessionRespond(t *testing.T) {
	ctx := context.Background()

	t.Run("counterpart accepts", func(t *testing.T) {
		sessions := newFakeSessionStore(seedPendingSession("sess_1"))
		notifications := &fakeNotificationStore{}
		svc, _, invalidator := newSessionService(sessions, notifications)

		updated, err := svc.Respond(ctx, "sess_1", bob, true)
		if err != nil {
			t.Fatalf("respond: %v", err)
		}
		if updated.Status != models.SessionStatusActive {
			t.Fatalf("status = %s, want active", updated.Status)
		}

		stored, _ := sessions.GetByID(ctx, "sess_1")
		if stored.Status != models.SessionStatusActive {
			t.Fatalf("decision was not persisted")
		}
		sent := notifications.sent()
		if len(sent) != 1 || sent[0].UserID != alice || sent[0].Kind != "session.accepted" {
			t.Fatalf("unexpected notifications: %+v", sent)
		}
		if len(invalidator.users) != 2 {
			t.Fatalf("both participants' views must be invalidated, got %v", invalidator.users)
		}
	})

	t.Run("proposer cannot accept own proposal", func(t *testing.T) {
		sessions := newFakeSessionStore(seedPendingSession("sess_1"))
		svc, _, _ := newSessionService(sessions, &fakeNotificationStore{})

		if _, err := svc.Respond(ctx, "sess_1", alice, true); !errors.Is(err, exchange.ErrOwnDecision) {
			t.Fatalf("got %v, want ErrOwnDecision", err)
		}
		stored, _ := sessions.GetByID(ctx, "sess_1")
		if stored.Status != models.SessionStatusPending {
			t.Fatalf("refused respond must not persist anything")
		}
	})

	t.Run("losing the race surfaces a conflict", func(t *testing.T) {
		sessions := newFakeSessionStore(seedPendingSession("sess_1"))
		svc, _, _ := newSessionService(sessions, &fakeNotificationStore{})

		if _, err := svc.Respond(ctx, "sess_1", bob, true); err != nil {
			t.Fatalf("first respond: %v", err)
		}
		_, err := svc.Respond(ctx, "sess_1", bob, false)
		if !errors.Is(err, exchange.ErrAlreadyDecided) {
			t.Fatalf("got %v, want ErrAlreadyDecided", err)
		}
	})

	t.Run("notifier failure does not fail the transition", func(t *testing.T) {
		sessions := newFakeSessionStore(seedPendingSession("sess_1"))
		notifications := &fakeNotificationStore{failNext: true}
		svc, _, _ := newSessionService(sessions, notifications)

		updated, err := svc.Respond(ctx, "sess_1", bob, true)
		if err != nil {
			t.Fatalf("respond must succeed despite notification failure: %v", err)
		}
		if updated.Status != models.SessionStatusActive {
			t.Fatalf("status = %s, want active", updated.Status)
		}
	})
}

func TestSessionDelete(t *testing.T) {
	ctx := context.Background()

	t.Run("proposer deletes a pending proposal", func(t *testing.T) {
		sessions := newFakeSessionStore(seedPendingSession("sess_1"))
		svc, _, _ := newSessionService(sessions, &fakeNotificationStore{})

		if err := svc.Delete(ctx, "sess_1", alice); err != nil {
			t.Fatalf("delete: %v", err)
		}
		if _, err := sessions.GetByID(ctx, "sess_1"); !errors.Is(err, repository.ErrSessionNotFound) {
			t.Fatalf("session should be gone, got %v", err)
		}
	})

	t.Run("counterpart cannot delete", func(t *testing.T) {
		sessions := newFakeSessionStore(seedPendingSession("sess_1"))
		svc, _, _ := newSessionService(sessions, &fakeNotificationStore{})

		if err := svc.Delete(ctx, "sess_1", bob); !errors.Is(err, exchange.ErrNotProposer) {
			t.Fatalf("got %v, want ErrNotProposer", err)
		}
	})
}

func TestCounterOfferFlow(t *testing.T) {
	ctx := context.Background()

	t.Run("counter then accept activates under the new terms", func(t *testing.T) {
		sessions := newFakeSessionStore(seedPendingSession("sess_1"))
		notifications := &fakeNotificationStore{}
		svc, _, _ := newSessionService(sessions, notifications)

		start := time.Date(2026, 5, 1, 9, 0, 0, 0, time.UTC)
		offer, err := svc.CreateCounterOffer(ctx, "sess_1", bob, service.CounterOfferInput{
			ProposerSkillID:    "skill_go",
			ProposerService:    "biweekly Go lessons",
			CounterpartSkillID: "skill_photo",
			CounterpartService: "event coverage",
			StartDate:          start,
			EndDate:            start.AddDate(0, 2, 0),
			Note:               "fewer lessons, bigger shoots",
		})
		if err != nil {
			t.Fatalf("counter offer: %v", err)
		}

		updated, err := svc.DecideCounterOffer(ctx, "sess_1", offer.ID, alice, true)
		if err != nil {
			t.Fatalf("accept counter offer: %v", err)
		}
		if updated.Status != models.SessionStatusActive {
			t.Fatalf("status = %s, want active", updated.Status)
		}
		if updated.ProposerService != "biweekly Go lessons" || updated.CounterpartService != "event coverage" {
			t.Fatalf("session did not adopt the offered terms: %+v", updated)
		}

		stored, _ := sessions.GetByID(ctx, "sess_1")
		if stored.Status != models.SessionStatusActive || !stored.StartDate.Equal(start) {
			t.Fatalf("accepted terms were not persisted")
		}
	})

	t.Run("proposer cannot counter own proposal", func(t *testing.T) {
		sessions := newFakeSessionStore(seedPendingSession("sess_1"))
		svc, _, _ := newSessionService(sessions, &fakeNotificationStore{})

		_, err := svc.CreateCounterOffer(ctx, "sess_1", alice, service.CounterOfferInput{
			ProposerSkillID:    "skill_go",
			CounterpartSkillID: "skill_photo",
		})
		if !errors.Is(err, exchange.ErrOwnDecision) {
			t.Fatalf("got %v, want ErrOwnDecision", err)
		}
	})

	t.Run("rejecting leaves the session pending", func(t *testing.T) {
		sessions := newFakeSessionStore(seedPendingSession("sess_1"))
		svc, offers, _ := newSessionService(sessions, &fakeNotificationStore{})

		offer, err := svc.CreateCounterOffer(ctx, "sess_1", bob, service.CounterOfferInput{
			ProposerSkillID:    "skill_go",
			ProposerService:    "one lesson",
			CounterpartSkillID: "skill_photo",
			CounterpartService: "one shoot",
			StartDate:          time.Now().UTC(),
		})
		if err != nil {
			t.Fatalf("counter offer: %v", err)
		}

		updated, err := svc.DecideCounterOffer(ctx, "sess_1", offer.ID, alice, false)
		if err != nil {
			t.Fatalf("reject counter offer: %v", err)
		}
		if updated.Status != models.SessionStatusPending {
			t.Fatalf("status = %s, want pending", updated.Status)
		}
		stored, _ := offers.GetByID(ctx, offer.ID)
		if stored.Status != models.CounterOfferRejected {
			t.Fatalf("offer status = %s, want rejected", stored.Status)
		}
	})
}
