package service

import (
	"context"
	"errors"
	"log/slog"
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"civiceye/internal/audit"
	"civiceye/internal/complaint/models"
	"civiceye/internal/complaint/store"
	"civiceye/internal/complaint/store/mocks"
	dErrors "civiceye/pkg/domain-errors"
	"civiceye/pkg/platform/sentinel"
)

func testLogger() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

// fakeCache is a map-backed TrackerCache for observing cache interactions.
type fakeCache struct {
	entries     map[string]models.TrackerView
	sets        int
	invalidated []string
}

func newFakeCache() *fakeCache {
	return &fakeCache{entries: make(map[string]models.TrackerView)}
}

func (f *fakeCache) Get(_ context.Context, ticketID string) (models.TrackerView, bool, error) {
	view, ok := f.entries[ticketID]
	return view, ok, nil
}

func (f *fakeCache) Set(_ context.Context, view models.TrackerView, _ time.Duration) error {
	f.entries[view.TicketID] = view
	f.sets++
	return nil
}

func (f *fakeCache) Invalidate(_ context.Context, ticketID string) error {
	delete(f.entries, ticketID)
	f.invalidated = append(f.invalidated, ticketID)
	return nil
}

func validSubmit() models.SubmitRequest {
	return models.SubmitRequest{
		ReporterName:       "Asha Verma",
		SourceStation:      "Delhi",
		DestinationStation: "Mumbai",
		DateOfTravel:       "2026-02-21",
		TimeOfIncident:     "around 3pm",
		Category:           models.CategoryOvercharging,
		Degree:             models.DegreeModerate,
		PNRVerified:        true,
	}
}

func TestSubmit_AssignsTicketAndInitialHistory(t *testing.T) {
	st := store.NewInMemoryStore()
	now := time.Date(2026, 3, 14, 10, 0, 0, 0, time.UTC)
	svc := NewService(st, testLogger(), WithClock(func() time.Time { return now }))

	c, err := svc.Submit(context.Background(), validSubmit(), SubmitMeta{
		SubmitterID:  "user-42",
		SubmittedVia: "Chrome on Linux",
	})
	require.NoError(t, err)

	assert.Regexp(t, regexp.MustCompile(`^CIV-2026-\d{4}$`), c.TicketID)
	assert.Equal(t, models.StatusUnderReview, c.Status)
	require.Len(t, c.StatusHistory, 1)
	assert.Equal(t, models.StatusUnderReview, c.StatusHistory[0].Status)
	assert.Equal(t, models.TypeRailway, c.Type)
	assert.Equal(t, "user-42", c.SubmittedBy)
	assert.True(t, c.PNRVerified)
	assert.Equal(t, now, c.CreatedAt)

	stored, err := st.FindByTicketID(context.Background(), c.TicketID)
	require.NoError(t, err)
	assert.Equal(t, c.ID, stored.ID)
}

func TestSubmit_AnonymityIsAbsolute(t *testing.T) {
	aliasPattern := regexp.MustCompile(`^Citizen-[0-9A-Z]{6}$`)

	t.Run("requested anonymity drops the submitter link", func(t *testing.T) {
		svc := NewService(store.NewInMemoryStore(), testLogger())
		req := validSubmit()
		req.IsAnonymous = true

		c, err := svc.Submit(context.Background(), req, SubmitMeta{SubmitterID: "user-42"})
		require.NoError(t, err)
		assert.True(t, c.IsAnonymous)
		assert.Empty(t, c.SubmittedBy)
		assert.Regexp(t, aliasPattern, c.AnonymousAlias)
	})

	t.Run("guest submissions are anonymous regardless of the flag", func(t *testing.T) {
		svc := NewService(store.NewInMemoryStore(), testLogger())
		req := validSubmit()
		req.IsAnonymous = false

		c, err := svc.Submit(context.Background(), req, SubmitMeta{})
		require.NoError(t, err)
		assert.True(t, c.IsAnonymous)
		assert.Empty(t, c.SubmittedBy)
		assert.Regexp(t, aliasPattern, c.AnonymousAlias)
	})

	t.Run("identified submissions carry no alias", func(t *testing.T) {
		svc := NewService(store.NewInMemoryStore(), testLogger())

		c, err := svc.Submit(context.Background(), validSubmit(), SubmitMeta{SubmitterID: "user-42"})
		require.NoError(t, err)
		assert.False(t, c.IsAnonymous)
		assert.Equal(t, "user-42", c.SubmittedBy)
		assert.Empty(t, c.AnonymousAlias)
	})
}

func TestSubmit_CategoryOtherDetail(t *testing.T) {
	svc := NewService(store.NewInMemoryStore(), testLogger())

	t.Run("kept for Other", func(t *testing.T) {
		req := validSubmit()
		req.Category = models.CategoryOther
		req.CategoryOther = "Broken fan in coach"

		c, err := svc.Submit(context.Background(), req, SubmitMeta{SubmitterID: "user-42"})
		require.NoError(t, err)
		assert.Equal(t, "Broken fan in coach", c.CategoryOther)
	})

	t.Run("dropped for named categories", func(t *testing.T) {
		req := validSubmit()
		req.CategoryOther = "should vanish"

		c, err := svc.Submit(context.Background(), req, SubmitMeta{SubmitterID: "user-42"})
		require.NoError(t, err)
		assert.Empty(t, c.CategoryOther)
	})
}

func TestSubmit_Validation(t *testing.T) {
	svc := NewService(store.NewInMemoryStore(), testLogger())

	req := validSubmit()
	req.SourceStation = ""
	req.Degree = ""

	_, err := svc.Submit(context.Background(), req, SubmitMeta{SubmitterID: "user-42"})
	require.Error(t, err)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeValidation))
	assert.Equal(t, "Missing required fields: sourceStation, complaintDegree", err.Error())
}

func TestSubmit_RetriesOnceOnInsertConflict(t *testing.T) {
	ctrl := gomock.NewController(t)
	mockStore := mocks.NewMockStore(ctrl)
	svc := NewService(mockStore, testLogger())

	mockStore.EXPECT().
		TicketIDExists(gomock.Any(), gomock.Any()).
		Return(false, nil).
		Times(2)

	var tickets []string
	first := mockStore.EXPECT().
		Insert(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, c models.Complaint) error {
			tickets = append(tickets, c.TicketID)
			return sentinel.ErrConflict
		})
	mockStore.EXPECT().
		Insert(gomock.Any(), gomock.Any()).
		After(first).
		DoAndReturn(func(_ context.Context, c models.Complaint) error {
			tickets = append(tickets, c.TicketID)
			return nil
		})

	c, err := svc.Submit(context.Background(), validSubmit(), SubmitMeta{SubmitterID: "user-42"})
	require.NoError(t, err)
	require.Len(t, tickets, 2)
	assert.Equal(t, tickets[1], c.TicketID)
}

func TestSubmit_SecondConflictGivesUp(t *testing.T) {
	ctrl := gomock.NewController(t)
	mockStore := mocks.NewMockStore(ctrl)
	svc := NewService(mockStore, testLogger())

	mockStore.EXPECT().TicketIDExists(gomock.Any(), gomock.Any()).Return(false, nil).Times(2)
	mockStore.EXPECT().Insert(gomock.Any(), gomock.Any()).Return(sentinel.ErrConflict).Times(2)

	_, err := svc.Submit(context.Background(), validSubmit(), SubmitMeta{SubmitterID: "user-42"})
	require.Error(t, err)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeConflict))
}

func TestSubmit_StoreOutage(t *testing.T) {
	ctrl := gomock.NewController(t)
	mockStore := mocks.NewMockStore(ctrl)
	svc := NewService(mockStore, testLogger())

	mockStore.EXPECT().
		TicketIDExists(gomock.Any(), gomock.Any()).
		Return(false, errors.New("connection refused"))

	_, err := svc.Submit(context.Background(), validSubmit(), SubmitMeta{SubmitterID: "user-42"})
	require.Error(t, err)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeUnavailable))
}

func TestSubmit_EmitsAuditEvent(t *testing.T) {
	publisher := audit.NewMemoryPublisher()
	svc := NewService(store.NewInMemoryStore(), testLogger(), WithAuditPublisher(publisher))

	c, err := svc.Submit(context.Background(), validSubmit(), SubmitMeta{
		SubmitterID: "user-42",
		RequestID:   "req-1",
	})
	require.NoError(t, err)

	events := publisher.Events()
	require.Len(t, events, 1)
	assert.Equal(t, audit.ActionComplaintSubmitted, events[0].Action)
	assert.Equal(t, c.TicketID, events[0].TicketID)
	assert.Equal(t, "req-1", events[0].RequestID)
	assert.Equal(t, string(models.StatusUnderReview), events[0].ToStatus)
}

func TestListMine(t *testing.T) {
	st := store.NewInMemoryStore()
	svc := NewService(st, testLogger())
	ctx := context.Background()

	_, err := svc.Submit(ctx, validSubmit(), SubmitMeta{SubmitterID: "user-42"})
	require.NoError(t, err)
	_, err = svc.Submit(ctx, validSubmit(), SubmitMeta{SubmitterID: "someone-else"})
	require.NoError(t, err)

	views, err := svc.ListMine(ctx, "user-42")
	require.NoError(t, err)
	require.Len(t, views, 1)
	assert.Equal(t, "Asha Verma", views[0].ReporterName)
}

func TestTrack(t *testing.T) {
	t.Run("returns the public projection", func(t *testing.T) {
		st := store.NewInMemoryStore()
		svc := NewService(st, testLogger())
		ctx := context.Background()

		c, err := svc.Submit(ctx, validSubmit(), SubmitMeta{SubmitterID: "user-42"})
		require.NoError(t, err)

		view, err := svc.Track(ctx, c.TicketID)
		require.NoError(t, err)
		assert.Equal(t, c.TicketID, view.TicketID)
		assert.Equal(t, models.StatusUnderReview, view.Status)
		require.Len(t, view.StatusHistory, 1)
	})

	t.Run("normalizes case and whitespace", func(t *testing.T) {
		st := store.NewInMemoryStore()
		svc := NewService(st, testLogger())
		ctx := context.Background()

		c, err := svc.Submit(ctx, validSubmit(), SubmitMeta{SubmitterID: "user-42"})
		require.NoError(t, err)

		view, err := svc.Track(ctx, "  "+strings.ToLower(c.TicketID)+" ")
		require.NoError(t, err)
		assert.Equal(t, c.TicketID, view.TicketID)
	})

	t.Run("unknown ticket is not found", func(t *testing.T) {
		svc := NewService(store.NewInMemoryStore(), testLogger())
		_, err := svc.Track(context.Background(), "CIV-2026-0000")
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeNotFound))
	})

	t.Run("blank ticket is rejected before the store", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		mockStore := mocks.NewMockStore(ctrl)
		svc := NewService(mockStore, testLogger())

		_, err := svc.Track(context.Background(), "   ")
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeValidation))
	})

	t.Run("second lookup is served from cache", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		mockStore := mocks.NewMockStore(ctrl)
		cached := newFakeCache()
		svc := NewService(mockStore, testLogger(), WithTrackerCache(cached, time.Minute))

		c := models.Complaint{
			TicketID:      "CIV-2026-4821",
			Status:        models.StatusUnderReview,
			StatusHistory: []models.StatusChange{{Status: models.StatusUnderReview}},
		}
		mockStore.EXPECT().
			FindByTicketID(gomock.Any(), "CIV-2026-4821").
			Return(c, nil).
			Times(1)

		for i := 0; i < 3; i++ {
			view, err := svc.Track(context.Background(), "CIV-2026-4821")
			require.NoError(t, err)
			assert.Equal(t, "CIV-2026-4821", view.TicketID)
		}
		assert.Equal(t, 1, cached.sets)
	})
}

func TestTransition(t *testing.T) {
	setup := func(t *testing.T) (*Service, *store.InMemoryStore, *fakeCache, *audit.MemoryPublisher, models.Complaint) {
		t.Helper()
		st := store.NewInMemoryStore()
		cached := newFakeCache()
		publisher := audit.NewMemoryPublisher()
		svc := NewService(st, testLogger(),
			WithTrackerCache(cached, time.Minute),
			WithAuditPublisher(publisher),
		)
		c, err := svc.Submit(context.Background(), validSubmit(), SubmitMeta{SubmitterID: "user-42"})
		require.NoError(t, err)
		return svc, st, cached, publisher, c
	}

	t.Run("appends history and remark atomically", func(t *testing.T) {
		svc, st, _, _, c := setup(t)

		updated, err := svc.Transition(context.Background(),
			store.Locator{InternalID: c.ID},
			models.TransitionRequest{Status: models.StatusInvestigating, Remark: "  Assigned to RPF  "},
			TransitionMeta{ActorID: "admin-1"},
		)
		require.NoError(t, err)
		assert.Equal(t, models.StatusInvestigating, updated.Status)
		require.Len(t, updated.StatusHistory, 2)
		assert.Equal(t, "admin-1", updated.StatusHistory[1].ChangedBy)
		assert.Equal(t, "Assigned to RPF", updated.StatusHistory[1].Remark)
		require.Len(t, updated.Remarks, 1)
		assert.Equal(t, "Assigned to RPF", updated.Remarks[0].Text)

		stored, err := st.FindByID(context.Background(), c.ID)
		require.NoError(t, err)
		assert.Equal(t, updated.Status, stored.StatusHistory[len(stored.StatusHistory)-1].Status)
	})

	t.Run("empty remark appends history only", func(t *testing.T) {
		svc, _, _, _, c := setup(t)

		updated, err := svc.Transition(context.Background(),
			store.Locator{TicketID: c.TicketID},
			models.TransitionRequest{Status: models.StatusRejected},
			TransitionMeta{ActorID: "admin-1"},
		)
		require.NoError(t, err)
		assert.Len(t, updated.StatusHistory, 2)
		assert.Empty(t, updated.Remarks)
	})

	t.Run("invalid status is rejected", func(t *testing.T) {
		svc, st, _, _, c := setup(t)

		_, err := svc.Transition(context.Background(),
			store.Locator{InternalID: c.ID},
			models.TransitionRequest{Status: "Escalated"},
			TransitionMeta{ActorID: "admin-1"},
		)
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeValidation))
		assert.Equal(t, "Invalid status value.", err.Error())

		// Rejected input leaves no partial write behind.
		stored, err := st.FindByID(context.Background(), c.ID)
		require.NoError(t, err)
		assert.Len(t, stored.StatusHistory, 1)
	})

	t.Run("unknown complaint is not found", func(t *testing.T) {
		svc, _, _, _, _ := setup(t)

		_, err := svc.Transition(context.Background(),
			store.Locator{TicketID: "CIV-2026-0000"},
			models.TransitionRequest{Status: models.StatusResolved},
			TransitionMeta{ActorID: "admin-1"},
		)
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeNotFound))
	})

	t.Run("invalidates the tracker cache", func(t *testing.T) {
		svc, _, cached, _, c := setup(t)

		_, err := svc.Track(context.Background(), c.TicketID)
		require.NoError(t, err)
		require.Contains(t, cached.entries, c.TicketID)

		_, err = svc.Transition(context.Background(),
			store.Locator{InternalID: c.ID},
			models.TransitionRequest{Status: models.StatusActionTaken},
			TransitionMeta{ActorID: "admin-1"},
		)
		require.NoError(t, err)
		assert.NotContains(t, cached.entries, c.TicketID)

		view, err := svc.Track(context.Background(), c.TicketID)
		require.NoError(t, err)
		assert.Equal(t, models.StatusActionTaken, view.Status)
	})

	t.Run("emits a status_changed event with the prior status", func(t *testing.T) {
		svc, _, _, publisher, c := setup(t)

		_, err := svc.Transition(context.Background(),
			store.Locator{InternalID: c.ID},
			models.TransitionRequest{Status: models.StatusInvestigating},
			TransitionMeta{ActorID: "admin-1", RequestID: "req-9"},
		)
		require.NoError(t, err)

		events := publisher.Events()
		require.Len(t, events, 2)
		last := events[1]
		assert.Equal(t, audit.ActionStatusChanged, last.Action)
		assert.Equal(t, string(models.StatusUnderReview), last.FromStatus)
		assert.Equal(t, string(models.StatusInvestigating), last.ToStatus)
		assert.Equal(t, "admin-1", last.ActorID)
		assert.Equal(t, "req-9", last.RequestID)
	})
}

func TestDetail_ScopesByJurisdiction(t *testing.T) {
	st := store.NewInMemoryStore()
	svc := NewService(st, testLogger())
	ctx := context.Background()

	c, err := svc.Submit(ctx, validSubmit(), SubmitMeta{SubmitterID: "user-42"})
	require.NoError(t, err)

	view, err := svc.Detail(ctx, c.ID, models.TypeRailway)
	require.NoError(t, err)
	assert.Equal(t, c.TicketID, view.TicketID)

	_, err = svc.Detail(ctx, c.ID, models.TypeTraffic)
	require.Error(t, err)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeNotFound),
		"out-of-scope reads look identical to missing complaints")
}
