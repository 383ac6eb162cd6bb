package handler

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"civiceye/internal/account"
	"civiceye/internal/complaint/models"
	"civiceye/internal/complaint/service"
	"civiceye/internal/complaint/store"
	"civiceye/pkg/testutil"
)

func (f *fixture) asRailwayAdmin(t *testing.T, req *http.Request) *http.Request {
	t.Helper()
	return testutil.Authorize(t, req, f.tokens, "admin-1", string(account.RoleRailwayAdmin))
}

func TestAuthorityRouteGuards(t *testing.T) {
	f := newFixture(t)

	guarded := []struct {
		method string
		path   string
	}{
		{http.MethodGet, "/api/authority/complaints"},
		{http.MethodGet, "/api/authority/complaints/some-id"},
		{http.MethodGet, "/api/authority/analytics"},
	}

	for _, route := range guarded {
		t.Run("unauthenticated "+route.path, func(t *testing.T) {
			rr := testutil.DoRequest(f.router, testutil.NewRequest(t, route.method, route.path))
			testutil.AssertStatusAndError(t, rr, http.StatusUnauthorized, "unauthorized")
		})

		t.Run("citizen "+route.path, func(t *testing.T) {
			req := testutil.NewRequest(t, route.method, route.path)
			req = testutil.Authorize(t, req, f.tokens, "user-1", string(account.RoleCitizen))
			rr := testutil.DoRequest(f.router, req)
			testutil.AssertStatusAndError(t, rr, http.StatusForbidden, "forbidden")
		})
	}
}

func TestAuthorityList(t *testing.T) {
	t.Run("returns the queue with totals", func(t *testing.T) {
		f := newFixture(t)
		f.submitAs(t, "user-1")
		f.submitAs(t, "")
		f.submitAs(t, "user-2")

		req := f.asRailwayAdmin(t, testutil.NewRequest(t, http.MethodGet, "/api/authority/complaints"))
		rr := testutil.DoRequest(f.router, req)
		testutil.AssertStatusOK(t, rr)

		resp := testutil.UnmarshalResponse[ListResponse](t, rr)
		assert.Equal(t, 3, resp.Total)
		assert.Equal(t, 1, resp.Page)
		assert.Len(t, resp.Complaints, 3)
	})

	t.Run("pagination and status filters pass through", func(t *testing.T) {
		f := newFixture(t)
		for range 5 {
			f.submitAs(t, "user-1")
		}

		req := f.asRailwayAdmin(t, testutil.NewRequest(t, http.MethodGet,
			"/api/authority/complaints?page=2&limit=2&status=Under+Review"))
		rr := testutil.DoRequest(f.router, req)
		testutil.AssertStatusOK(t, rr)

		resp := testutil.UnmarshalResponse[ListResponse](t, rr)
		assert.Equal(t, 5, resp.Total)
		assert.Equal(t, 2, resp.Page)
		assert.Len(t, resp.Complaints, 2)
	})

	t.Run("unknown status values are ignored rather than erroring", func(t *testing.T) {
		f := newFixture(t)
		f.submitAs(t, "user-1")

		req := f.asRailwayAdmin(t, testutil.NewRequest(t, http.MethodGet,
			"/api/authority/complaints?status=bogus"))
		rr := testutil.DoRequest(f.router, req)
		testutil.AssertStatusOK(t, rr)
		assert.Equal(t, 1, testutil.UnmarshalResponse[ListResponse](t, rr).Total)
	})

	t.Run("empty queue is an empty list", func(t *testing.T) {
		f := newFixture(t)
		req := f.asRailwayAdmin(t, testutil.NewRequest(t, http.MethodGet, "/api/authority/complaints"))
		rr := testutil.DoRequest(f.router, req)
		testutil.AssertStatusOK(t, rr)

		resp := testutil.UnmarshalResponse[ListResponse](t, rr)
		assert.NotNil(t, resp.Complaints)
		assert.Empty(t, resp.Complaints)
	})
}

func TestAuthorityDetail(t *testing.T) {
	t.Run("returns the full triage view", func(t *testing.T) {
		f := newFixture(t)
		c := f.submitAs(t, "user-1")

		req := f.asRailwayAdmin(t, testutil.NewRequest(t, http.MethodGet,
			"/api/authority/complaints/"+c.ID))
		rr := testutil.DoRequest(f.router, req)
		testutil.AssertStatusOK(t, rr)

		view := testutil.UnmarshalResponse[models.AuthorityView](t, rr)
		assert.Equal(t, c.TicketID, view.TicketID)
		require.Len(t, view.StatusHistory, 1)
		assert.Equal(t, models.StatusUnderReview, view.StatusHistory[0].Status)
	})

	t.Run("a traffic admin cannot read a railway complaint", func(t *testing.T) {
		f := newFixture(t)
		c := f.submitAs(t, "user-1")

		req := testutil.NewRequest(t, http.MethodGet, "/api/authority/complaints/"+c.ID)
		req = testutil.Authorize(t, req, f.tokens, "admin-2", string(account.RoleTrafficAdmin))
		rr := testutil.DoRequest(f.router, req)
		testutil.AssertStatusAndError(t, rr, http.StatusNotFound, "not_found")
	})

	t.Run("unknown id is 404", func(t *testing.T) {
		f := newFixture(t)
		req := f.asRailwayAdmin(t, testutil.NewRequest(t, http.MethodGet,
			"/api/authority/complaints/no-such-id"))
		rr := testutil.DoRequest(f.router, req)
		testutil.AssertStatusAndError(t, rr, http.StatusNotFound, "not_found")
	})
}

func TestAuthorityTransitions(t *testing.T) {
	t.Run("patch by internal id records status and remark", func(t *testing.T) {
		f := newFixture(t)
		c := f.submitAs(t, "user-1")

		req := f.asRailwayAdmin(t, testutil.NewJSONRequest(t, http.MethodPatch,
			"/api/authority/complaints/"+c.ID+"/status",
			map[string]any{"status": "Investigating", "remark": "Assigned to RPF Delhi"}))
		rr := testutil.DoRequest(f.router, req)
		testutil.AssertStatusOK(t, rr)

		resp := testutil.UnmarshalResponse[TransitionResponse](t, rr)
		assert.Equal(t, "Status updated.", resp.Message)
		assert.Equal(t, c.TicketID, resp.TicketID)
		assert.Equal(t, models.StatusInvestigating, resp.Status)
	})

	t.Run("put by ticket id uses the legacy acknowledgement", func(t *testing.T) {
		f := newFixture(t)
		c := f.submitAs(t, "user-1")

		req := f.asRailwayAdmin(t, testutil.NewJSONRequest(t, http.MethodPut,
			"/api/reports/update-status/"+c.TicketID,
			map[string]any{"status": "Resolved"}))
		rr := testutil.DoRequest(f.router, req)
		testutil.AssertStatusOK(t, rr)

		resp := testutil.UnmarshalResponse[TransitionResponse](t, rr)
		assert.Equal(t, "Status updated successfully.", resp.Message)
		assert.Equal(t, models.StatusResolved, resp.Status)
	})

	t.Run("invalid status is rejected with the exact message", func(t *testing.T) {
		f := newFixture(t)
		c := f.submitAs(t, "user-1")

		req := f.asRailwayAdmin(t, testutil.NewJSONRequest(t, http.MethodPatch,
			"/api/authority/complaints/"+c.ID+"/status",
			map[string]any{"status": "Done"}))
		rr := testutil.DoRequest(f.router, req)
		testutil.AssertStatusAndError(t, rr, http.StatusBadRequest, "validation_failed")
		assert.Equal(t, "Invalid status value.",
			testutil.UnmarshalErrorResponse(t, rr)["error_description"])
	})

	t.Run("transition on an unknown ticket is 404", func(t *testing.T) {
		f := newFixture(t)
		req := f.asRailwayAdmin(t, testutil.NewJSONRequest(t, http.MethodPut,
			"/api/reports/update-status/CIV-2026-0000",
			map[string]any{"status": "Resolved"}))
		rr := testutil.DoRequest(f.router, req)
		testutil.AssertStatusAndError(t, rr, http.StatusNotFound, "not_found")
	})

	t.Run("transition is visible on the public tracker", func(t *testing.T) {
		f := newFixture(t)
		c := f.submitAs(t, "user-1")

		req := f.asRailwayAdmin(t, testutil.NewJSONRequest(t, http.MethodPatch,
			"/api/authority/complaints/"+c.ID+"/status",
			map[string]any{"status": "Action Taken"}))
		testutil.AssertStatusOK(t, testutil.DoRequest(f.router, req))

		rr := testutil.DoRequest(f.router,
			testutil.NewRequest(t, http.MethodGet, "/api/complaints/track/"+c.TicketID))
		testutil.AssertStatusOK(t, rr)
		assert.Equal(t, models.StatusActionTaken,
			testutil.UnmarshalResponse[models.TrackerView](t, rr).Status)
	})
}

func TestAuthorityAnalytics(t *testing.T) {
	f := newFixture(t)
	c := f.submitAs(t, "user-1")
	f.submitAs(t, "user-2")

	_, err := f.service.Transition(context.Background(),
		store.Locator{TicketID: c.TicketID},
		models.TransitionRequest{Status: models.StatusResolved},
		service.TransitionMeta{ActorID: "admin-1"})
	require.NoError(t, err)

	req := f.asRailwayAdmin(t, testutil.NewRequest(t, http.MethodGet, "/api/authority/analytics"))
	rr := testutil.DoRequest(f.router, req)
	testutil.AssertStatusOK(t, rr)

	summary := testutil.UnmarshalResponse[models.AnalyticsSummary](t, rr)
	assert.Equal(t, 2, summary.Total)
	assert.Equal(t, 1, summary.ByStatus[models.StatusUnderReview])
	assert.Equal(t, 1, summary.ByStatus[models.StatusResolved])
	assert.NotEmpty(t, summary.DailyTrend)
}
