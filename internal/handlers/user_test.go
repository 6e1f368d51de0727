package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/heraldhq/herald-api/internal/catalog"
	"github.com/heraldhq/herald-api/internal/directory"
	"github.com/heraldhq/herald-api/internal/models"
	"github.com/heraldhq/herald-api/internal/preference"
	"github.com/heraldhq/herald-api/internal/repository"
)

func newUserHandler(t *testing.T) (*UserHandler, catalog.Service, preference.Service) {
	t.Helper()
	logger := zerolog.Nop()
	cat := catalog.NewService(repository.NewMemoryAlertRepository(), logger)
	prefs := preference.NewService(repository.NewMemoryPreferenceRepository(), logger)
	dir := directory.New(
		[]models.Team{{ID: 1, Name: "Engineering"}, {ID: 2, Name: "Marketing"}},
		[]models.User{
			{ID: 1, Name: "Alice", TeamID: 1},
			{ID: 2, Name: "Bob", TeamID: 1},
			{ID: 3, Name: "Charlie", TeamID: 2},
		},
	)
	return NewUserHandler(dir, cat, prefs, logger), cat, prefs
}

func feedIDs(t *testing.T, h *UserHandler, userID string) []int64 {
	t.Helper()
	w := invoke(h.ListAlerts, http.MethodGet, "/user/"+userID+"/alerts", map[string]string{"userID": userID}, "")
	require.Equal(t, http.StatusOK, w.Code)
	var alerts []alertResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &alerts))
	ids := make([]int64, 0, len(alerts))
	for _, a := range alerts {
		ids = append(ids, a.ID)
	}
	return ids
}

func TestUserFeedFiltersByAudience(t *testing.T) {
	h, cat, _ := newUserHandler(t)

	orgWide := seedAlert(t, cat, catalog.CreateParams{Title: "org", OrgWide: true})
	teamOne := seedAlert(t, cat, catalog.CreateParams{Title: "eng only", TeamIDs: []int64{1}})
	charlieOnly := seedAlert(t, cat, catalog.CreateParams{Title: "charlie", UserIDs: []int64{3}})
	archived := seedAlert(t, cat, catalog.CreateParams{Title: "old", OrgWide: true})
	require.NoError(t, cat.Archive(context.Background(), archived.ID))

	require.Equal(t, []int64{orgWide.ID, teamOne.ID}, feedIDs(t, h, "1"))
	require.Equal(t, []int64{orgWide.ID, teamOne.ID}, feedIDs(t, h, "2"))
	require.Equal(t, []int64{orgWide.ID, charlieOnly.ID}, feedIDs(t, h, "3"))
}

func TestUserFeedIgnoresTimeWindow(t *testing.T) {
	h, cat, _ := newUserHandler(t)

	// An alert whose window is entirely in the past still shows up in the
	// feed; only the dispatcher applies liveness.
	past := time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)
	expired := seedAlert(t, cat, catalog.CreateParams{
		Title:      "long gone",
		StartTime:  past,
		ExpiryTime: past.Add(time.Hour),
		OrgWide:    true,
	})

	require.Equal(t, []int64{expired.ID}, feedIDs(t, h, "1"))
}

func TestUserFeedUnknownUser(t *testing.T) {
	h, _, _ := newUserHandler(t)

	w := invoke(h.ListAlerts, http.MethodGet, "/user/99/alerts", map[string]string{"userID": "99"}, "")
	require.Equal(t, http.StatusNotFound, w.Code)
	require.Contains(t, w.Body.String(), "User not found")

	w = invoke(h.ListAlerts, http.MethodGet, "/user/abc/alerts", map[string]string{"userID": "abc"}, "")
	require.Equal(t, http.StatusBadRequest, w.Code)
}

func TestSnoozeAlert(t *testing.T) {
	h, _, prefs := newUserHandler(t)

	w := invoke(h.Snooze, http.MethodPost, "/user/snooze", nil, `{"user_id": 1, "alert_id": 5}`)
	require.Equal(t, http.StatusOK, w.Code)
	require.JSONEq(t, `{"message": "Alert snoozed for today"}`, w.Body.String())

	snoozed, err := prefs.IsSnoozed(context.Background(), 1, 5, time.Now())
	require.NoError(t, err)
	require.True(t, snoozed)
}

func TestMarkReadAndUnread(t *testing.T) {
	h, _, prefs := newUserHandler(t)

	w := invoke(h.MarkRead, http.MethodPost, "/user/mark_read", nil, `{"user_id": 2, "alert_id": 7}`)
	require.Equal(t, http.StatusOK, w.Code)
	require.JSONEq(t, `{"message": "Alert marked as read"}`, w.Body.String())

	pref, err := prefs.Get(context.Background(), 2, 7)
	require.NoError(t, err)
	require.Equal(t, models.StateRead, pref.State)

	w = invoke(h.MarkUnread, http.MethodPost, "/user/mark_unread", nil, `{"user_id": 2, "alert_id": 7}`)
	require.Equal(t, http.StatusOK, w.Code)
	require.JSONEq(t, `{"message": "Alert marked as unread"}`, w.Body.String())

	pref, err = prefs.Get(context.Background(), 2, 7)
	require.NoError(t, err)
	require.Equal(t, models.StateUnread, pref.State)
}

func TestUserActionValidation(t *testing.T) {
	h, _, _ := newUserHandler(t)

	cases := []struct {
		name string
		body string
	}{
		{"malformed json", `{"user_id": }`},
		{"missing user", `{"alert_id": 5}`},
		{"missing alert", `{"user_id": 1}`},
		{"negative ids", `{"user_id": -1, "alert_id": -2}`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			w := invoke(h.Snooze, http.MethodPost, "/user/snooze", nil, tc.body)
			require.Equal(t, http.StatusBadRequest, w.Code)
		})
	}
}
