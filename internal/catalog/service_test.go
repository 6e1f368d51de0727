package catalog

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/heraldhq/herald-api/internal/models"
	"github.com/heraldhq/herald-api/internal/repository"
)

func newService() Service {
	return NewService(repository.NewMemoryAlertRepository(), zerolog.Nop())
}

func validParams(now time.Time) CreateParams {
	return CreateParams{
		Title:            "Cert expiry",
		Message:          "TLS cert for api.example.com expires soon",
		Severity:         models.SeverityWarning,
		DeliveryType:     models.DeliveryInApp,
		StartTime:        now,
		ExpiryTime:       now.Add(24 * time.Hour),
		RemindersEnabled: true,
		OrgWide:          true,
	}
}

func TestCreateAppliesDefaults(t *testing.T) {
	svc := newService()
	now := time.Now()

	params := validParams(now)
	params.DeliveryType = ""
	params.ReminderFrequency = 0

	alert, err := svc.Create(context.Background(), params)
	require.NoError(t, err)
	require.Equal(t, int64(1), alert.ID)
	require.Equal(t, models.DeliveryInApp, alert.DeliveryType)
	require.Equal(t, models.DefaultReminderFrequency, alert.ReminderFrequency)
	require.Equal(t, models.AlertActive, alert.Status)
}

func TestCreateRejectsInvertedWindow(t *testing.T) {
	svc := newService()
	now := time.Now()

	params := validParams(now)
	params.StartTime = now.Add(time.Hour)
	params.ExpiryTime = now

	_, err := svc.Create(context.Background(), params)
	require.ErrorIs(t, err, ErrInvalidAlertSpec)
}

func TestCreateRejectsEmptyAudience(t *testing.T) {
	svc := newService()
	now := time.Now()

	params := validParams(now)
	params.OrgWide = false
	params.TeamIDs = nil
	params.UserIDs = nil

	_, err := svc.Create(context.Background(), params)
	require.ErrorIs(t, err, ErrInvalidAlertSpec)
}

func TestCreateRejectsMissingRequiredFields(t *testing.T) {
	svc := newService()
	now := time.Now()

	cases := []struct {
		name   string
		mutate func(*CreateParams)
	}{
		{"blank title", func(p *CreateParams) { p.Title = "   " }},
		{"zero start time", func(p *CreateParams) { p.StartTime = time.Time{} }},
		{"zero expiry time", func(p *CreateParams) { p.ExpiryTime = time.Time{} }},
		// A zero-zero window is ordered correctly, so it has to be caught
		// before the ordering check.
		{"missing window", func(p *CreateParams) { p.StartTime, p.ExpiryTime = time.Time{}, time.Time{} }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			params := validParams(now)
			tc.mutate(&params)
			_, err := svc.Create(context.Background(), params)
			require.ErrorIs(t, err, ErrInvalidAlertSpec)
		})
	}
}

func TestCreateAcceptsInstantWindow(t *testing.T) {
	svc := newService()
	now := time.Now()

	params := validParams(now)
	params.ExpiryTime = params.StartTime

	_, err := svc.Create(context.Background(), params)
	require.NoError(t, err)
}

func TestCreateAcceptsTeamOnlyAudience(t *testing.T) {
	svc := newService()
	now := time.Now()

	params := validParams(now)
	params.OrgWide = false
	params.TeamIDs = []int64{1}

	alert, err := svc.Create(context.Background(), params)
	require.NoError(t, err)
	require.False(t, alert.OrgWide)
	require.Equal(t, []int64{1}, alert.TeamIDs)
}

func TestUpdateUnknownAlert(t *testing.T) {
	svc := newService()
	title := "nope"
	_, err := svc.Update(context.Background(), 42, repository.AlertUpdate{Title: &title})
	require.ErrorIs(t, err, ErrNotFound)
}

func TestUpdateRejectsInvertedWindowUpFront(t *testing.T) {
	svc := newService()
	now := time.Now()

	alert, err := svc.Create(context.Background(), validParams(now))
	require.NoError(t, err)

	start := now.Add(2 * time.Hour)
	expiry := now.Add(time.Hour)
	_, err = svc.Update(context.Background(), alert.ID, repository.AlertUpdate{StartTime: &start, ExpiryTime: &expiry})
	require.ErrorIs(t, err, ErrInvalidAlertSpec)
}

func TestUpdateRejectsWindowInvertedAgainstStoredBound(t *testing.T) {
	svc := newService()
	now := time.Now()

	alert, err := svc.Create(context.Background(), validParams(now))
	require.NoError(t, err)

	// New start beyond the stored expiry.
	start := now.Add(48 * time.Hour)
	_, err = svc.Update(context.Background(), alert.ID, repository.AlertUpdate{StartTime: &start})
	require.ErrorIs(t, err, ErrInvalidAlertSpec)
}

func TestUpdateChangesOnlyRequestedFields(t *testing.T) {
	svc := newService()
	ctx := context.Background()
	now := time.Now()

	alert, err := svc.Create(ctx, validParams(now))
	require.NoError(t, err)

	enabled := false
	freq := 30 * time.Minute
	updated, err := svc.Update(ctx, alert.ID, repository.AlertUpdate{RemindersEnabled: &enabled, ReminderFrequency: &freq})
	require.NoError(t, err)
	require.False(t, updated.RemindersEnabled)
	require.Equal(t, freq, updated.ReminderFrequency)
	require.Equal(t, alert.Title, updated.Title)
	require.Equal(t, alert.DeliveryType, updated.DeliveryType)
	require.Equal(t, alert.Status, updated.Status)
}

func TestArchiveThenListByStatus(t *testing.T) {
	svc := newService()
	ctx := context.Background()
	now := time.Now()

	first, err := svc.Create(ctx, validParams(now))
	require.NoError(t, err)
	second, err := svc.Create(ctx, validParams(now))
	require.NoError(t, err)

	require.NoError(t, svc.Archive(ctx, first.ID))
	require.NoError(t, svc.Archive(ctx, first.ID))

	status := models.AlertActive
	active, err := svc.List(ctx, repository.AlertFilter{Status: &status})
	require.NoError(t, err)
	require.Len(t, active, 1)
	require.Equal(t, second.ID, active[0].ID)

	got, err := svc.Get(ctx, first.ID)
	require.NoError(t, err)
	require.Equal(t, models.AlertArchived, got.Status)
}

func TestListInsertionOrder(t *testing.T) {
	svc := newService()
	ctx := context.Background()
	now := time.Now()

	for i := 0; i < 3; i++ {
		_, err := svc.Create(ctx, validParams(now))
		require.NoError(t, err)
	}

	alerts, err := svc.List(ctx, repository.AlertFilter{})
	require.NoError(t, err)
	require.Len(t, alerts, 3)
	require.Equal(t, []int64{1, 2, 3}, []int64{alerts[0].ID, alerts[1].ID, alerts[2].ID})
}
