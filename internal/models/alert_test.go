package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestAlertIsLive(t *testing.T) {
	start := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	expiry := start.Add(24 * time.Hour)
	alert := Alert{Status: AlertActive, StartTime: start, ExpiryTime: expiry}

	tests := []struct {
		name string
		at   time.Time
		want bool
	}{
		{"before window", start.Add(-time.Second), false},
		{"at start", start, true},
		{"inside window", start.Add(12 * time.Hour), true},
		{"at expiry", expiry, true},
		{"after expiry", expiry.Add(time.Second), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, alert.IsLive(tt.at))
		})
	}

	t.Run("archived is never live", func(t *testing.T) {
		archived := alert
		archived.Status = AlertArchived
		require.False(t, archived.IsLive(start.Add(time.Hour)))
	})
}

func TestAlertAudienceContains(t *testing.T) {
	alice := User{ID: 1, TeamID: 1}
	bob := User{ID: 2, TeamID: 1}
	charlie := User{ID: 3, TeamID: 2}

	t.Run("org wide reaches everyone regardless of sets", func(t *testing.T) {
		alert := Alert{OrgWide: true, TeamIDs: nil, UserIDs: nil}
		for _, u := range []User{alice, bob, charlie} {
			require.True(t, alert.AudienceContains(u))
		}
	})

	t.Run("team targeting", func(t *testing.T) {
		alert := Alert{TeamIDs: []int64{1}}
		require.True(t, alert.AudienceContains(alice))
		require.True(t, alert.AudienceContains(bob))
		require.False(t, alert.AudienceContains(charlie))
	})

	t.Run("user targeting overrides team mismatch", func(t *testing.T) {
		alert := Alert{TeamIDs: []int64{1}, UserIDs: []int64{3}}
		require.True(t, alert.AudienceContains(charlie))
	})

	t.Run("empty visibility reaches nobody", func(t *testing.T) {
		alert := Alert{}
		require.False(t, alert.AudienceContains(alice))
		require.False(t, alert.HasAudience())
	})
}

func TestParseEnums(t *testing.T) {
	sev, err := ParseSeverity("Critical")
	require.NoError(t, err)
	require.Equal(t, SeverityCritical, sev)
	_, err = ParseSeverity("critical")
	require.Error(t, err)

	dt, err := ParseDeliveryType("SMS")
	require.NoError(t, err)
	require.Equal(t, DeliverySMS, dt)
	_, err = ParseDeliveryType("Pigeon")
	require.Error(t, err)

	st, err := ParseAlertStatus("Archived")
	require.NoError(t, err)
	require.Equal(t, AlertArchived, st)
	_, err = ParseAlertStatus("Deleted")
	require.Error(t, err)
}
