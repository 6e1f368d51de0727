package ledger

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/heraldhq/herald-api/internal/repository"
)

func TestRecordThenLastDelivery(t *testing.T) {
	svc := NewService(repository.NewMemoryDeliveryRepository(), zerolog.Nop())
	ctx := context.Background()
	base := time.Date(2026, time.August, 25, 9, 0, 0, 0, time.UTC)

	_, ok, err := svc.LastDelivery(ctx, 10, 1)
	require.NoError(t, err)
	require.False(t, ok)

	require.NoError(t, svc.Record(ctx, 10, 1, base))
	require.NoError(t, svc.Record(ctx, 10, 1, base.Add(2*time.Hour)))

	last, ok, err := svc.LastDelivery(ctx, 10, 1)
	require.NoError(t, err)
	require.True(t, ok)
	require.True(t, last.Equal(base.Add(2*time.Hour)))

	count, err := svc.Count(ctx)
	require.NoError(t, err)
	require.Equal(t, 2, count)
}
