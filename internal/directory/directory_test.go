package directory

import (
	"testing"

	"github.com/heraldhq/herald-api/internal/models"
	"github.com/stretchr/testify/require"
)

func TestDirectoryLookups(t *testing.T) {
	d := New(
		[]models.Team{{ID: 1, Name: "Engineering"}, {ID: 2, Name: "Marketing"}},
		[]models.User{
			{ID: 3, Name: "Charlie", TeamID: 2},
			{ID: 1, Name: "Alice", TeamID: 1},
			{ID: 2, Name: "Bob", TeamID: 1},
		},
	)

	alice, ok := d.User(1)
	require.True(t, ok)
	require.Equal(t, "Alice", alice.Name)
	require.Equal(t, int64(1), alice.TeamID)

	_, ok = d.User(99)
	require.False(t, ok)

	eng, ok := d.Team(1)
	require.True(t, ok)
	require.Equal(t, "Engineering", eng.Name)

	_, ok = d.Team(99)
	require.False(t, ok)
}

func TestDirectoryUsersOrderedByID(t *testing.T) {
	d := New(nil, []models.User{
		{ID: 3, Name: "Charlie", TeamID: 2},
		{ID: 1, Name: "Alice", TeamID: 1},
		{ID: 2, Name: "Bob", TeamID: 1},
	})

	users := d.Users()
	require.Len(t, users, 3)
	require.Equal(t, []string{"Alice", "Bob", "Charlie"}, []string{users[0].Name, users[1].Name, users[2].Name})
	require.Equal(t, 3, d.Size())
}

func TestDirectoryDuplicateUserIDsKeepFirst(t *testing.T) {
	d := New(nil, []models.User{
		{ID: 1, Name: "Alice", TeamID: 1},
		{ID: 1, Name: "Impostor", TeamID: 2},
	})

	u, ok := d.User(1)
	require.True(t, ok)
	require.Equal(t, "Alice", u.Name)
	require.Equal(t, 1, d.Size())
}
