package directory

import (
	"context"
	"sort"

	"github.com/pkg/errors"

	"github.com/heraldhq/herald-api/internal/models"
	"github.com/heraldhq/herald-api/internal/repository"
)

// Directory is an immutable snapshot of the org's teams and users, loaded
// once at startup. Audience resolution and recipient lookups read from it
// without locking.
type Directory struct {
	teams map[int64]models.Team
	users map[int64]models.User
	order []int64
}

// New builds a snapshot from explicit teams and users, e.g. the configured
// seed for the in-memory driver.
func New(teams []models.Team, users []models.User) *Directory {
	d := &Directory{
		teams: make(map[int64]models.Team, len(teams)),
		users: make(map[int64]models.User, len(users)),
		order: make([]int64, 0, len(users)),
	}
	for _, t := range teams {
		d.teams[t.ID] = t
	}
	for _, u := range users {
		if _, ok := d.users[u.ID]; ok {
			continue
		}
		d.users[u.ID] = u
		d.order = append(d.order, u.ID)
	}
	sort.Slice(d.order, func(i, j int) bool { return d.order[i] < d.order[j] })
	return d
}

// Load reads the full directory from storage into a snapshot.
func Load(ctx context.Context, repo repository.DirectoryRepository) (*Directory, error) {
	teams, err := repo.ListTeams(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "load teams")
	}
	users, err := repo.ListUsers(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "load users")
	}
	return New(teams, users), nil
}

// User looks up a user by id.
func (d *Directory) User(id int64) (models.User, bool) {
	u, ok := d.users[id]
	return u, ok
}

// Team looks up a team by id.
func (d *Directory) Team(id int64) (models.Team, bool) {
	t, ok := d.teams[id]
	return t, ok
}

// Users returns every user ordered by id.
func (d *Directory) Users() []models.User {
	out := make([]models.User, 0, len(d.order))
	for _, id := range d.order {
		out = append(out, d.users[id])
	}
	return out
}

// Size reports the number of users in the snapshot.
func (d *Directory) Size() int {
	return len(d.users)
}
