package repository

import (
	"context"
	"database/sql"

	"github.com/pkg/errors"

	"github.com/heraldhq/herald-api/internal/models"
)

// DirectoryRepository reads the user and team rosters. The directory is
// treated as immutable while the service runs, so these are only called once
// at startup to build the in-memory snapshot.
type DirectoryRepository interface {
	ListTeams(ctx context.Context) ([]models.Team, error)
	ListUsers(ctx context.Context) ([]models.User, error)
}

type directoryRepository struct {
	db *sql.DB
}

func NewDirectoryRepository(db *sql.DB) DirectoryRepository {
	return &directoryRepository{db: db}
}

func (r *directoryRepository) ListTeams(ctx context.Context) ([]models.Team, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT id, name FROM teams ORDER BY id`)
	if err != nil {
		return nil, errors.Wrap(err, "list teams")
	}
	defer rows.Close()

	var teams []models.Team
	for rows.Next() {
		var team models.Team
		if err := rows.Scan(&team.ID, &team.Name); err != nil {
			return nil, errors.Wrap(err, "scan team")
		}
		teams = append(teams, team)
	}
	return teams, errors.Wrap(rows.Err(), "list teams")
}

func (r *directoryRepository) ListUsers(ctx context.Context) ([]models.User, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT id, name, team_id, email, phone FROM users ORDER BY id`)
	if err != nil {
		return nil, errors.Wrap(err, "list users")
	}
	defer rows.Close()

	var users []models.User
	for rows.Next() {
		var (
			user  models.User
			email sql.NullString
			phone sql.NullString
		)
		if err := rows.Scan(&user.ID, &user.Name, &user.TeamID, &email, &phone); err != nil {
			return nil, errors.Wrap(err, "scan user")
		}
		user.Email = email.String
		user.Phone = phone.String
		users = append(users, user)
	}
	return users, errors.Wrap(rows.Err(), "list users")
}
