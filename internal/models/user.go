package models

// Team is a named group of users. Teams are immutable once the directory is
// loaded.
type Team struct {
	ID   int64  `json:"id" db:"id"`
	Name string `json:"name" db:"name"`
}

// User belongs to exactly one team. Email and Phone are the contact points
// consumed by the Email and SMS channels; either may be empty, in which case
// deliveries over that channel fail for this user.
type User struct {
	ID     int64  `json:"id" db:"id"`
	Name   string `json:"name" db:"name"`
	TeamID int64  `json:"team_id" db:"team_id"`
	Email  string `json:"email,omitempty" db:"email"`
	Phone  string `json:"phone,omitempty" db:"phone"`
}
