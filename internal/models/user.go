package models

import "time"

type Role string

const (
	RoleCitizen  Role = "citizen"
	RoleOfficial Role = "official"
)

// User is a registered account. Citizens submit litter and cleanup reports,
// officials verify completed cleanups.
type User struct {
	ID           int64     `db:"id"`
	Username     string    `db:"username"`
	Email        string    `db:"email"`
	PasswordHash string    `db:"password_hash"`
	Role         Role      `db:"role"`
	CreatedAt    time.Time `db:"created_at"`
}

// IsOfficial reports whether the user may verify cleanups.
func (u User) IsOfficial() bool {
	return u.Role == RoleOfficial
}
