package user

import "time"

const RoleUser = "user"

// User is a registered account. PasswordHash is a bcrypt hash and never
// leaves the service boundary; CreditIDs collects the ids of every loan
// the user has originated, appended with array-union semantics.
type User struct {
	ID           string    `json:"-"`
	Email        string    `json:"email"`
	FullName     string    `json:"fullName"`
	Phone        string    `json:"phone,omitempty"`
	Role         string    `json:"role"`
	PasswordHash string    `json:"passwordHash,omitempty"`
	CreditIDs    []string  `json:"creditIds"`
	CreatedAt    time.Time `json:"createdAt"`
}

// SessionUser is the safe projection handed to callers after a
// successful registration or login.
type SessionUser struct {
	ID       string `json:"id"`
	Email    string `json:"email"`
	FullName string `json:"fullName"`
	Role     string `json:"role"`
}

func (u *User) Session() SessionUser {
	return SessionUser{ID: u.ID, Email: u.Email, FullName: u.FullName, Role: u.Role}
}
