package model

import "time"

const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

// User is the persisted credential record. RefreshToken holds at most one
// live value; NULL means the user has no active session.
type User struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	Name         string    `json:"name"`
	PasswordHash string    `json:"-"`
	Role         string    `json:"role"`
	RefreshToken *string   `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// PublicUser is the projection returned to clients: never the password hash,
// never the refresh token.
type PublicUser struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Name  string `json:"name"`
	Role  string `json:"role"`
}

func (u User) Public() PublicUser {
	return PublicUser{ID: u.ID, Email: u.Email, Name: u.Name, Role: u.Role}
}

// Actor is the authenticated identity attached to a request after the bearer
// token has been verified and the user record loaded.
type Actor struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Name  string `json:"name"`
	Role  string `json:"role"`
}

func (u User) Actor() Actor {
	return Actor{ID: u.ID, Email: u.Email, Name: u.Name, Role: u.Role}
}

func (a Actor) IsAdmin() bool {
	return a.Role == RoleAdmin
}

// TokenPair is what the session manager hands back on login. The refresh
// token never appears in a JSON body; the HTTP layer moves it into an
// HTTP-only cookie.
type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"-"`
	TokenType    string `json:"token_type"`
	ExpiresIn    int64  `json:"expires_in"`
}

type Session struct {
	Tokens TokenPair  `json:"tokens"`
	User   PublicUser `json:"user"`
}

func ValidRole(role string) bool {
	return role == RoleUser || role == RoleAdmin
}
