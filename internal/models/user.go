package models

import "time"

// User represents a registered account. Password holds the bcrypt digest,
// never the plaintext.
type User struct {
	ID        int64     `json:"id"`
	First     string    `json:"first"`
	Last      string    `json:"last"`
	Email     string    `json:"email"`
	Password  string    `json:"password"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Profile is the public view of a user.
type Profile struct {
	ID    int64  `json:"id"`
	First string `json:"first"`
	Last  string `json:"last"`
	Email string `json:"email"`
}

// Profile strips the digest and timestamps from the user.
func (u User) Profile() Profile {
	return Profile{ID: u.ID, First: u.First, Last: u.Last, Email: u.Email}
}
