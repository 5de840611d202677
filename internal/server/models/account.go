// Package models holds the server-side domain types shared by the store,
// the auth workflow and the transport.
package models

import "time"

// Account is a registered user as persisted by the credential store.
type Account struct {
	ID           string
	Email        string
	PasswordHash string
	IsAdmin      bool
	CreatedAt    time.Time
}

// UserProjection is the part of an Account that may leave the server.
type UserProjection struct {
	ID      string `json:"_id"`
	Email   string `json:"email"`
	IsAdmin bool   `json:"isAdmin"`
}

// Project strips everything but the public fields from a.
func Project(a *Account) UserProjection {
	return UserProjection{
		ID:      a.ID,
		Email:   a.Email,
		IsAdmin: a.IsAdmin,
	}
}
