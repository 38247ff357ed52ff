// Package model defines domain entities for the application.
package model

import "time"

// User is an operator account. No HTTP route reads or writes users; rows are
// managed from the envisctl CLI.
type User struct {
	ID           string    `json:"id"`
	Username     string    `json:"username"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"createdAt"`
}
