package model

import "time"

// Family sizes offered by the signup form.
const (
	FamilySize1     = "1"
	FamilySize2     = "2"
	FamilySize3     = "3"
	FamilySize4     = "4"
	FamilySize5Plus = "5+"
)

// FamilySizes lists the accepted familySize values.
var FamilySizes = []string{FamilySize1, FamilySize2, FamilySize3, FamilySize4, FamilySize5Plus}

// WaitlistEntry is one prospective customer's signup. Entries are created
// once per email and never updated.
type WaitlistEntry struct {
	ID         string    `json:"id"`
	Name       string    `json:"name"`
	Email      string    `json:"email"`
	FamilySize string    `json:"familySize"`
	Interests  *string   `json:"interests"`
	CreatedAt  time.Time `json:"createdAt"`
}
