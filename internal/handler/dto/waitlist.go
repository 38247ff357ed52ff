package dto

import "github.com/envis/envis/internal/model"

// JoinWaitlistRequest is the body of POST /api/waitlist.
type JoinWaitlistRequest struct {
	Name       string  `json:"name" validate:"required,min=2,max=100"`
	Email      string  `json:"email" validate:"required,email,max=254"`
	FamilySize string  `json:"familySize" validate:"required,family_size"`
	Interests  *string `json:"interests" validate:"omitnil,max=1000"`
}

// WaitlistEntrySummary is the part of an entry echoed back to the signer.
type WaitlistEntrySummary struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Name  string `json:"name"`
}

// JoinWaitlistResponse is returned on a successful signup.
type JoinWaitlistResponse struct {
	Success bool                 `json:"success"`
	Message string               `json:"message"`
	Entry   WaitlistEntrySummary `json:"entry"`
}

// WaitlistListResponse is the admin listing.
type WaitlistListResponse struct {
	Entries []*model.WaitlistEntry `json:"entries"`
}

// ToJoinWaitlistResponse builds the signup response.
func ToJoinWaitlistResponse(entry *model.WaitlistEntry) *JoinWaitlistResponse {
	return &JoinWaitlistResponse{
		Success: true,
		Message: "Successfully added to waitlist",
		Entry: WaitlistEntrySummary{
			ID:    entry.ID,
			Email: entry.Email,
			Name:  entry.Name,
		},
	}
}

// ToWaitlistListResponse wraps entries; a nil slice renders as [].
func ToWaitlistListResponse(entries []*model.WaitlistEntry) *WaitlistListResponse {
	if entries == nil {
		entries = []*model.WaitlistEntry{}
	}
	return &WaitlistListResponse{Entries: entries}
}
