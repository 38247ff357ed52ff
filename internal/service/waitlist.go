package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/envis/envis/internal/metrics"
	"github.com/envis/envis/internal/model"
	"github.com/envis/envis/internal/repository"
)

// Waitlist errors.
var (
	ErrAlreadyOnWaitlist = errors.New("email already on waitlist")
)

// WaitlistStore persists waitlist entries.
type WaitlistStore interface {
	CreateWaitlistEntry(ctx context.Context, entry *model.WaitlistEntry) error
	GetWaitlistEntryByEmail(ctx context.Context, email string) (*model.WaitlistEntry, error)
	ListWaitlistEntries(ctx context.Context) ([]*model.WaitlistEntry, error)
}

// WaitlistService handles waitlist signups.
type WaitlistService struct {
	store   WaitlistStore
	metrics metrics.Recorder
}

// NewWaitlistService creates a new WaitlistService.
func NewWaitlistService(store WaitlistStore, recorder metrics.Recorder) *WaitlistService {
	if recorder == nil {
		recorder = metrics.NewNoop()
	}
	return &WaitlistService{store: store, metrics: recorder}
}

// JoinWaitlistInput defines input for a signup. It is expected to be
// shape-validated by the caller.
type JoinWaitlistInput struct {
	Name       string
	Email      string
	FamilySize string
	Interests  *string
}

// Join creates one entry per email. A second signup with the same email
// returns ErrAlreadyOnWaitlist, whether caught by the lookup or by the
// unique constraint when two signups race.
func (s *WaitlistService) Join(ctx context.Context, input JoinWaitlistInput) (*model.WaitlistEntry, error) {
	existing, err := s.store.GetWaitlistEntryByEmail(ctx, input.Email)
	switch {
	case err == nil && existing != nil:
		s.metrics.IncWaitlistSignup(metrics.SignupDuplicate)
		return nil, ErrAlreadyOnWaitlist
	case err != nil && !errors.Is(err, repository.ErrWaitlistEntryNotFound):
		return nil, fmt.Errorf("failed to check waitlist: %w", err)
	}

	interests := input.Interests
	if interests != nil && strings.TrimSpace(*interests) == "" {
		interests = nil
	}

	entry := &model.WaitlistEntry{
		ID:         newID(),
		Name:       input.Name,
		Email:      input.Email,
		FamilySize: input.FamilySize,
		Interests:  interests,
	}

	if err := s.store.CreateWaitlistEntry(ctx, entry); err != nil {
		if errors.Is(err, repository.ErrEmailExists) {
			s.metrics.IncWaitlistSignup(metrics.SignupDuplicate)
			return nil, ErrAlreadyOnWaitlist
		}
		return nil, fmt.Errorf("failed to join waitlist: %w", err)
	}

	s.metrics.IncWaitlistSignup(metrics.SignupCreated)

	return entry, nil
}

// List returns every entry, newest first.
func (s *WaitlistService) List(ctx context.Context) ([]*model.WaitlistEntry, error) {
	entries, err := s.store.ListWaitlistEntries(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list waitlist: %w", err)
	}
	return entries, nil
}
