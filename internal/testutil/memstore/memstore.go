// Package memstore provides in-memory implementations of the persistence
// interfaces for unit tests. Uniqueness and not-found semantics mirror the
// PostgreSQL repository.
package memstore

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/envis/envis/internal/model"
	"github.com/envis/envis/internal/repository"
)

// Store is an in-memory waitlist and blog store.
type Store struct {
	mu      sync.Mutex
	now     func() time.Time
	entries map[string]*model.WaitlistEntry // by email
	posts   map[string]*model.BlogPost      // by id

	// Err, when set, is returned by every method.
	Err error
	// SkipPrecheck makes lookups miss so tests can reach the constraint path.
	SkipPrecheck bool
}

// New returns an empty Store. Timestamps advance by one millisecond per
// write so ordering is deterministic.
func New() *Store {
	base := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	var tick int64
	return &Store{
		now: func() time.Time {
			tick++
			return base.Add(time.Duration(tick) * time.Millisecond)
		},
		entries: make(map[string]*model.WaitlistEntry),
		posts:   make(map[string]*model.BlogPost),
	}
}

// ---------------------------------------------------------------------------
// Waitlist
// ---------------------------------------------------------------------------

// CreateWaitlistEntry implements service.WaitlistStore.
func (s *Store) CreateWaitlistEntry(_ context.Context, entry *model.WaitlistEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return s.Err
	}
	if _, ok := s.entries[entry.Email]; ok {
		return repository.ErrEmailExists
	}
	entry.CreatedAt = s.now()
	cp := *entry
	s.entries[entry.Email] = &cp
	return nil
}

// GetWaitlistEntryByEmail implements service.WaitlistStore.
func (s *Store) GetWaitlistEntryByEmail(_ context.Context, email string) (*model.WaitlistEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return nil, s.Err
	}
	e, ok := s.entries[email]
	if !ok || s.SkipPrecheck {
		return nil, repository.ErrWaitlistEntryNotFound
	}
	cp := *e
	return &cp, nil
}

// ListWaitlistEntries implements service.WaitlistStore.
func (s *Store) ListWaitlistEntries(_ context.Context) ([]*model.WaitlistEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return nil, s.Err
	}
	out := make([]*model.WaitlistEntry, 0, len(s.entries))
	for _, e := range s.entries {
		cp := *e
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

// ---------------------------------------------------------------------------
// Blog
// ---------------------------------------------------------------------------

// CreateBlogPost implements service.BlogStore.
func (s *Store) CreateBlogPost(_ context.Context, post *model.BlogPost) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return s.Err
	}
	if s.slugTaken(post.Slug, "") {
		return repository.ErrSlugExists
	}
	now := s.now()
	post.CreatedAt, post.UpdatedAt = now, now
	cp := *post
	s.posts[post.ID] = &cp
	return nil
}

// GetBlogPostByID implements service.BlogStore.
func (s *Store) GetBlogPostByID(_ context.Context, id string) (*model.BlogPost, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return nil, s.Err
	}
	p, ok := s.posts[id]
	if !ok {
		return nil, repository.ErrBlogPostNotFound
	}
	cp := *p
	return &cp, nil
}

// GetBlogPostBySlug implements service.BlogStore.
func (s *Store) GetBlogPostBySlug(_ context.Context, slug string) (*model.BlogPost, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return nil, s.Err
	}
	if s.SkipPrecheck {
		return nil, repository.ErrBlogPostNotFound
	}
	for _, p := range s.posts {
		if p.Slug == slug {
			cp := *p
			return &cp, nil
		}
	}
	return nil, repository.ErrBlogPostNotFound
}

// ListBlogPosts implements service.BlogStore.
func (s *Store) ListBlogPosts(_ context.Context, publishedOnly bool) ([]*model.BlogPost, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return nil, s.Err
	}
	out := make([]*model.BlogPost, 0, len(s.posts))
	for _, p := range s.posts {
		if publishedOnly && !p.Published {
			continue
		}
		cp := *p
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

// UpdateBlogPost implements service.BlogStore.
func (s *Store) UpdateBlogPost(_ context.Context, id string, patch model.BlogPostPatch) (*model.BlogPost, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return nil, s.Err
	}
	p, ok := s.posts[id]
	if !ok {
		return nil, repository.ErrBlogPostNotFound
	}
	if patch.Slug != nil && s.slugTaken(*patch.Slug, id) {
		return nil, repository.ErrSlugExists
	}
	patch.Apply(p)
	p.UpdatedAt = s.now()
	cp := *p
	return &cp, nil
}

// DeleteBlogPost implements service.BlogStore.
func (s *Store) DeleteBlogPost(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return s.Err
	}
	if _, ok := s.posts[id]; !ok {
		return repository.ErrBlogPostNotFound
	}
	delete(s.posts, id)
	return nil
}

// PostCount returns the number of stored posts.
func (s *Store) PostCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.posts)
}

func (s *Store) slugTaken(slug, exceptID string) bool {
	for _, p := range s.posts {
		if p.Slug == slug && p.ID != exceptID {
			return true
		}
	}
	return false
}

// ErrUnavailable is a generic failure tests can inject through Store.Err.
var ErrUnavailable = errors.New("store unavailable")
