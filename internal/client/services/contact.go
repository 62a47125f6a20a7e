package services

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/notelinkapp/notelink/internal/client/client"
	"github.com/notelinkapp/notelink/internal/client/models"
	"github.com/notelinkapp/notelink/internal/client/repositories/contacts"
	"github.com/notelinkapp/notelink/internal/phonehash"
)

// ContactService keeps the local contact cache in step with the server and
// lets UI code observe it.
//
// Contract:
//   - RefreshContacts: fetch the server-side list, swap the cache, notify
//     observers. A failed fetch leaves the cache untouched.
//   - CachedContacts: read the local cache without touching the network.
//   - ObserveContacts: subscribe to cache snapshots. Every committed cache
//     write produces one snapshot, delivered to each subscriber in commit
//     order. Slow subscribers never block writers.
//   - FindUsersFromPhoneContacts: match raw phone numbers against registered
//     users. Numbers are hashed locally; raw numbers never go on the wire.
type ContactService interface {
	RefreshContacts(ctx context.Context) ([]*models.Contact, error)
	CachedContacts(ctx context.Context) ([]*models.Contact, error)
	ObserveContacts() (<-chan []*models.Contact, func())
	FindUsersFromPhoneContacts(ctx context.Context, phones []string) ([]*client.User, error)
	AddContact(ctx context.Context, userID string) (*models.Contact, error)
	RemoveContact(ctx context.Context, userID string) error
	GetInviteLink(ctx context.Context) (string, error)
	AcceptInvite(ctx context.Context, link string) (*models.Contact, error)
	GetUser(ctx context.Context, id string) (*client.User, error)
}

type contactService struct {
	client   client.Client
	repo     contacts.Repository
	hasher   phonehash.Strategy
	sessions SessionInvalidator

	// writeMu serializes cache writes so published snapshots follow commit
	// order.
	writeMu sync.Mutex

	subMu sync.Mutex
	subs  map[int]*subscriber
	nxt   int
}

// NewContactService constructs a ContactService over the API client, the
// local contact cache, and the phone hashing strategy. Unauthorized server
// responses are reported to sessions, which drops the stored token.
func NewContactService(apiClient client.Client, repo contacts.Repository, hasher phonehash.Strategy, sessions SessionInvalidator) ContactService {
	return &contactService{
		client:   apiClient,
		repo:     repo,
		hasher:   hasher,
		sessions: sessions,
		subs:     make(map[int]*subscriber),
	}
}

// subscriber decouples publishers from consumers: snapshots land in an
// unbounded queue under the subscriber's lock, and a drain goroutine feeds
// them to the outbound channel at the consumer's pace.
type subscriber struct {
	mu     sync.Mutex
	queue  [][]*models.Contact
	signal chan struct{}
	out    chan []*models.Contact
	done   chan struct{}
}

func newSubscriber() *subscriber {
	s := &subscriber{
		signal: make(chan struct{}, 1),
		out:    make(chan []*models.Contact),
		done:   make(chan struct{}),
	}
	go s.drain()
	return s
}

func (s *subscriber) push(snapshot []*models.Contact) {
	s.mu.Lock()
	s.queue = append(s.queue, snapshot)
	s.mu.Unlock()

	select {
	case s.signal <- struct{}{}:
	default:
	}
}

func (s *subscriber) drain() {
	defer close(s.out)
	for {
		s.mu.Lock()
		queue := s.queue
		s.queue = nil
		s.mu.Unlock()

		for _, snapshot := range queue {
			select {
			case s.out <- snapshot:
			case <-s.done:
				return
			}
		}

		select {
		case <-s.signal:
		case <-s.done:
			return
		}
	}
}

// ObserveContacts returns a channel of cache snapshots and a cancel
// function. The channel is closed after cancellation.
func (c *contactService) ObserveContacts() (<-chan []*models.Contact, func()) {
	sub := newSubscriber()

	c.subMu.Lock()
	id := c.nxt
	c.nxt++
	c.subs[id] = sub
	c.subMu.Unlock()

	cancel := func() {
		c.subMu.Lock()
		if _, ok := c.subs[id]; ok {
			delete(c.subs, id)
			close(sub.done)
		}
		c.subMu.Unlock()
	}
	return sub.out, cancel
}

// publish fans the snapshot out to every subscriber. Callers hold writeMu,
// so snapshots enter each subscriber's queue in commit order.
func (c *contactService) publish(snapshot []*models.Contact) {
	c.subMu.Lock()
	defer c.subMu.Unlock()
	for _, sub := range c.subs {
		sub.push(snapshot)
	}
}

// commitAndPublish applies a cache mutation and publishes the resulting
// snapshot, all under the write lock.
func (c *contactService) commitAndPublish(ctx context.Context, mutate func(ctx context.Context) error) error {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()

	if err := mutate(ctx); err != nil {
		return err
	}

	snapshot, err := c.repo.List(ctx)
	if err != nil {
		return fmt.Errorf("cache read error: %w", err)
	}
	c.publish(snapshot)
	return nil
}

func toContactModel(ct *client.Contact) *models.Contact {
	return &models.Contact{AccountID: ct.ID, Username: ct.Username, Mutual: ct.Mutual, AddedAt: ct.AddedAt}
}

// RefreshContacts fetches the authoritative contact list and swaps the local
// cache. When the fetch fails, cached data stays as is and the error is
// returned, so offline reads keep working.
func (c *contactService) RefreshContacts(ctx context.Context) ([]*models.Contact, error) {
	remote, err := c.client.ListContacts(ctx)
	if err != nil {
		dropSessionOnAuthError(ctx, c.sessions, err)
		return nil, fmt.Errorf("contact list error: %w", err)
	}

	fresh := make([]*models.Contact, 0, len(remote))
	for _, ct := range remote {
		fresh = append(fresh, toContactModel(ct))
	}

	err = c.commitAndPublish(ctx, func(ctx context.Context) error {
		return c.repo.ReplaceAll(ctx, fresh)
	})
	if err != nil {
		return nil, err
	}
	return fresh, nil
}

func (c *contactService) CachedContacts(ctx context.Context) ([]*models.Contact, error) {
	return c.repo.List(ctx)
}

// FindUsersFromPhoneContacts hashes the given phone numbers and asks the
// server which of them belong to registered users. Numbers that fail
// normalization are skipped rather than failing the whole match.
func (c *contactService) FindUsersFromPhoneContacts(ctx context.Context, phones []string) ([]*client.User, error) {
	hashes := make([]string, 0, len(phones))
	for _, phone := range phones {
		hash, err := c.hasher.Hash(phone)
		if err != nil {
			continue
		}
		hashes = append(hashes, hash)
	}
	if len(hashes) == 0 {
		return []*client.User{}, nil
	}

	users, err := c.client.MatchContacts(ctx, hashes)
	if err != nil {
		dropSessionOnAuthError(ctx, c.sessions, err)
		return nil, fmt.Errorf("contact match error: %w", err)
	}
	return users, nil
}

func (c *contactService) AddContact(ctx context.Context, userID string) (*models.Contact, error) {
	added, err := c.client.AddContact(ctx, userID)
	if err != nil {
		dropSessionOnAuthError(ctx, c.sessions, err)
		return nil, fmt.Errorf("add contact error: %w", err)
	}

	contact := toContactModel(added)
	err = c.commitAndPublish(ctx, func(ctx context.Context) error {
		return c.repo.Upsert(ctx, contact)
	})
	if err != nil {
		return nil, err
	}
	return contact, nil
}

func (c *contactService) RemoveContact(ctx context.Context, userID string) error {
	if err := c.client.RemoveContact(ctx, userID); err != nil {
		dropSessionOnAuthError(ctx, c.sessions, err)
		return fmt.Errorf("remove contact error: %w", err)
	}

	return c.commitAndPublish(ctx, func(ctx context.Context) error {
		return c.repo.Delete(ctx, userID)
	})
}

func (c *contactService) GetInviteLink(ctx context.Context) (string, error) {
	link, err := c.client.GetInviteLink(ctx)
	if err != nil {
		dropSessionOnAuthError(ctx, c.sessions, err)
		return "", fmt.Errorf("invite link error: %w", err)
	}
	return link, nil
}

// AcceptInvite accepts an invite link (or a bare token pasted from one) and
// caches the resulting contact.
func (c *contactService) AcceptInvite(ctx context.Context, link string) (*models.Contact, error) {
	token := link
	if idx := strings.LastIndex(link, "/"); idx >= 0 {
		token = link[idx+1:]
	}

	added, err := c.client.AcceptInvite(ctx, token)
	if err != nil {
		dropSessionOnAuthError(ctx, c.sessions, err)
		return nil, fmt.Errorf("invite accept error: %w", err)
	}

	contact := toContactModel(added)
	err = c.commitAndPublish(ctx, func(ctx context.Context) error {
		return c.repo.Upsert(ctx, contact)
	})
	if err != nil {
		return nil, err
	}
	return contact, nil
}

// GetUser fetches a user profile from the server. When the user is already a
// cached contact, the cached entry is refreshed so stale usernames heal on
// profile views. Users outside the contact list never enter the cache, so
// listings stay clean.
func (c *contactService) GetUser(ctx context.Context, id string) (*client.User, error) {
	user, err := c.client.GetUser(ctx, id)
	if err != nil {
		dropSessionOnAuthError(ctx, c.sessions, err)
		return nil, fmt.Errorf("user fetch error: %w", err)
	}

	cached, err := c.repo.Get(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("cache read error: %w", err)
	}
	if cached != nil && cached.Username != user.Username {
		cached.Username = user.Username
		err = c.commitAndPublish(ctx, func(ctx context.Context) error {
			return c.repo.Upsert(ctx, cached)
		})
		if err != nil {
			return nil, err
		}
	}
	return user, nil
}
