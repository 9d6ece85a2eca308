// Package servicetest provides in-memory stores for exercising the
// services and handlers without MySQL.
package servicetest

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/iliyamo/social-feed/internal/model"
	"github.com/iliyamo/social-feed/internal/queue"
	"github.com/iliyamo/social-feed/internal/repository"
)

// Store is an in-memory stand-in for MySQL that honours the same cascade
// rules as the repositories.  The row maps are exported for assertions;
// read them only while no request is in flight.
type Store struct {
	mu               sync.Mutex
	UserRows         map[string]model.User
	PostRows         map[string]model.Post
	CommentRows      map[string]model.Comment
	NotificationRows map[string]model.Notification
	TokenRows        map[string]model.RefreshToken // keyed by hash
}

func NewStore() *Store {
	return &Store{
		UserRows:         map[string]model.User{},
		PostRows:         map[string]model.Post{},
		CommentRows:      map[string]model.Comment{},
		NotificationRows: map[string]model.Notification{},
		TokenRows:        map[string]model.RefreshToken{},
	}
}

// Users, Tokens, Posts, Comments and Notifications return the repository
// views of the store.
func (m *Store) Users() Users                 { return Users{m} }
func (m *Store) Tokens() Tokens               { return Tokens{m} }
func (m *Store) Posts() Posts                 { return Posts{m} }
func (m *Store) Comments() Comments           { return Comments{m} }
func (m *Store) Notifications() Notifications { return Notifications{m} }

// SetRole changes the role of a stored user.
func (m *Store) SetRole(id string, role model.Role) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u := m.UserRows[id]
	u.Role = role
	m.UserRows[id] = u
}

func (m *Store) person(id string) *model.User {
	u := m.UserRows[id]
	u.PasswordHash = ""
	return &u
}

type Users struct{ *Store }

func (m Users) Create(_ context.Context, u *model.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, other := range m.UserRows {
		if other.Username == u.Username {
			return repository.ErrDuplicate
		}
	}
	m.UserRows[u.ID] = *u
	return nil
}

func (m Users) GetByID(_ context.Context, id string) (model.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.UserRows[id]
	if !ok {
		return model.User{}, repository.ErrNotFound
	}
	return u, nil
}

func (m Users) GetByUsername(_ context.Context, username string) (model.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.UserRows {
		if u.Username == username {
			return u, nil
		}
	}
	return model.User{}, repository.ErrNotFound
}

func (m Users) UsernameExists(ctx context.Context, username string) (bool, error) {
	_, err := m.GetByUsername(ctx, username)
	return err == nil, nil
}

func (m Users) ListAll(_ context.Context) ([]model.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []model.User{}
	for _, u := range m.UserRows {
		out = append(out, u)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Username < out[j].Username })
	return out, nil
}

func (m Users) Update(_ context.Context, u model.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for id, other := range m.UserRows {
		if id != u.ID && other.Username == u.Username {
			return repository.ErrDuplicate
		}
	}
	cur := m.UserRows[u.ID]
	cur.FirstName, cur.LastName, cur.Username = u.FirstName, u.LastName, u.Username
	m.UserRows[u.ID] = cur
	return nil
}

func (m Users) UpdatePassword(_ context.Context, id, hash string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	u := m.UserRows[id]
	u.PasswordHash = hash
	m.UserRows[id] = u
	return nil
}

func (m Users) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.UserRows[id]; !ok {
		return repository.ErrNotFound
	}
	for pid, p := range m.PostRows {
		if p.UserID == id {
			m.deletePostLocked(pid)
		}
	}
	for cid, c := range m.CommentRows {
		if c.UserID == id {
			m.deleteCommentLocked(cid)
		}
	}
	for nid, n := range m.NotificationRows {
		if n.UserID == id {
			delete(m.NotificationRows, nid)
		}
	}
	for h, t := range m.TokenRows {
		if t.UserID == id {
			delete(m.TokenRows, h)
		}
	}
	delete(m.UserRows, id)
	return nil
}

func (m Users) Hydrate(_ context.Context, u *model.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	u.Posts, u.Comments, u.RefreshTokens = []model.Post{}, []model.Comment{}, []model.RefreshToken{}
	for _, p := range m.PostRows {
		if p.UserID == u.ID {
			u.Posts = append(u.Posts, p)
		}
	}
	for _, c := range m.CommentRows {
		if c.UserID == u.ID {
			u.Comments = append(u.Comments, c)
		}
	}
	for _, t := range m.TokenRows {
		if t.UserID == u.ID {
			u.RefreshTokens = append(u.RefreshTokens, t)
		}
	}
	return nil
}

type Tokens struct{ *Store }

func (m Tokens) StoreRefresh(_ context.Context, t *model.RefreshToken) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.TokenRows[t.TokenHash] = *t
	return nil
}

func (m Tokens) ValidateRefresh(_ context.Context, hash string, now time.Time) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	t, ok := m.TokenRows[hash]
	if !ok || !t.Active(now) {
		return "", repository.ErrNotFound
	}
	return t.UserID, nil
}

func (m Tokens) RevokeByHash(_ context.Context, hash string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	t, ok := m.TokenRows[hash]
	if !ok || t.Revoked {
		return false, nil
	}
	t.Revoked = true
	m.TokenRows[hash] = t
	return true, nil
}

func (m Tokens) RevokeAllForUser(_ context.Context, userID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for h, t := range m.TokenRows {
		if t.UserID == userID {
			t.Revoked = true
			m.TokenRows[h] = t
		}
	}
	return nil
}

type Posts struct{ *Store }

func (m Posts) Create(_ context.Context, p *model.Post) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.PostRows[p.ID] = *p
	return nil
}

func (m *Store) hydratePostLocked(p model.Post) model.Post {
	p.Author = m.person(p.UserID)
	p.Comments = []model.Comment{}
	for _, c := range m.CommentRows {
		if c.PostID == p.ID {
			c.Author = m.person(c.UserID)
			p.Comments = append(p.Comments, c)
		}
	}
	return p
}

func (m Posts) GetByID(_ context.Context, id string) (model.Post, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.PostRows[id]
	if !ok {
		return model.Post{}, repository.ErrNotFound
	}
	return m.hydratePostLocked(p), nil
}

func (m Posts) ListAll(ctx context.Context) ([]model.Post, error) {
	return m.filter(func(model.Post) bool { return true }), nil
}

func (m Posts) ListByUser(ctx context.Context, userID string) ([]model.Post, error) {
	return m.filter(func(p model.Post) bool { return p.UserID == userID }), nil
}

func (m Posts) filter(keep func(model.Post) bool) []model.Post {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []model.Post{}
	for _, p := range m.PostRows {
		if keep(p) {
			out = append(out, m.hydratePostLocked(p))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out
}

func (m Posts) Update(_ context.Context, p model.Post) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cur := m.PostRows[p.ID]
	cur.Title, cur.Content = p.Title, p.Content
	m.PostRows[p.ID] = cur
	return nil
}

func (m *Store) deletePostLocked(id string) {
	for nid, n := range m.NotificationRows {
		if n.PostID == id {
			delete(m.NotificationRows, nid)
		}
	}
	for cid, c := range m.CommentRows {
		if c.PostID == id {
			delete(m.CommentRows, cid)
		}
	}
	delete(m.PostRows, id)
}

func (m Posts) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.PostRows[id]; !ok {
		return repository.ErrNotFound
	}
	m.deletePostLocked(id)
	return nil
}

type Comments struct{ *Store }

func (m Comments) Create(_ context.Context, c *model.Comment) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.PostRows[c.PostID]; !ok {
		return errors.New("foreign key violation")
	}
	m.CommentRows[c.ID] = *c
	return nil
}

func (m *Store) hydrateCommentLocked(c model.Comment) model.Comment {
	c.Author = m.person(c.UserID)
	p := m.PostRows[c.PostID]
	p.Author = m.person(p.UserID)
	c.Post = &p
	return c
}

func (m Comments) GetByID(_ context.Context, id string) (model.Comment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.CommentRows[id]
	if !ok {
		return model.Comment{}, repository.ErrNotFound
	}
	return m.hydrateCommentLocked(c), nil
}

func (m Comments) ListByUser(_ context.Context, userID string) ([]model.Comment, error) {
	return m.filter(func(c model.Comment) bool { return c.UserID == userID }), nil
}

func (m Comments) ListAll(_ context.Context) ([]model.Comment, error) {
	return m.filter(func(model.Comment) bool { return true }), nil
}

func (m Comments) filter(keep func(model.Comment) bool) []model.Comment {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []model.Comment{}
	for _, c := range m.CommentRows {
		if keep(c) {
			out = append(out, m.hydrateCommentLocked(c))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out
}

func (m Comments) Update(_ context.Context, c model.Comment) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cur := m.CommentRows[c.ID]
	cur.Message = c.Message
	m.CommentRows[c.ID] = cur
	return nil
}

func (m *Store) deleteCommentLocked(id string) {
	for nid, n := range m.NotificationRows {
		if n.CommentID == id {
			delete(m.NotificationRows, nid)
		}
	}
	delete(m.CommentRows, id)
}

func (m Comments) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.CommentRows[id]; !ok {
		return repository.ErrNotFound
	}
	m.deleteCommentLocked(id)
	return nil
}

type Notifications struct{ *Store }

func (m Notifications) Create(_ context.Context, n *model.Notification) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.NotificationRows[n.ID] = *n
	return nil
}

func (m Notifications) GetByID(_ context.Context, id string) (model.Notification, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	n, ok := m.NotificationRows[id]
	if !ok {
		return model.Notification{}, repository.ErrNotFound
	}
	return m.hydrateNotificationLocked(n), nil
}

func (m *Store) hydrateNotificationLocked(n model.Notification) model.Notification {
	n.User = m.person(n.UserID)
	p := m.PostRows[n.PostID]
	p.Author = m.person(p.UserID)
	n.Post = &p
	c := m.CommentRows[n.CommentID]
	c.Author = m.person(c.UserID)
	n.Comment = &c
	return n
}

func (m Notifications) ListByRecipient(_ context.Context, userID string) ([]model.Notification, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []model.Notification{}
	for _, n := range m.NotificationRows {
		if n.UserID == userID {
			out = append(out, m.hydrateNotificationLocked(n))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (m Notifications) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.NotificationRows[id]; !ok {
		return repository.ErrNotFound
	}
	delete(m.NotificationRows, id)
	return nil
}

func (m Notifications) DeleteByRecipient(_ context.Context, userID string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var n int64
	for id, row := range m.NotificationRows {
		if row.UserID == userID {
			delete(m.NotificationRows, id)
			n++
		}
	}
	return n, nil
}

// Publisher keeps every published event.  A non-nil Err makes every
// publish fail.
type Publisher struct {
	mu     sync.Mutex
	Events []queue.NotificationCreatedEvent
	Err    error
}

func (p *Publisher) PublishNotificationCreated(_ context.Context, ev queue.NotificationCreatedEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.Err != nil {
		return p.Err
	}
	p.Events = append(p.Events, ev)
	return nil
}

