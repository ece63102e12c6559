package server

import (
	"context"
	"errors"
	"regexp"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/aitwy/aitwy-server/internal/models"
	"github.com/aitwy/aitwy-server/internal/repo/mailer"
)

type memUsers struct {
	mu    sync.Mutex
	users map[primitive.ObjectID]*models.User
}

func newMemUsers() *memUsers {
	return &memUsers{users: map[primitive.ObjectID]*models.User{}}
}

func (r *memUsers) find(match func(*models.User) bool) *models.User {
	for _, u := range r.users {
		if match(u) {
			return u
		}
	}
	return nil
}

func (r *memUsers) copyOf(u *models.User, withPassword bool) *models.User {
	c := *u
	if !withPassword {
		c.Password = ""
	}
	return &c
}

func (r *memUsers) Create(_ context.Context, user *models.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.find(func(u *models.User) bool { return u.Email == user.Email }) != nil {
		return models.ErrEmailTaken
	}
	user.ID = primitive.NewObjectID()
	user.CreatedAt = time.Now()
	user.UpdatedAt = user.CreatedAt
	r.users[user.ID] = r.copyOf(user, true)
	return nil
}

func (r *memUsers) GetByID(_ context.Context, id primitive.ObjectID) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if u, ok := r.users[id]; ok {
		return r.copyOf(u, false), nil
	}
	return nil, models.ErrNotFound
}

func (r *memUsers) getByEmail(email string, withPassword bool) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if u := r.find(func(u *models.User) bool { return u.Email == email }); u != nil {
		return r.copyOf(u, withPassword), nil
	}
	return nil, models.ErrNotFound
}

func (r *memUsers) GetByEmail(_ context.Context, email string) (*models.User, error) {
	return r.getByEmail(email, false)
}

func (r *memUsers) GetByEmailWithPassword(_ context.Context, email string) (*models.User, error) {
	return r.getByEmail(email, true)
}

func (r *memUsers) SetVerificationToken(_ context.Context, id primitive.ObjectID, tokenHash string, expires time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return models.ErrNotFound
	}
	u.EmailVerificationToken = &tokenHash
	u.EmailVerificationExpires = &expires
	return nil
}

func (r *memUsers) VerifyByTokenHash(_ context.Context, tokenHash string, now time.Time) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u := r.find(func(u *models.User) bool {
		return u.EmailVerificationToken != nil && *u.EmailVerificationToken == tokenHash &&
			u.EmailVerificationExpires != nil && u.EmailVerificationExpires.After(now)
	})
	if u == nil {
		return nil, models.ErrInvalidVerificationToken
	}
	u.MarkVerified(now)
	return r.copyOf(u, false), nil
}

func (r *memUsers) UpdateLastLogin(_ context.Context, id primitive.ObjectID, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return models.ErrNotFound
	}
	u.LastLogin = &at
	return nil
}

func (r *memUsers) EnsureIndexes(context.Context) error { return nil }

func (r *memUsers) deactivate(email string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if u := r.find(func(u *models.User) bool { return u.Email == email }); u != nil {
		u.IsActive = false
	}
}

var tokenInLink = regexp.MustCompile(`token=([0-9a-f]+)`)

// outbox captures rendered mail in place of an SMTP transport.
type outbox struct {
	mu   sync.Mutex
	msgs []mailer.Message
	err  error
}

func (o *outbox) Send(_ context.Context, msg mailer.Message) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.err != nil {
		return o.err
	}
	o.msgs = append(o.msgs, msg)
	return nil
}

func (o *outbox) fail(err error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.err = err
}

func (o *outbox) count() int {
	o.mu.Lock()
	defer o.mu.Unlock()
	return len(o.msgs)
}

// lastToken returns the verification token from the newest verification mail.
func (o *outbox) lastToken() (string, error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	for i := len(o.msgs) - 1; i >= 0; i-- {
		if m := tokenInLink.FindStringSubmatch(o.msgs[i].Text); m != nil {
			return m[1], nil
		}
	}
	return "", errors.New("no verification mail sent")
}

type fakePinger struct {
	err error
}

func (p fakePinger) Ping(context.Context) error { return p.err }
