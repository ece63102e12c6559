package usecase

import (
	"context"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/aitwy/aitwy-server/internal/config"
	"github.com/aitwy/aitwy-server/internal/models"
)

type memUserRepo struct {
	mu    sync.Mutex
	users map[primitive.ObjectID]*models.User
	err   error
}

func newMemUserRepo() *memUserRepo {
	return &memUserRepo{users: map[primitive.ObjectID]*models.User{}}
}

func clone(u *models.User, withPassword bool) *models.User {
	c := *u
	if !withPassword {
		c.Password = ""
	}
	return &c
}

func (r *memUserRepo) byEmail(email string) *models.User {
	for _, u := range r.users {
		if u.Email == email {
			return u
		}
	}
	return nil
}

func (r *memUserRepo) Create(_ context.Context, user *models.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return r.err
	}
	if r.byEmail(user.Email) != nil {
		return models.ErrEmailTaken
	}
	user.ID = primitive.NewObjectID()
	user.CreatedAt = time.Now()
	user.UpdatedAt = user.CreatedAt
	r.users[user.ID] = clone(user, true)
	return nil
}

func (r *memUserRepo) GetByID(_ context.Context, id primitive.ObjectID) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return nil, r.err
	}
	u, ok := r.users[id]
	if !ok {
		return nil, models.ErrNotFound
	}
	return clone(u, false), nil
}

func (r *memUserRepo) GetByEmail(_ context.Context, email string) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return nil, r.err
	}
	u := r.byEmail(email)
	if u == nil {
		return nil, models.ErrNotFound
	}
	return clone(u, false), nil
}

func (r *memUserRepo) GetByEmailWithPassword(_ context.Context, email string) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return nil, r.err
	}
	u := r.byEmail(email)
	if u == nil {
		return nil, models.ErrNotFound
	}
	return clone(u, true), nil
}

func (r *memUserRepo) SetVerificationToken(_ context.Context, id primitive.ObjectID, tokenHash string, expires time.Time) error {
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

func (r *memUserRepo) VerifyByTokenHash(_ context.Context, tokenHash string, now time.Time) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.EmailVerificationToken == nil || *u.EmailVerificationToken != tokenHash {
			continue
		}
		if u.EmailVerificationExpires == nil || !u.EmailVerificationExpires.After(now) {
			continue
		}
		u.MarkVerified(now)
		return clone(u, false), nil
	}
	return nil, models.ErrInvalidVerificationToken
}

func (r *memUserRepo) UpdateLastLogin(_ context.Context, id primitive.ObjectID, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return models.ErrNotFound
	}
	u.LastLogin = &at
	return nil
}

func (r *memUserRepo) EnsureIndexes(context.Context) error { return nil }

func (r *memUserRepo) get(email string) *models.User {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.byEmail(email)
}

type sentMail struct {
	kind  string
	to    string
	token string
}

type fakeMailer struct {
	mu              sync.Mutex
	sent            []sentMail
	verificationErr error
	welcomeErr      error
}

func (m *fakeMailer) SendVerificationEmail(_ context.Context, user *models.User, token string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.verificationErr != nil {
		return m.verificationErr
	}
	m.sent = append(m.sent, sentMail{kind: "verification", to: user.Email, token: token})
	return nil
}

func (m *fakeMailer) SendWelcomeEmail(_ context.Context, user *models.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.welcomeErr != nil {
		return m.welcomeErr
	}
	m.sent = append(m.sent, sentMail{kind: "welcome", to: user.Email})
	return nil
}

func (m *fakeMailer) last(kind string) (sentMail, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := len(m.sent) - 1; i >= 0; i-- {
		if m.sent[i].kind == kind {
			return m.sent[i], true
		}
	}
	return sentMail{}, false
}

type fakePublisher struct {
	mu     sync.Mutex
	events []models.AccountEvent
	err    error
}

func (p *fakePublisher) Publish(_ context.Context, event models.AccountEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return p.err
	}
	p.events = append(p.events, event)
	return nil
}

func (p *fakePublisher) Close() error { return nil }

func (p *fakePublisher) names() []models.AccountEventName {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]models.AccountEventName, 0, len(p.events))
	for _, e := range p.events {
		out = append(out, e.Name)
	}
	return out
}

func testConfig() *config.Config {
	return &config.Config{
		Auth: config.AuthConfig{
			JWTSecret:       "test-secret",
			TokenTTL:        30 * 24 * time.Hour,
			VerificationTTL: 24 * time.Hour,
			BcryptCost:      4,
		},
	}
}
