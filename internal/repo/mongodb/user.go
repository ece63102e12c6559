package mongodb

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/aitwy/aitwy-server/internal/models"
)

type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, id primitive.ObjectID) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	// GetByEmailWithPassword is the only read that loads the password hash.
	GetByEmailWithPassword(ctx context.Context, email string) (*models.User, error)
	SetVerificationToken(ctx context.Context, id primitive.ObjectID, tokenHash string, expires time.Time) error
	// VerifyByTokenHash atomically consumes a live verification token.
	VerifyByTokenHash(ctx context.Context, tokenHash string, now time.Time) (*models.User, error)
	UpdateLastLogin(ctx context.Context, id primitive.ObjectID, at time.Time) error
	EnsureIndexes(ctx context.Context) error
}

type userRepo struct {
	baseRepo[models.User]
}

func NewUserRepository(db *DB) UserRepository {
	return &userRepo{
		baseRepo: newBaseRepo[models.User](db.Database),
	}
}

var withoutPassword = bson.M{"password": 0}

func (r *userRepo) Create(ctx context.Context, user *models.User) error {
	now := time.Now()
	user.ID = primitive.NewObjectID()
	user.CreatedAt = now
	user.UpdatedAt = now

	if _, err := r.Insert(ctx, *user); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return models.ErrEmailTaken
		}
		return fmt.Errorf("failed to create user: %w", err)
	}
	return nil
}

func (r *userRepo) GetByID(ctx context.Context, id primitive.ObjectID) (*models.User, error) {
	user, err := r.FindOne(ctx, bson.M{"_id": id}, options.FindOne().SetProjection(withoutPassword))
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return user, nil
}

func (r *userRepo) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	user, err := r.FindOne(ctx, bson.M{"email": email}, options.FindOne().SetProjection(withoutPassword))
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to get user by email: %w", err)
	}
	return user, nil
}

func (r *userRepo) GetByEmailWithPassword(ctx context.Context, email string) (*models.User, error) {
	user, err := r.FindOne(ctx, bson.M{"email": email})
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to get user by email: %w", err)
	}
	return user, nil
}

func (r *userRepo) SetVerificationToken(ctx context.Context, id primitive.ObjectID, tokenHash string, expires time.Time) error {
	update := bson.M{"$set": bson.M{
		"email_verification_token":   tokenHash,
		"email_verification_expires": expires,
		"updated_at":                 time.Now(),
	}}
	if err := r.UpdateOne(ctx, bson.M{"_id": id}, update); err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return err
		}
		return fmt.Errorf("failed to set verification token: %w", err)
	}
	return nil
}

func (r *userRepo) VerifyByTokenHash(ctx context.Context, tokenHash string, now time.Time) (*models.User, error) {
	filter := bson.M{
		"email_verification_token":   tokenHash,
		"email_verification_expires": bson.M{"$gt": now},
	}
	update := bson.M{
		"$set": bson.M{
			"is_email_verified": true,
			"is_active":         true,
			"updated_at":        now,
		},
		"$unset": bson.M{
			"email_verification_token":   "",
			"email_verification_expires": "",
		},
	}

	user, err := r.FindOneAndUpdate(ctx, filter, update, options.FindOneAndUpdate().SetProjection(withoutPassword))
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return nil, models.ErrInvalidVerificationToken
		}
		return nil, fmt.Errorf("failed to verify email: %w", err)
	}
	return user, nil
}

func (r *userRepo) UpdateLastLogin(ctx context.Context, id primitive.ObjectID, at time.Time) error {
	update := bson.M{"$set": bson.M{"last_login": at, "updated_at": at}}
	if err := r.UpdateOne(ctx, bson.M{"_id": id}, update); err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return err
		}
		return fmt.Errorf("failed to update last login: %w", err)
	}
	return nil
}

func (r *userRepo) EnsureIndexes(ctx context.Context) error {
	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "email", Value: 1}},
			Options: options.Index().SetName("uniq_email").SetUnique(true),
		},
		{
			Keys: bson.D{{Key: "email_verification_token", Value: 1}},
			Options: options.Index().
				SetName("email_verification_token").
				SetSparse(true),
		},
	}
	if _, err := r.coll.Indexes().CreateMany(ctx, indexes); err != nil {
		return fmt.Errorf("create user indexes: %w", err)
	}
	return nil
}
