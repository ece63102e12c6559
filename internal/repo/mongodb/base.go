package mongodb

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/aitwy/aitwy-server/internal/models"
)

type IEntity interface {
	CollectionName() string
}

type IRepository[E IEntity] interface {
	Insert(ctx context.Context, entity E, opts ...*options.InsertOneOptions) (primitive.ObjectID, error)
	FindOne(ctx context.Context, filter bson.M, opts ...*options.FindOneOptions) (*E, error)
	FindOneAndUpdate(ctx context.Context, filter bson.M, update bson.M, opts ...*options.FindOneAndUpdateOptions) (*E, error)
	UpdateOne(ctx context.Context, filter bson.M, update bson.M, opts ...*options.UpdateOptions) error
}

// keep the baseRepo implementation in sync with IRepository interface
var _ IRepository[models.User] = (*baseRepo[models.User])(nil)

type baseRepo[E IEntity] struct {
	coll *mongo.Collection
}

func newBaseRepo[E IEntity](dbc *mongo.Database) baseRepo[E] {
	var entity E
	return baseRepo[E]{
		coll: dbc.Collection(entity.CollectionName()),
	}
}

func (r *baseRepo[E]) Insert(ctx context.Context, entity E, opts ...*options.InsertOneOptions) (primitive.ObjectID, error) {
	result, err := r.coll.InsertOne(ctx, entity, opts...)
	if err != nil {
		return primitive.NilObjectID, fmt.Errorf("insert one: %w", err)
	}

	oid, ok := result.InsertedID.(primitive.ObjectID)
	if !ok {
		return primitive.NilObjectID, fmt.Errorf("invalid inserted id: %T %+v", result.InsertedID, result.InsertedID)
	}

	return oid, nil
}

func (r *baseRepo[E]) FindOne(ctx context.Context, filter bson.M, opts ...*options.FindOneOptions) (*E, error) {
	var entity E
	err := r.coll.FindOne(ctx, filter, opts...).Decode(&entity)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, models.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &entity, nil
}

// FindOneAndUpdate applies update to the first match and returns the document
// as it is after the update.
func (r *baseRepo[E]) FindOneAndUpdate(ctx context.Context, filter bson.M, update bson.M, opts ...*options.FindOneAndUpdateOptions) (*E, error) {
	updateOpt := options.
		FindOneAndUpdate().
		SetReturnDocument(options.After)
	opts = append(opts, updateOpt)

	var updatedEntity E
	err := r.coll.FindOneAndUpdate(ctx, filter, update, opts...).Decode(&updatedEntity)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, models.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &updatedEntity, nil
}

func (r *baseRepo[E]) UpdateOne(ctx context.Context, filter bson.M, update bson.M, opts ...*options.UpdateOptions) error {
	result, err := r.coll.UpdateOne(ctx, filter, update, opts...)
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return models.ErrNotFound
	}
	return nil
}

