package settings

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type Repository interface {
	GetProfile(ctx context.Context, userID string) (*UserProfile, error)
	SaveProfile(ctx context.Context, profile *UserProfile) error
}

// RepositoryImpl stores profiles in the "profiles" collection
type RepositoryImpl struct {
	coll *mongo.Collection
}

// NewRepository creates a new settings repository
func NewRepository(db *mongo.Database) *RepositoryImpl {
	return &RepositoryImpl{coll: db.Collection("profiles")}
}

// GetProfile returns nil, nil when the user has no profile yet.
func (r *RepositoryImpl) GetProfile(ctx context.Context, userID string) (*UserProfile, error) {
	var profile UserProfile
	err := r.coll.FindOne(ctx, bson.M{"_id": userID}).Decode(&profile)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &profile, nil
}

// SaveProfile replaces the whole document, creating it if needed.
func (r *RepositoryImpl) SaveProfile(ctx context.Context, profile *UserProfile) error {
	_, err := r.coll.ReplaceOne(ctx,
		bson.M{"_id": profile.UserID},
		profile,
		options.Replace().SetUpsert(true),
	)
	return err
}
