package mongo

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/joxgallardo/sparkchat-sub001/internal/core/domain"
)

const collectionBindings = "bindings"

// BindingRepository persists platform-identity bindings. The unique index
// on platform_id plus insert-and-retry-on-duplicate gives the multi-instance
// compare-and-set guarantee: at most one binding is ever created per
// platform ID.
type BindingRepository struct {
	col *mongo.Collection
}

func NewBindingRepository(db *mongo.Database) *BindingRepository {
	return &BindingRepository{col: db.Collection(collectionBindings)}
}

type bindingDoc struct {
	PlatformID  int64  `bson:"_id"`
	AccountID   string `bson:"account_id"`
	DisplayName string `bson:"display_name,omitempty"`
	IsActive    bool   `bson:"is_active"`
	CreatedAt   int64  `bson:"created_at"`
	LastSeen    int64  `bson:"last_seen"`
}

func (r *BindingRepository) Find(ctx context.Context, platformID int64) (*domain.PlatformUser, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var doc bindingDoc
	err := r.col.FindOne(ctx, bson.M{"_id": platformID}).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrBindingNotFound
		}
		return nil, err
	}
	return doc.toDomain(), nil
}

// CreateIfAbsent inserts the binding; a duplicate-key error means another
// writer won the race, in which case the winner's binding is returned.
func (r *BindingRepository) CreateIfAbsent(ctx context.Context, user *domain.PlatformUser) (*domain.PlatformUser, bool, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	_, err := r.col.InsertOne(ctx, fromDomain(user))
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			winner, findErr := r.Find(ctx, user.PlatformID)
			if findErr != nil {
				return nil, false, findErr
			}
			return winner, false, nil
		}
		return nil, false, err
	}
	clone := *user
	return &clone, true, nil
}

func (r *BindingRepository) Overwrite(ctx context.Context, user *domain.PlatformUser) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	opts := options.Replace().SetUpsert(true)
	_, err := r.col.ReplaceOne(ctx, bson.M{"_id": user.PlatformID}, fromDomain(user), opts)
	return err
}

func (r *BindingRepository) TouchLastSeen(ctx context.Context, platformID int64, at time.Time) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	_, err := r.col.UpdateOne(ctx,
		bson.M{"_id": platformID},
		bson.M{"$max": bson.M{"last_seen": at.Unix()}},
	)
	return err
}

func (r *BindingRepository) Deactivate(ctx context.Context, platformID int64) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res, err := r.col.UpdateOne(ctx,
		bson.M{"_id": platformID},
		bson.M{"$set": bson.M{"is_active": false}},
	)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return domain.ErrBindingNotFound
	}
	return nil
}

// EnsureIndexes creates the indexes the repository relies on.
func (r *BindingRepository) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	indexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "account_id", Value: 1}}},
	}
	_, err := r.col.Indexes().CreateMany(ctx, indexes)
	return err
}

func (d *bindingDoc) toDomain() *domain.PlatformUser {
	return &domain.PlatformUser{
		PlatformID:  d.PlatformID,
		AccountID:   d.AccountID,
		DisplayName: d.DisplayName,
		IsActive:    d.IsActive,
		CreatedAt:   unixToTime(d.CreatedAt),
		LastSeen:    unixToTime(d.LastSeen),
	}
}

func fromDomain(u *domain.PlatformUser) bindingDoc {
	return bindingDoc{
		PlatformID:  u.PlatformID,
		AccountID:   u.AccountID,
		DisplayName: u.DisplayName,
		IsActive:    u.IsActive,
		CreatedAt:   u.CreatedAt.Unix(),
		LastSeen:    u.LastSeen.Unix(),
	}
}

func unixToTime(ts int64) time.Time {
	if ts == 0 {
		return time.Time{}
	}
	return time.Unix(ts, 0).UTC()
}
