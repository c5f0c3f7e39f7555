package mongo

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/joxgallardo/sparkchat-sub001/internal/core/domain"
)

const collectionWallets = "wallet_configs"

// WalletConfigRepository stores the external wallet handle per account.
// Exactly one config per account: the account ID is the document key.
type WalletConfigRepository struct {
	col *mongo.Collection
}

func NewWalletConfigRepository(db *mongo.Database) *WalletConfigRepository {
	return &WalletConfigRepository{col: db.Collection(collectionWallets)}
}

type walletDoc struct {
	AccountID string `bson:"_id"`
	WalletID  string `bson:"wallet_id"`
}

func (r *WalletConfigRepository) Find(ctx context.Context, accountID string) (*domain.WalletConfig, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var doc walletDoc
	err := r.col.FindOne(ctx, bson.M{"_id": accountID}).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrUnboundAccount
		}
		return nil, err
	}
	return &domain.WalletConfig{AccountID: doc.AccountID, WalletID: doc.WalletID}, nil
}

func (r *WalletConfigRepository) Put(ctx context.Context, cfg *domain.WalletConfig) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	opts := options.Replace().SetUpsert(true)
	_, err := r.col.ReplaceOne(ctx,
		bson.M{"_id": cfg.AccountID},
		walletDoc{AccountID: cfg.AccountID, WalletID: cfg.WalletID},
		opts,
	)
	return err
}
