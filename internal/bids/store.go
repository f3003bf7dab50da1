// Package bids は入札（bids コレクション）のストアとHTTPハンドラーを提供します。
package bids

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/yourusername/solosphere/internal/store"
)

// Store は bids コレクションへのアクセスを提供します。
type Store struct {
	coll *mongo.Collection
}

// NewStore は Store を作成します。
func NewStore(db *mongo.Database) *Store {
	return &Store{coll: db.Collection("bids")}
}

// Exists は同じ (email, jobId) の入札がすでに存在するかを調べます。
// ストアレベルの一意制約ではないため、同時挿入に対しては競合の余地があります。
func (s *Store) Exists(ctx context.Context, email, jobID string) (bool, error) {
	err := s.coll.FindOne(ctx, bson.M{"email": email, "jobId": jobID}).Err()
	if errors.Is(err, mongo.ErrNoDocuments) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// Insert は入札ドキュメントをそのまま保存します。
func (s *Store) Insert(ctx context.Context, doc bson.M) (*store.InsertResult, error) {
	res, err := s.coll.InsertOne(ctx, doc)
	if err != nil {
		return nil, err
	}
	return store.NewInsertResult(res), nil
}

// ByBidder は入札者メールアドレスで入札を検索します。
func (s *Store) ByBidder(ctx context.Context, email string) ([]bson.M, error) {
	return s.findAll(ctx, bson.M{"email": email})
}

// ByOwner は求人投稿者メールアドレス（入札作成時に非正規化された buyer）で入札を検索します。
func (s *Store) ByOwner(ctx context.Context, email string) ([]bson.M, error) {
	return s.findAll(ctx, bson.M{"buyer": email})
}

// UpdateStatus は入札の status フィールドだけを更新します。値の検証は行いません。
func (s *Store) UpdateStatus(ctx context.Context, id, status string) (*store.UpdateResult, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, err
	}
	res, err := s.coll.UpdateOne(ctx, bson.M{"_id": oid}, bson.M{"$set": bson.M{"status": status}})
	if err != nil {
		return nil, err
	}
	return store.NewUpdateResult(res), nil
}

func (s *Store) findAll(ctx context.Context, filter bson.M) ([]bson.M, error) {
	cursor, err := s.coll.Find(ctx, filter)
	if err != nil {
		return nil, err
	}
	results := make([]bson.M, 0)
	if err := cursor.All(ctx, &results); err != nil {
		return nil, err
	}
	return results, nil
}
