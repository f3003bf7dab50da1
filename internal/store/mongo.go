// Package store はMongoDBへの共有接続と、書き込み結果の共通表現を提供します。
package store

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/yourusername/solosphere/internal/config"
)

// Connect はMongoDBクライアントを作成し、疎通確認のpingを行います。
// クライアントはプロセス起動時に一度だけ作成し、全リクエストで共有します。
func Connect(ctx context.Context, cfg *config.Config) (*mongo.Client, error) {
	serverAPI := options.ServerAPI(options.ServerAPIVersion1).
		SetStrict(true).
		SetDeprecationErrors(true)

	opts := options.Client().
		ApplyURI(cfg.MongoConnectionURI()).
		SetServerAPIOptions(serverAPI)

	client, err := mongo.Connect(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("mongodb connect failed: %w", err)
	}

	if err := client.Database("admin").RunCommand(ctx, bson.D{{Key: "ping", Value: 1}}).Err(); err != nil {
		return nil, fmt.Errorf("mongodb ping failed: %w", err)
	}

	return client, nil
}

// InsertResult は挿入操作の結果です。
type InsertResult struct {
	Acknowledged bool   `json:"acknowledged"`
	InsertedID   string `json:"insertedId"`
}

// UpdateResult は更新操作の結果です。upsertが発生した場合のみ UpsertedID が入ります。
type UpdateResult struct {
	Acknowledged  bool   `json:"acknowledged"`
	MatchedCount  int64  `json:"matchedCount"`
	ModifiedCount int64  `json:"modifiedCount"`
	UpsertedID    string `json:"upsertedId,omitempty"`
}

// DeleteResult は削除操作の結果です。
type DeleteResult struct {
	Acknowledged bool  `json:"acknowledged"`
	DeletedCount int64 `json:"deletedCount"`
}

// NewInsertResult はドライバーの挿入結果をAPIレスポンス用に変換します。
func NewInsertResult(res *mongo.InsertOneResult) *InsertResult {
	return &InsertResult{
		Acknowledged: true,
		InsertedID:   idToHex(res.InsertedID),
	}
}

// NewUpdateResult はドライバーの更新結果をAPIレスポンス用に変換します。
func NewUpdateResult(res *mongo.UpdateResult) *UpdateResult {
	out := &UpdateResult{
		Acknowledged:  true,
		MatchedCount:  res.MatchedCount,
		ModifiedCount: res.ModifiedCount,
	}
	if res.UpsertedID != nil {
		out.UpsertedID = idToHex(res.UpsertedID)
	}
	return out
}

// NewDeleteResult はドライバーの削除結果をAPIレスポンス用に変換します。
func NewDeleteResult(res *mongo.DeleteResult) *DeleteResult {
	return &DeleteResult{
		Acknowledged: true,
		DeletedCount: res.DeletedCount,
	}
}

func idToHex(id any) string {
	if oid, ok := id.(primitive.ObjectID); ok {
		return oid.Hex()
	}
	return fmt.Sprintf("%v", id)
}
