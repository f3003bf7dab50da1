// Package jobs は求人（jobs コレクション）のストアとHTTPハンドラーを提供します。
package jobs

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/yourusername/solosphere/internal/store"
)

// SearchQuery は GET /all-jobs の絞り込み条件です。
type SearchQuery struct {
	Search string // タイトルの部分一致（大文字小文字を区別しない）
	Filter string // カテゴリの完全一致。空なら条件に含めない
	Sort   string // "asc" で締切昇順、それ以外の非空値で降順。空ならソートしない
}

// Store は jobs コレクションへのアクセスを提供します。
type Store struct {
	coll *mongo.Collection
}

// NewStore は Store を作成します。
func NewStore(db *mongo.Database) *Store {
	return &Store{coll: db.Collection("jobs")}
}

// Insert は求人ドキュメントをそのまま保存します。スキーマの検証は行いません。
func (s *Store) Insert(ctx context.Context, doc bson.M) (*store.InsertResult, error) {
	res, err := s.coll.InsertOne(ctx, doc)
	if err != nil {
		return nil, err
	}
	return store.NewInsertResult(res), nil
}

// All は全求人を返します。ページネーションはありません。
func (s *Store) All(ctx context.Context) ([]bson.M, error) {
	return s.findAll(ctx, bson.M{}, nil)
}

// Search は検索条件に合致する求人を返します。
func (s *Store) Search(ctx context.Context, q SearchQuery) ([]bson.M, error) {
	opts := options.Find()
	if q.Sort != "" {
		opts.SetSort(bson.D{{Key: "deadline", Value: sortDirection(q.Sort)}})
	}
	return s.findAll(ctx, buildSearchFilter(q), opts)
}

// ByBuyer は指定した投稿者メールアドレスの求人を返します。
func (s *Store) ByBuyer(ctx context.Context, email string) ([]bson.M, error) {
	return s.findAll(ctx, bson.M{"buyer.email": email}, nil)
}

// Get はIDで求人を1件取得します。存在しない場合は (nil, nil) を返します。
func (s *Store) Get(ctx context.Context, id string) (bson.M, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, err
	}
	var doc bson.M
	err = s.coll.FindOne(ctx, bson.M{"_id": oid}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return doc, nil
}

// Delete はIDで求人を1件削除します。
func (s *Store) Delete(ctx context.Context, id string) (*store.DeleteResult, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, err
	}
	res, err := s.coll.DeleteOne(ctx, bson.M{"_id": oid})
	if err != nil {
		return nil, err
	}
	return store.NewDeleteResult(res), nil
}

// Upsert はボディのフィールドを $set で部分更新します。該当がなければ新規作成します。
func (s *Store) Upsert(ctx context.Context, id string, fields bson.M) (*store.UpdateResult, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, err
	}
	res, err := s.coll.UpdateOne(
		ctx,
		bson.M{"_id": oid},
		bson.M{"$set": fields},
		options.Update().SetUpsert(true),
	)
	if err != nil {
		return nil, err
	}
	return store.NewUpdateResult(res), nil
}

// IncrementBidCount は求人の bid_count を1加算します。
func (s *Store) IncrementBidCount(ctx context.Context, id string) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return err
	}
	_, err = s.coll.UpdateOne(ctx, bson.M{"_id": oid}, bson.M{"$inc": bson.M{"bid_count": 1}})
	return err
}

func (s *Store) findAll(ctx context.Context, filter bson.M, opts *options.FindOptions) ([]bson.M, error) {
	var cursor *mongo.Cursor
	var err error
	if opts != nil {
		cursor, err = s.coll.Find(ctx, filter, opts)
	} else {
		cursor, err = s.coll.Find(ctx, filter)
	}
	if err != nil {
		return nil, err
	}
	// 結果ゼロ件でもJSONで [] になるよう空スライスで初期化しておく
	results := make([]bson.M, 0)
	if err := cursor.All(ctx, &results); err != nil {
		return nil, err
	}
	return results, nil
}

// buildSearchFilter は検索条件をMongoDBのクエリに変換します。
// 検索語が空でも $regex は全件にマッチするため、条件は常に含めます。
func buildSearchFilter(q SearchQuery) bson.M {
	filter := bson.M{
		"title": bson.M{
			"$regex":   q.Search,
			"$options": "i",
		},
	}
	if q.Filter != "" {
		filter["category"] = q.Filter
	}
	return filter
}

func sortDirection(sort string) int {
	if sort == "asc" {
		return 1
	}
	return -1
}
