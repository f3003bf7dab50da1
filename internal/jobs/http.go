package jobs

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson"

	"github.com/yourusername/solosphere/internal/store"
)

// Repository はハンドラーが必要とする求人ストアの操作です。*Store が実装します。
type Repository interface {
	Insert(ctx context.Context, doc bson.M) (*store.InsertResult, error)
	All(ctx context.Context) ([]bson.M, error)
	Search(ctx context.Context, q SearchQuery) ([]bson.M, error)
	ByBuyer(ctx context.Context, email string) ([]bson.M, error)
	Get(ctx context.Context, id string) (bson.M, error)
	Delete(ctx context.Context, id string) (*store.DeleteResult, error)
	Upsert(ctx context.Context, id string, fields bson.M) (*store.UpdateResult, error)
}

// AddHandler は POST /add-job のハンドラーを返します。ボディをそのまま保存します。
func AddHandler(repo Repository) gin.HandlerFunc {
	return func(c *gin.Context) {
		var doc bson.M
		if err := c.ShouldBindJSON(&doc); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{
				"code":    "INVALID_INPUT",
				"message": "求人データをJSONで送信してください。",
			})
			return
		}

		result, err := repo.Insert(c.Request.Context(), doc)
		if err != nil {
			respondStoreError(c)
			return
		}
		c.JSON(http.StatusOK, result)
	}
}

// ListHandler は GET /jobs のハンドラーを返します。全件を無条件で返します。
func ListHandler(repo Repository) gin.HandlerFunc {
	return func(c *gin.Context) {
		results, err := repo.All(c.Request.Context())
		if err != nil {
			respondStoreError(c)
			return
		}
		c.JSON(http.StatusOK, results)
	}
}

// SearchHandler は GET /all-jobs のハンドラーを返します。
// search はタイトル部分一致、filter はカテゴリ完全一致、sort は締切順の指定です。
func SearchHandler(repo Repository) gin.HandlerFunc {
	return func(c *gin.Context) {
		q := SearchQuery{
			Search: c.Query("search"),
			Filter: c.Query("filter"),
			Sort:   c.Query("sort"),
		}

		results, err := repo.Search(c.Request.Context(), q)
		if err != nil {
			respondStoreError(c)
			return
		}
		c.JSON(http.StatusOK, results)
	}
}

// ByBuyerHandler は GET /jobs/:email のハンドラーを返します。認証は要求しません。
func ByBuyerHandler(repo Repository) gin.HandlerFunc {
	return func(c *gin.Context) {
		results, err := repo.ByBuyer(c.Request.Context(), c.Param("email"))
		if err != nil {
			respondStoreError(c)
			return
		}
		c.JSON(http.StatusOK, results)
	}
}

// GetHandler は GET /job/:id のハンドラーを返します。
// 存在しないIDにはJSONの null を返します。不正なIDはストアエラーとして扱います。
func GetHandler(repo Repository) gin.HandlerFunc {
	return func(c *gin.Context) {
		doc, err := repo.Get(c.Request.Context(), c.Param("id"))
		if err != nil {
			respondStoreError(c)
			return
		}
		c.JSON(http.StatusOK, doc)
	}
}

// DeleteHandler は DELETE /job/:id のハンドラーを返します。
func DeleteHandler(repo Repository) gin.HandlerFunc {
	return func(c *gin.Context) {
		result, err := repo.Delete(c.Request.Context(), c.Param("id"))
		if err != nil {
			respondStoreError(c)
			return
		}
		c.JSON(http.StatusOK, result)
	}
}

// UpdateHandler は PUT /update-job/:id のハンドラーを返します。
// ボディのフィールドだけを更新する部分更新で、該当がなければupsertします。
func UpdateHandler(repo Repository) gin.HandlerFunc {
	return func(c *gin.Context) {
		var fields bson.M
		if err := c.ShouldBindJSON(&fields); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{
				"code":    "INVALID_INPUT",
				"message": "更新内容をJSONで送信してください。",
			})
			return
		}

		result, err := repo.Upsert(c.Request.Context(), c.Param("id"), fields)
		if err != nil {
			respondStoreError(c)
			return
		}
		c.JSON(http.StatusOK, result)
	}
}

// respondStoreError はストア操作の失敗を一律に500として返します。
// 個別のハンドラーではエラーを握りつぶさず、ここに集約します。
func respondStoreError(c *gin.Context) {
	c.JSON(http.StatusInternalServerError, gin.H{
		"code":    "INTERNAL_ERROR",
		"message": "サーバー内部でエラーが発生しました。",
	})
}
