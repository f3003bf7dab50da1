package bids

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson"

	"github.com/yourusername/solosphere/internal/auth"
	"github.com/yourusername/solosphere/internal/store"
)

// duplicateBidMessage は重複入札時にそのまま返すメッセージです（プレーンテキスト）。
const duplicateBidMessage = "You have already placed a bid for this job."

// Repository はハンドラーが必要とする入札ストアの操作です。*Store が実装します。
type Repository interface {
	Exists(ctx context.Context, email, jobID string) (bool, error)
	Insert(ctx context.Context, doc bson.M) (*store.InsertResult, error)
	ByBidder(ctx context.Context, email string) ([]bson.M, error)
	ByOwner(ctx context.Context, email string) ([]bson.M, error)
	UpdateStatus(ctx context.Context, id, status string) (*store.UpdateResult, error)
}

// JobCounter は入札作成時に親求人の入札数を加算するためのインターフェースです。
// jobs.Store が実装します。
type JobCounter interface {
	IncrementBidCount(ctx context.Context, jobID string) error
}

// AddHandler は POST /add-bid のハンドラーを返します。
//
// 同一ユーザーは同じ求人に一度しか入札できません。重複チェック、入札の保存、
// 親求人の bid_count 加算の3ステップは順次実行で、トランザクションには
// していません。チェックと挿入の間には競合の余地があり、挿入と加算の間で
// プロセスが落ちると bid_count は実際の入札数より少ないまま残ります。
func AddHandler(repo Repository, jobs JobCounter) gin.HandlerFunc {
	return func(c *gin.Context) {
		var doc bson.M
		if err := c.ShouldBindJSON(&doc); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{
				"code":    "INVALID_INPUT",
				"message": "入札データをJSONで送信してください。",
			})
			return
		}

		email, _ := doc["email"].(string)
		jobID, _ := doc["jobId"].(string)

		exists, err := repo.Exists(c.Request.Context(), email, jobID)
		if err != nil {
			respondStoreError(c)
			return
		}
		if exists {
			c.String(http.StatusBadRequest, duplicateBidMessage)
			return
		}

		result, err := repo.Insert(c.Request.Context(), doc)
		if err != nil {
			respondStoreError(c)
			return
		}

		// 加算に失敗した場合もエラーとして返す。入札自体は保存済みのまま残る。
		if err := jobs.IncrementBidCount(c.Request.Context(), jobID); err != nil {
			respondStoreError(c)
			return
		}

		c.JSON(http.StatusOK, result)
	}
}

// ListHandler は GET /bids/:email のハンドラーを返します。
// このルートだけは auth.Manager の RequireToken を通して登録します。
// buyer クエリパラメータが指定されていれば求人投稿者として、なければ入札者として検索します。
func ListHandler(repo Repository) gin.HandlerFunc {
	return func(c *gin.Context) {
		email := c.Param("email")
		asBuyer := c.Query("buyer") != ""

		// トークンのemailとパスパラメータが一致しない場合は拒否する
		claims := auth.ClaimsFrom(c)
		tokenEmail, _ := claims["email"].(string)
		if tokenEmail != email {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{
				"message": "forbidden access",
			})
			return
		}

		var results []bson.M
		var err error
		if asBuyer {
			results, err = repo.ByOwner(c.Request.Context(), email)
		} else {
			results, err = repo.ByBidder(c.Request.Context(), email)
		}
		if err != nil {
			respondStoreError(c)
			return
		}
		c.JSON(http.StatusOK, results)
	}
}

// UpdateStatusHandler は PATCH /bid-status-update/:id のハンドラーを返します。
// status は自由形式の文字列で、値のドメインは検証しません。
func UpdateStatusHandler(repo Repository) gin.HandlerFunc {
	return func(c *gin.Context) {
		var body struct {
			Status string `json:"status"`
		}
		if err := c.ShouldBindJSON(&body); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{
				"code":    "INVALID_INPUT",
				"message": "status をJSONで送信してください。",
			})
			return
		}

		result, err := repo.UpdateStatus(c.Request.Context(), c.Param("id"), body.Status)
		if err != nil {
			respondStoreError(c)
			return
		}
		c.JSON(http.StatusOK, result)
	}
}

func respondStoreError(c *gin.Context) {
	c.JSON(http.StatusInternalServerError, gin.H{
		"code":    "INTERNAL_ERROR",
		"message": "サーバー内部でエラーが発生しました。",
	})
}
