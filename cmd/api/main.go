// Package main はAPIサーバーのエントリーポイントです。
package main

import (
	"context"
	"log"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/yourusername/solosphere/internal/auth"
	"github.com/yourusername/solosphere/internal/bids"
	"github.com/yourusername/solosphere/internal/config"
	"github.com/yourusername/solosphere/internal/jobs"
	"github.com/yourusername/solosphere/internal/store"
)

func main() {
	// 設定の読み込み
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Ginのモードを設定
	gin.SetMode(cfg.GinMode)

	// MongoDBへの接続はプロセス起動時に一度だけ行い、全リクエストで共有する
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	client, err := store.Connect(ctx, cfg)
	if err != nil {
		log.Fatalf("Failed to connect to MongoDB: %v", err)
	}
	log.Println("Pinged your deployment. You successfully connected to MongoDB!")

	db := client.Database(cfg.DBName)
	jobStore := jobs.NewStore(db)
	bidStore := bids.NewStore(db)
	authManager := auth.NewManager(cfg)

	// Ginルーターの初期化（デフォルトミドルウェア: Logger, Recovery）
	router := gin.Default()

	// CORSミドルウェアの設定。Cookieを使うため認証情報付きリクエストを許可する
	corsConfig := cors.DefaultConfig()
	corsConfig.AllowOrigins = cfg.AllowedOrigins()
	corsConfig.AllowCredentials = true
	corsConfig.AllowHeaders = []string{
		"Origin",
		"Content-Type",
		"Accept",
	}
	router.Use(cors.New(corsConfig))

	// ルーティングの設定
	setupRoutes(router, authManager, jobStore, bidStore)

	// サーバーの起動
	addr := ":" + cfg.Port
	log.Printf("Starting API server on %s (mode: %s)", addr, cfg.GinMode)
	if err := router.Run(addr); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}

// setupRoutes はルートとハンドラーの配線を行います。
// トークン検証を通すルートはここで明示的に宣言します。現状は /bids/:email のみです。
func setupRoutes(router *gin.Engine, authManager *auth.Manager, jobStore *jobs.Store, bidStore *bids.Store) {
	// 死活確認
	router.GET("/", func(c *gin.Context) {
		c.String(http.StatusOK, "Hello from SoloSphere Server....")
	})

	// セッション関連
	router.POST("/jwt", authManager.IssueToken)
	router.POST("/logout", authManager.RevokeToken)

	// 求人関連
	router.POST("/add-job", jobs.AddHandler(jobStore))
	router.GET("/jobs", jobs.ListHandler(jobStore))
	router.GET("/all-jobs", jobs.SearchHandler(jobStore))
	router.GET("/jobs/:email", jobs.ByBuyerHandler(jobStore))
	router.GET("/job/:id", jobs.GetHandler(jobStore))
	router.DELETE("/job/:id", jobs.DeleteHandler(jobStore))
	router.PUT("/update-job/:id", jobs.UpdateHandler(jobStore))

	// 入札関連
	router.POST("/add-bid", bids.AddHandler(bidStore, jobStore))
	router.GET("/bids/:email", authManager.RequireToken(), bids.ListHandler(bidStore))
	router.PATCH("/bid-status-update/:id", bids.UpdateStatusHandler(bidStore))
}
