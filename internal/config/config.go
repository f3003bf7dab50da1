// Package config は環境変数から設定を読み込み、アプリケーション全体で使用する設定を提供します。
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
)

// Config はアプリケーションの設定を保持する構造体です。
type Config struct {
	// サーバー設定
	Port    string // APIサーバーのポート番号
	GinMode string // Ginの実行モード (debug, release, test)

	// データベース設定
	DBUser   string // MongoDB Atlas のユーザー名
	DBPass   string // MongoDB Atlas のパスワード
	MongoURI string // 接続URIを直接指定する場合（DB_USER/DB_PASS より優先）
	DBName   string // 使用するデータベース名

	// 認証設定
	SecretKey string // セッショントークン署名用の秘密鍵

	// CORS設定
	CORSAllowedOrigins string // CORS許可オリジン（カンマ区切り）
}

// Load は環境変数から設定を読み込みます。
// .env.local ファイルが存在する場合はそこから読み込みます。
func Load() (*Config, error) {
	loadEnvFile()

	config := &Config{
		Port:    getEnv("PORT", "5000"),
		GinMode: getEnv("GIN_MODE", "debug"),

		DBUser:   getEnv("DB_USER", ""),
		DBPass:   getEnv("DB_PASS", ""),
		MongoURI: getEnv("MONGO_URI", ""),
		DBName:   getEnv("DB_NAME", "solo-db"),

		SecretKey: getEnv("SECRET_KEY", ""),

		CORSAllowedOrigins: getEnv("CORS_ALLOWED_ORIGINS", "http://localhost:5173"),
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return config, nil
}

// MongoConnectionURI は接続に使用するURIを返します。
// MONGO_URI が指定されていればそれを、なければ DB_USER/DB_PASS からSRV形式のURIを組み立てます。
func (c *Config) MongoConnectionURI() string {
	if c.MongoURI != "" {
		return c.MongoURI
	}
	return fmt.Sprintf(
		"mongodb+srv://%s:%s@cluster0.kvlax.mongodb.net/?retryWrites=true&w=majority&appName=Cluster0",
		c.DBUser, c.DBPass,
	)
}

// AllowedOrigins はCORS許可オリジンをスライスとして返します。
func (c *Config) AllowedOrigins() []string {
	return strings.Split(c.CORSAllowedOrigins, ",")
}

func loadEnvFile() {
	if err := godotenv.Load(".env.local"); err == nil {
		return
	}

	cwd, err := os.Getwd()
	if err != nil {
		return
	}

	parent := filepath.Dir(cwd)
	if parent == "" || parent == cwd {
		return
	}

	_ = godotenv.Load(filepath.Join(parent, ".env.local"))
}

// Validate は設定の妥当性を検証します。
func (c *Config) Validate() error {
	// ローカル開発では未設定を許容し、本番環境では厳格にチェックする
	if c.GinMode == "release" {
		if c.SecretKey == "" {
			return fmt.Errorf("SECRET_KEY is required in release mode")
		}
		if c.MongoURI == "" && (c.DBUser == "" || c.DBPass == "") {
			return fmt.Errorf("MONGO_URI or DB_USER/DB_PASS is required in release mode")
		}
	}

	return nil
}

// getEnv は環境変数を取得し、存在しない場合はデフォルト値を返します。
func getEnv(key string, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}
