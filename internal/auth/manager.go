// Package auth はセッショントークンの発行・破棄と、保護ルート用の検証ミドルウェアを提供します。
package auth

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"

	"github.com/yourusername/solosphere/internal/config"
)

const (
	// TokenCookieName はセッショントークンを運ぶCookie名です。
	TokenCookieName = "token"

	// ContextClaimsKey は、検証済みクレームをハンドラー間で共有するためのキーです。
	ContextClaimsKey = "auth.claims"
)

// トークンの有効期限は365日。Cookie自体はセッションCookie（MaxAge未指定）のまま。
var tokenLifetime = 365 * 24 * time.Hour

// Manager はトークンの発行・破棄・検証をまとめた構造体です。
type Manager struct {
	cfg *config.Config
}

// NewManager は認証マネージャーを作成します。
func NewManager(cfg *config.Config) *Manager {
	return &Manager{cfg: cfg}
}

// IssueToken は POST /jwt のハンドラーです。
// クライアントが送ってきたペイロードをそのままクレームとして署名します。
// 資格情報の照合は行いません（アイデンティティはクライアントの自己申告）。
func (m *Manager) IssueToken(c *gin.Context) {
	var payload map[string]any
	if err := c.ShouldBindJSON(&payload); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"code":    "INVALID_INPUT",
			"message": "JSONオブジェクトを送信してください。",
		})
		return
	}

	claims := jwt.MapClaims{}
	for k, v := range payload {
		claims[k] = v
	}
	claims["exp"] = jwt.NewNumericDate(time.Now().Add(tokenLifetime))

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(m.cfg.SecretKey))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"code":    "TOKEN_GENERATION_FAILED",
			"message": "トークンの生成に失敗しました。",
		})
		return
	}

	m.setSessionCookie(c, signed, 0)
	c.JSON(http.StatusOK, gin.H{"success": true})
}

// RevokeToken は POST /logout のハンドラーです。
// Cookieを破棄するだけで、発行済みトークン自体はサーバー側では無効化しません。
func (m *Manager) RevokeToken(c *gin.Context) {
	m.setSessionCookie(c, "", -1)
	c.JSON(http.StatusOK, gin.H{"success": true})
}

// RequireToken はセッショントークンを検証するミドルウェアを返します。
// 検証に成功するとクレームをコンテキストに格納して後続ハンドラーへ渡します。
func (m *Manager) RequireToken() gin.HandlerFunc {
	return func(c *gin.Context) {
		token, err := c.Cookie(TokenCookieName)
		if err != nil || token == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"message": "Unauthorized access",
			})
			return
		}

		parsed, err := jwt.Parse(token, func(t *jwt.Token) (any, error) {
			if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
			}
			return []byte(m.cfg.SecretKey), nil
		})
		if err != nil || !parsed.Valid {
			detail := "invalid token"
			if err != nil {
				detail = err.Error()
			}
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"message": "Token verification failed: " + detail,
			})
			return
		}

		claims, ok := parsed.Claims.(jwt.MapClaims)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"message": "Token verification failed: unexpected claims type",
			})
			return
		}

		c.Set(ContextClaimsKey, claims)
		c.Next()
	}
}

// ClaimsFrom はミドルウェアが格納したクレームを取り出します。未検証の場合はnilを返します。
func ClaimsFrom(c *gin.Context) jwt.MapClaims {
	v, ok := c.Get(ContextClaimsKey)
	if !ok {
		return nil
	}
	claims, _ := v.(jwt.MapClaims)
	return claims
}

// setSessionCookie はトークンCookieの属性を環境に合わせて設定します。
// 本番（release）では Secure + SameSite=None、それ以外では SameSite=Strict。
func (m *Manager) setSessionCookie(c *gin.Context, value string, maxAge int) {
	secure := m.cfg.GinMode == gin.ReleaseMode
	if secure {
		c.SetSameSite(http.SameSiteNoneMode)
	} else {
		c.SetSameSite(http.SameSiteStrictMode)
	}
	c.SetCookie(TokenCookieName, value, maxAge, "/", "", secure, true)
}
