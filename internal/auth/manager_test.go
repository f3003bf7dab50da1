package auth

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"

	"github.com/yourusername/solosphere/internal/config"
)

const testSecret = "test-secret"

func newTestManager() *Manager {
	return NewManager(&config.Config{
		GinMode:   gin.TestMode,
		SecretKey: testSecret,
	})
}

func signTestToken(t *testing.T, claims jwt.MapClaims) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(testSecret))
	if err != nil {
		t.Fatalf("failed to sign test token: %v", err)
	}
	return signed
}

func findTokenCookie(t *testing.T, rec *httptest.ResponseRecorder) *http.Cookie {
	t.Helper()
	for _, cookie := range rec.Result().Cookies() {
		if cookie.Name == TokenCookieName {
			return cookie
		}
	}
	t.Fatalf("token cookie not found in response")
	return nil
}

func TestIssueTokenSetsSignedCookie(t *testing.T) {
	gin.SetMode(gin.TestMode)
	m := newTestManager()

	router := gin.New()
	router.POST("/jwt", m.IssueToken)

	req := httptest.NewRequest(http.MethodPost, "/jwt", strings.NewReader(`{"email":"a@x.com","name":"A"}`))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("unexpected status: %d body=%s", rec.Code, rec.Body.String())
	}

	var body map[string]bool
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("failed to parse response: %v", err)
	}
	if !body["success"] {
		t.Fatalf("expected success=true, got %v", body)
	}

	cookie := findTokenCookie(t, rec)
	if !cookie.HttpOnly {
		t.Fatal("expected HttpOnly cookie")
	}
	if cookie.Secure {
		t.Fatal("cookie must not be Secure outside release mode")
	}

	parsed, err := jwt.Parse(cookie.Value, func(token *jwt.Token) (any, error) {
		return []byte(testSecret), nil
	})
	if err != nil {
		t.Fatalf("issued token failed verification: %v", err)
	}
	claims := parsed.Claims.(jwt.MapClaims)
	if claims["email"] != "a@x.com" {
		t.Fatalf("unexpected email claim: %v", claims["email"])
	}
	if claims["name"] != "A" {
		t.Fatalf("unexpected name claim: %v", claims["name"])
	}

	exp, err := claims.GetExpirationTime()
	if err != nil {
		t.Fatalf("failed to read expiry: %v", err)
	}
	until := time.Until(exp.Time)
	if until < 364*24*time.Hour || until > 366*24*time.Hour {
		t.Fatalf("expected ~365d expiry, got %v", until)
	}
}

func TestIssueTokenRejectsNonObjectBody(t *testing.T) {
	gin.SetMode(gin.TestMode)
	m := newTestManager()

	router := gin.New()
	router.POST("/jwt", m.IssueToken)

	req := httptest.NewRequest(http.MethodPost, "/jwt", strings.NewReader(`"not an object"`))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("unexpected status: %d", rec.Code)
	}
}

func TestRevokeTokenClearsCookie(t *testing.T) {
	gin.SetMode(gin.TestMode)
	m := newTestManager()

	router := gin.New()
	router.POST("/logout", m.RevokeToken)

	req := httptest.NewRequest(http.MethodPost, "/logout", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("unexpected status: %d", rec.Code)
	}

	cookie := findTokenCookie(t, rec)
	if cookie.Value != "" {
		t.Fatalf("expected cleared cookie value, got %q", cookie.Value)
	}
	if cookie.MaxAge >= 0 {
		t.Fatalf("expected negative MaxAge, got %d", cookie.MaxAge)
	}
}

func newProtectedRouter(m *Manager) *gin.Engine {
	router := gin.New()
	router.GET("/protected", m.RequireToken(), func(c *gin.Context) {
		claims := ClaimsFrom(c)
		email, _ := claims["email"].(string)
		c.JSON(http.StatusOK, gin.H{"email": email})
	})
	return router
}

func TestRequireTokenMissingCookie(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := newProtectedRouter(newTestManager())

	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("unexpected status: %d", rec.Code)
	}
	var body map[string]string
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("failed to parse response: %v", err)
	}
	if body["message"] != "Unauthorized access" {
		t.Fatalf("unexpected message: %q", body["message"])
	}
}

func TestRequireTokenInvalidToken(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := newProtectedRouter(newTestManager())

	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.AddCookie(&http.Cookie{Name: TokenCookieName, Value: "not-a-jwt"})
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("unexpected status: %d", rec.Code)
	}
	var body map[string]string
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("failed to parse response: %v", err)
	}
	if !strings.HasPrefix(body["message"], "Token verification failed: ") {
		t.Fatalf("unexpected message: %q", body["message"])
	}
}

func TestRequireTokenExpired(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := newProtectedRouter(newTestManager())

	expired := signTestToken(t, jwt.MapClaims{
		"email": "a@x.com",
		"exp":   jwt.NewNumericDate(time.Now().Add(-time.Hour)),
	})
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.AddCookie(&http.Cookie{Name: TokenCookieName, Value: expired})
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("unexpected status: %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "expired") {
		t.Fatalf("expected expiry detail in body, got %s", rec.Body.String())
	}
}

func TestRequireTokenWrongSecret(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := newProtectedRouter(newTestManager())

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"email": "a@x.com",
		"exp":   jwt.NewNumericDate(time.Now().Add(time.Hour)),
	})
	signed, err := token.SignedString([]byte("other-secret"))
	if err != nil {
		t.Fatalf("failed to sign token: %v", err)
	}

	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.AddCookie(&http.Cookie{Name: TokenCookieName, Value: signed})
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("unexpected status: %d", rec.Code)
	}
}

func TestRequireTokenValidExposesClaims(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := newProtectedRouter(newTestManager())

	valid := signTestToken(t, jwt.MapClaims{
		"email": "b@x.com",
		"exp":   jwt.NewNumericDate(time.Now().Add(time.Hour)),
	})
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.AddCookie(&http.Cookie{Name: TokenCookieName, Value: valid})
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("unexpected status: %d body=%s", rec.Code, rec.Body.String())
	}
	var body map[string]string
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("failed to parse response: %v", err)
	}
	if body["email"] != "b@x.com" {
		t.Fatalf("unexpected claims email: %q", body["email"])
	}
}
