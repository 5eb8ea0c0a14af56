package middleware

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// TokenCookieName はセッショントークンを保存するクッキー名。
const TokenCookieName = "token"

// ErrMissingEmail はトークンにメールアドレスが含まれていない場合のエラー。
var ErrMissingEmail = errors.New("トークンにメールアドレスが含まれていません")

// Claims はセッショントークンのクレーム。
type Claims struct {
	jwt.RegisteredClaims
	// Email はログイン中のユーザーのメールアドレス。必須。
	Email string `json:"email"`
	// Name はユーザーの表示名。
	Name string `json:"name,omitempty"`
}

// GenerateToken はメールアドレスと表示名からHS256で署名したトークンを生成する。
func GenerateToken(secret, email, name string, ttl time.Duration) (string, error) {
	if email == "" {
		return "", ErrMissingEmail
	}
	now := time.Now()
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   email,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
		Email: email,
		Name:  name,
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(secret))
	if err != nil {
		return "", fmt.Errorf("JWTトークンの署名に失敗: %w", err)
	}
	return signed, nil
}

// ParseToken はトークンの署名と有効期限を検証してクレームを返す。
// HS256以外の署名方式は拒否する。
func ParseToken(secret, tokenString string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(_ *jwt.Token) (any, error) {
		return []byte(secret), nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithExpirationRequired())
	if err != nil {
		return nil, fmt.Errorf("トークンの検証に失敗: %w", err)
	}
	if !token.Valid {
		return nil, errors.New("トークンが無効です")
	}
	if claims.Email == "" {
		return nil, ErrMissingEmail
	}
	return claims, nil
}

// SetTokenCookie はセッショントークンをHttpOnlyクッキーとして設定する。
// フロントエンドが別オリジンのためSameSite=Noneで発行する。
func SetTokenCookie(c *gin.Context, token string, ttl time.Duration, secure bool) {
	c.SetSameSite(http.SameSiteNoneMode)
	c.SetCookie(TokenCookieName, token, int(ttl.Seconds()), "/", "", secure, true)
}

// ClearTokenCookie はセッショントークンのクッキーを即時失効させる。
func ClearTokenCookie(c *gin.Context, secure bool) {
	c.SetSameSite(http.SameSiteNoneMode)
	c.SetCookie(TokenCookieName, "", -1, "/", "", secure, true)
}

// RequireAuth はクッキーのセッショントークンを検証するGinミドルウェアを返す。
// 検証に成功した場合、コンテキストに "email" と "claims" を設定する。
func RequireAuth(secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString, err := c.Cookie(TokenCookieName)
		if err != nil || tokenString == "" {
			abortUnauthorized(c)
			return
		}

		claims, err := ParseToken(secret, tokenString)
		if err != nil {
			abortUnauthorized(c)
			return
		}

		c.Set("email", claims.Email)
		c.Set("claims", claims)
		c.Next()
	}
}

func abortUnauthorized(c *gin.Context) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
		"success": false,
		"message": "Unauthorized",
	})
}

// GetEmail はGinコンテキストから認証済みユーザーのメールアドレスを取得する。
// RequireAuthミドルウェアが事前に適用されている必要がある。
func GetEmail(c *gin.Context) string {
	email, _ := c.Get("email")
	if s, ok := email.(string); ok {
		return s
	}
	return ""
}
