package jobboard

import (
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/nao1215/jobnest/pkg/middleware"
)

// createTokenRequest はトークン発行リクエストのJSON構造。
type createTokenRequest struct {
	// Email はログインしたユーザーのメールアドレス。
	Email string `json:"email" binding:"required"`
	// Name はユーザーの表示名。
	Name string `json:"name"`
}

// handleCreateToken はセッショントークンを発行してクッキーに設定するハンドラを返す。
func (s *Server) handleCreateToken() gin.HandlerFunc {
	return func(c *gin.Context) {
		var req createTokenRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondError(c, http.StatusBadRequest, "email is required")
			return
		}

		token, err := middleware.GenerateToken(s.auth.Secret, req.Email, req.Name, s.auth.TokenTTL)
		if err != nil {
			log.Printf("トークン発行エラー: %v", err)
			respondError(c, http.StatusInternalServerError, "Internal Server Error")
			return
		}

		middleware.SetTokenCookie(c, token, s.auth.TokenTTL, s.auth.CookieSecure)
		c.JSON(http.StatusOK, gin.H{"success": true})
	}
}

// handleRemoveToken はセッショントークンのクッキーを失効させるハンドラを返す。
func (s *Server) handleRemoveToken() gin.HandlerFunc {
	return func(c *gin.Context) {
		middleware.ClearTokenCookie(c, s.auth.CookieSecure)
		c.JSON(http.StatusOK, gin.H{"success": true})
	}
}
