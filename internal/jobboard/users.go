package jobboard

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/nao1215/jobnest/internal/store"
)

// upsertUserRequest はユーザー登録リクエストのJSON構造。
// メールアドレスはパスパラメータから取る。
type upsertUserRequest struct {
	// Name は表示名。
	Name string `json:"name"`
	// Role は権限ロール。
	Role string `json:"role"`
}

// handleUpsertUser はログイン時のユーザー登録を処理するハンドラを返す。
// 既存ユーザーは最終アクセス日時のみ更新され、名前とロールは変わらない。
func (s *Server) handleUpsertUser() gin.HandlerFunc {
	return func(c *gin.Context) {
		email := c.Param("email")

		var req upsertUserRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondError(c, http.StatusBadRequest, "Invalid request body")
			return
		}

		result, err := s.store.UpsertUser(c.Request.Context(), store.User{
			Email: email,
			Name:  req.Name,
			Role:  req.Role,
		}, s.now())
		if err != nil {
			respondStoreError(c, "ユーザー登録", err)
			return
		}

		c.JSON(http.StatusOK, result)
	}
}

// handleGetUser はメールアドレスでユーザーを取得するハンドラを返す。
// 見つからない場合はnullを返す。
func (s *Server) handleGetUser() gin.HandlerFunc {
	return func(c *gin.Context) {
		user, err := s.store.GetUser(c.Request.Context(), c.Query("email"))
		if err != nil {
			respondStoreError(c, "ユーザー取得", err)
			return
		}

		c.JSON(http.StatusOK, user)
	}
}

// handleGetRole はユーザーのロールを返すハンドラを返す。
func (s *Server) handleGetRole() gin.HandlerFunc {
	return func(c *gin.Context) {
		user, err := s.store.GetUser(c.Request.Context(), c.Query("email"))
		if err != nil {
			respondStoreError(c, "ロール取得", err)
			return
		}
		if user == nil {
			respondError(c, http.StatusNotFound, "User not found")
			return
		}

		c.JSON(http.StatusOK, gin.H{"role": user.Role})
	}
}
