package jobboard

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/nao1215/jobnest/internal/store"
)

// findApplicationRequest は応募検索リクエストのJSON構造。
type findApplicationRequest struct {
	// Email は応募者のメールアドレス。
	Email string `json:"email"`
	// ID は求人ID。
	ID string `json:"id"`
}

// handleCreateApplication は応募の記録を処理するハンドラを返す。
// 同じ求人に同じ応募者が既に応募している場合は409を返す。
func (s *Server) handleCreateApplication() gin.HandlerFunc {
	return func(c *gin.Context) {
		var app store.AppliedJob
		if err := c.ShouldBindJSON(&app); err != nil {
			respondError(c, http.StatusBadRequest, "Invalid request body")
			return
		}
		if app.JobID == "" || app.ApplicantEmail == "" {
			respondError(c, http.StatusBadRequest, "jobID and applicantEmail are required")
			return
		}

		result, err := s.store.CreateApplication(c.Request.Context(), app)
		if err != nil {
			respondStoreError(c, "応募作成", err)
			return
		}

		c.JSON(http.StatusOK, result)
	}
}

// handleFindApplication は求人IDと応募者で応募を検索するハンドラを返す。
// 見つからない場合はnullを返す。
func (s *Server) handleFindApplication() gin.HandlerFunc {
	return func(c *gin.Context) {
		var req findApplicationRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondError(c, http.StatusBadRequest, "Invalid request body")
			return
		}

		app, err := s.store.FindApplication(c.Request.Context(), req.ID, req.Email)
		if err != nil {
			respondStoreError(c, "応募検索", err)
			return
		}

		c.JSON(http.StatusOK, app)
	}
}

// handleListApplications は応募者の応募一覧を返すハンドラを返す。
func (s *Server) handleListApplications() gin.HandlerFunc {
	return func(c *gin.Context) {
		apps, err := s.store.ListApplicationsForUser(c.Request.Context(), c.Query("email"))
		if err != nil {
			respondStoreError(c, "応募一覧取得", err)
			return
		}
		if apps == nil {
			apps = []store.AppliedJob{}
		}

		c.JSON(http.StatusOK, apps)
	}
}

// handleUpdateApplications は求人を参照する応募の求人情報を一括更新するハンドラを返す。
func (s *Server) handleUpdateApplications() gin.HandlerFunc {
	return func(c *gin.Context) {
		var update store.JobUpdate
		if err := c.ShouldBindJSON(&update); err != nil {
			respondError(c, http.StatusBadRequest, "Invalid request body")
			return
		}

		result, err := s.store.UpdateApplicationsForJob(c.Request.Context(), c.Param("id"), update)
		if err != nil {
			respondStoreError(c, "応募一括更新", err)
			return
		}

		c.JSON(http.StatusOK, result)
	}
}

// handleDeleteApplications は求人を参照する応募をすべて削除するハンドラを返す。
func (s *Server) handleDeleteApplications() gin.HandlerFunc {
	return func(c *gin.Context) {
		result, err := s.store.DeleteApplicationsForJob(c.Request.Context(), c.Param("id"))
		if err != nil {
			respondStoreError(c, "応募削除", err)
			return
		}

		c.JSON(http.StatusOK, result)
	}
}
