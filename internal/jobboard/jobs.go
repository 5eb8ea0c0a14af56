package jobboard

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/nao1215/jobnest/internal/store"
	"github.com/nao1215/jobnest/pkg/middleware"
)

// handleListJobs は求人一覧を返すハンドラを返す。
// category・search・emailのうち最初に指定されたものだけで絞り込む。
func (s *Server) handleListJobs() gin.HandlerFunc {
	return func(c *gin.Context) {
		filter := store.NewJobFilter(c.Query("category"), c.Query("search"), c.Query("email"))
		s.respondJobs(c, filter)
	}
}

// handleListMyJobs はログイン中のユーザーが投稿した求人一覧を返すハンドラを返す。
// クエリのメールアドレスがトークンと一致しない場合は401を返す。
func (s *Server) handleListMyJobs() gin.HandlerFunc {
	return func(c *gin.Context) {
		email := c.Query("email")
		if email != middleware.GetEmail(c) {
			respondError(c, http.StatusUnauthorized, "Forbidden")
			return
		}

		s.respondJobs(c, store.JobFilter{Kind: store.JobFilterAuthorEmail, Value: email})
	}
}

func (s *Server) respondJobs(c *gin.Context, filter store.JobFilter) {
	jobs, err := s.store.ListJobs(c.Request.Context(), filter)
	if err != nil {
		respondStoreError(c, "求人一覧取得", err)
		return
	}
	if jobs == nil {
		jobs = []store.Job{}
	}

	c.JSON(http.StatusOK, jobs)
}

// handleGetJob は求人詳細を返すハンドラを返す。見つからない場合はnullを返す。
func (s *Server) handleGetJob() gin.HandlerFunc {
	return func(c *gin.Context) {
		job, err := s.store.GetJob(c.Request.Context(), c.Param("id"))
		if err != nil {
			respondStoreError(c, "求人取得", err)
			return
		}

		c.JSON(http.StatusOK, job)
	}
}

// handleCreateJob は求人の掲載を処理するハンドラを返す。
func (s *Server) handleCreateJob() gin.HandlerFunc {
	return func(c *gin.Context) {
		var job store.Job
		if err := c.ShouldBindJSON(&job); err != nil {
			respondError(c, http.StatusBadRequest, "Invalid request body")
			return
		}
		job.ID = ""

		result, err := s.store.CreateJob(c.Request.Context(), job)
		if err != nil {
			respondStoreError(c, "求人作成", err)
			return
		}

		c.JSON(http.StatusOK, result)
	}
}

// handleUpdateJob は求人の更新を処理するハンドラを返す。
// 応募レコードに複製された求人情報も同じトランザクションで更新する。
func (s *Server) handleUpdateJob() gin.HandlerFunc {
	return func(c *gin.Context) {
		var update store.JobUpdate
		if err := c.ShouldBindJSON(&update); err != nil {
			respondError(c, http.StatusBadRequest, "Invalid request body")
			return
		}

		result, err := s.store.UpdateJobCascade(c.Request.Context(), c.Param("id"), update, s.upsertOnUpdate)
		if err != nil {
			respondStoreError(c, "求人更新", err)
			return
		}

		c.JSON(http.StatusOK, result)
	}
}

// handleIncrementApplicants は応募者数を1増やすハンドラを返す。
// 古いクライアントが送るpreviousCountは読まない。
func (s *Server) handleIncrementApplicants() gin.HandlerFunc {
	return func(c *gin.Context) {
		result, err := s.store.IncrementApplicants(c.Request.Context(), c.Param("id"))
		if err != nil {
			respondStoreError(c, "応募者数更新", err)
			return
		}

		c.JSON(http.StatusOK, result)
	}
}

// handleDeleteJob は求人とその応募レコードを削除するハンドラを返す。
func (s *Server) handleDeleteJob() gin.HandlerFunc {
	return func(c *gin.Context) {
		result, err := s.store.DeleteJobCascade(c.Request.Context(), c.Param("id"))
		if err != nil {
			respondStoreError(c, "求人削除", err)
			return
		}

		c.JSON(http.StatusOK, result)
	}
}
