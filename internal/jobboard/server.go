package jobboard

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/nao1215/jobnest/internal/config"
	"github.com/nao1215/jobnest/internal/store"
	"github.com/nao1215/jobnest/pkg/middleware"
)

// Server は求人ボードのHTTPサーバー。
type Server struct {
	// router はGinのHTTPルーター。
	router *gin.Engine
	// port はサーバーのリッスンポート。
	port string
	// store は求人・応募・ユーザーの永続化層。
	store store.Store
	// auth はセッショントークンの設定。
	auth config.AuthConfig
	// upsertOnUpdate は求人更新で存在しないIDを新規作成するかどうか。
	upsertOnUpdate bool
	// now は現在時刻を返す。テストで差し替える。
	now func() time.Time
}

// NewServer は新しい求人ボードサーバーを生成する。
// ストアの生成と破棄は呼び出し側の責務。
func NewServer(cfg config.Config, st store.Store) *Server {
	router := gin.New()
	router.Use(middleware.Recovery())
	router.Use(gin.Logger())
	router.Use(middleware.CORS(cfg.AllowedOrigins))

	s := &Server{
		router:         router,
		port:           cfg.Port,
		store:          st,
		auth:           cfg.Auth,
		upsertOnUpdate: cfg.JobUpdateUpsert,
		now:            time.Now,
	}
	s.setupRoutes()

	return s
}

// Run はHTTPサーバーを起動する。
func (s *Server) Run() error {
	return s.router.Run(fmt.Sprintf(":%s", s.port))
}

// ServeHTTP はルーターにリクエストを委譲する。
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// setupRoutes はAPIルーティングを設定する。
func (s *Server) setupRoutes() {
	requireAuth := middleware.RequireAuth(s.auth.Secret)

	s.router.GET("/", func(c *gin.Context) {
		c.String(http.StatusOK, "JobNest is Running")
	})
	// ヘルスチェック
	s.router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "service": "jobnest"})
	})

	// セッショントークン
	s.router.POST("/create-jwt", s.handleCreateToken())
	s.router.POST("/remove-jwt", s.handleRemoveToken())

	// ユーザー
	s.router.PUT("/all-users/:email", s.handleUpsertUser())
	s.router.GET("/user", requireAuth, s.handleGetUser())
	s.router.GET("/get-role", s.handleGetRole())

	// 求人
	s.router.GET("/all-jobs", s.handleListJobs())
	s.router.GET("/my-jobs", requireAuth, s.handleListMyJobs())
	s.router.GET("/job-details/:id", s.handleGetJob())
	s.router.POST("/add-a-job", s.handleCreateJob())
	s.router.PATCH("/update-a-job/:id", s.handleUpdateJob())
	s.router.PATCH("/applicants-count/:id", s.handleIncrementApplicants())
	s.router.DELETE("/delete-my-job/:id", s.handleDeleteJob())

	// 応募
	s.router.POST("/add-a-applied-job", s.handleCreateApplication())
	s.router.POST("/get-a-applied-job", s.handleFindApplication())
	s.router.GET("/applied-jobs", requireAuth, s.handleListApplications())
	s.router.PUT("/update-jobs/:id", s.handleUpdateApplications())
	s.router.DELETE("/delete-my-job-from-applied-job/:id", s.handleDeleteApplications())
}
