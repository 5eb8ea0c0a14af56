package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
)

func newCORSRouter(origins ...string) (*gin.Engine, *bool) {
	called := false
	router := gin.New()
	router.Use(CORS(origins))
	router.GET("/jobs", func(c *gin.Context) {
		called = true
		c.JSON(http.StatusOK, []any{})
	})
	return router, &called
}

// TestCORS はCORSミドルウェアを検証する。
func TestCORS(t *testing.T) {
	t.Parallel()

	t.Run("許可されたオリジンにクレデンシャル付きのCORSヘッダーが設定されること", func(t *testing.T) {
		t.Parallel()

		router, called := newCORSRouter("http://localhost:5173", "https://jobnest.example.com")

		req := httptest.NewRequest(http.MethodGet, "/jobs", nil)
		req.Header.Set("Origin", "https://jobnest.example.com")
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		if w.Code != http.StatusOK {
			t.Errorf("ステータスコード = %d, want %d", w.Code, http.StatusOK)
		}
		if !*called {
			t.Error("ハンドラーが呼ばれるべき")
		}
		if got := w.Header().Get("Access-Control-Allow-Origin"); got != "https://jobnest.example.com" {
			t.Errorf("Access-Control-Allow-Origin = %q, want %q", got, "https://jobnest.example.com")
		}
		if got := w.Header().Get("Access-Control-Allow-Credentials"); got != "true" {
			t.Errorf("Access-Control-Allow-Credentials = %q, want %q", got, "true")
		}
	})

	t.Run("許可されたオリジンのプリフライトは204でハンドラーに到達しないこと", func(t *testing.T) {
		t.Parallel()

		router, called := newCORSRouter("http://localhost:5173")

		req := httptest.NewRequest(http.MethodOptions, "/jobs", nil)
		req.Header.Set("Origin", "http://localhost:5173")
		req.Header.Set("Access-Control-Request-Method", http.MethodPatch)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		if w.Code != http.StatusNoContent {
			t.Errorf("ステータスコード = %d, want %d", w.Code, http.StatusNoContent)
		}
		if *called {
			t.Error("プリフライトでハンドラーが呼ばれるべきではない")
		}
		if got := w.Header().Get("Access-Control-Allow-Origin"); got != "http://localhost:5173" {
			t.Errorf("Access-Control-Allow-Origin = %q, want %q", got, "http://localhost:5173")
		}
	})

	t.Run("許可されていないオリジンは403で中断されること", func(t *testing.T) {
		t.Parallel()

		router, called := newCORSRouter("http://localhost:5173")

		req := httptest.NewRequest(http.MethodGet, "/jobs", nil)
		req.Header.Set("Origin", "https://evil.example.com")
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		if w.Code != http.StatusForbidden {
			t.Errorf("ステータスコード = %d, want %d", w.Code, http.StatusForbidden)
		}
		if *called {
			t.Error("ハンドラーが呼ばれるべきではない")
		}
		if got := w.Header().Get("Access-Control-Allow-Origin"); got != "" {
			t.Errorf("Access-Control-Allow-Origin = %q, want empty string", got)
		}
	})

	t.Run("Originヘッダーが無いリクエストはそのまま処理されること", func(t *testing.T) {
		t.Parallel()

		router, called := newCORSRouter("http://localhost:5173")

		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/jobs", nil))

		if w.Code != http.StatusOK {
			t.Errorf("ステータスコード = %d, want %d", w.Code, http.StatusOK)
		}
		if !*called {
			t.Error("ハンドラーが呼ばれるべき")
		}
	})
}
