package jobboard

import (
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/nao1215/jobnest/internal/store"
)

// respondError は共通形式のエラーレスポンスを返す。
func respondError(c *gin.Context, status int, message string) {
	c.JSON(status, gin.H{"success": false, "message": message})
}

// respondStoreError はストアのエラーをHTTPステータスに変換して返す。
// 想定外のエラーはログにのみ出力し、クライアントには詳細を返さない。
func respondStoreError(c *gin.Context, op string, err error) {
	switch {
	case errors.Is(err, store.ErrInvalidID):
		respondError(c, http.StatusBadRequest, "Invalid id")
	case errors.Is(err, store.ErrNotFound):
		respondError(c, http.StatusNotFound, "Not found")
	case errors.Is(err, store.ErrDuplicateApplication):
		respondError(c, http.StatusConflict, "You have already applied for this job")
	default:
		log.Printf("%sエラー: %v", op, err)
		respondError(c, http.StatusInternalServerError, "Internal Server Error")
	}
}
