package collector_middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/klauspost/compress/gzip"
)

// DecompressRequestMiddleware transparently inflates request bodies sent with
// Content-Encoding: gzip.
func DecompressRequestMiddleware() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		encoding := strings.ToLower(strings.TrimSpace(ctx.GetHeader("Content-Encoding")))
		if encoding != "gzip" || ctx.Request.Body == nil {
			ctx.Next()
			return
		}

		reader, err := gzip.NewReader(ctx.Request.Body)
		if err != nil {
			ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid gzip request body"})
			ctx.Abort()
			return
		}
		defer func() { _ = reader.Close() }()

		ctx.Request.Body = reader
		ctx.Request.Header.Del("Content-Encoding")
		ctx.Request.Header.Del("Content-Length")
		ctx.Request.ContentLength = -1

		ctx.Next()
	}
}
