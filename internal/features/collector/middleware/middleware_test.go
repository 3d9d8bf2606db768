package collector_middleware

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"testing"
	"time"

	test_utils "nesttelemetry/internal/util/testing"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v4"
	"github.com/klauspost/compress/gzip"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "collector-test-secret"

func createRouter(middleware gin.HandlerFunc) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(middleware)

	router.POST("/echo", func(ctx *gin.Context) {
		body, err := io.ReadAll(ctx.Request.Body)
		if err != nil {
			ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		subject, _ := ctx.Get(SubjectContextKey)
		ctx.JSON(http.StatusOK, gin.H{"body": string(body), "subject": subject})
	})

	return router
}

func signToken(t *testing.T, method jwt.SigningMethod, key any, claims jwt.MapClaims) string {
	token, err := jwt.NewWithClaims(method, claims).SignedString(key)
	require.NoError(t, err)
	return token
}

func Test_AuthMiddleware_WithEmptySecret_AllowsAnonymousRequests(t *testing.T) {
	router := createRouter(AuthMiddleware(""))

	test_utils.MakePostRequest(t, router, "/echo", "", map[string]string{"a": "b"}, http.StatusOK)
}

func Test_AuthMiddleware_WithoutToken_ReturnsUnauthorized(t *testing.T) {
	router := createRouter(AuthMiddleware(testSecret))

	resp := test_utils.MakePostRequest(t, router, "/echo", "", map[string]string{}, http.StatusUnauthorized)
	assert.Contains(t, string(resp.Body), "Authorization token required")
}

func Test_AuthMiddleware_WithValidToken_SetsSubject(t *testing.T) {
	router := createRouter(AuthMiddleware(testSecret))
	token := signToken(t, jwt.SigningMethodHS256, []byte(testSecret), jwt.MapClaims{
		"sub": "web-frontend",
		"exp": time.Now().Add(time.Hour).Unix(),
	})

	var response map[string]any
	test_utils.MakePostRequestAndUnmarshal(
		t, router, "/echo", "Bearer "+token, map[string]string{}, http.StatusOK, &response,
	)

	assert.Equal(t, "web-frontend", response["subject"])
}

func Test_AuthMiddleware_WithWrongSecret_ReturnsUnauthorized(t *testing.T) {
	router := createRouter(AuthMiddleware(testSecret))
	token := signToken(t, jwt.SigningMethodHS256, []byte("other-secret"), jwt.MapClaims{"sub": "x"})

	resp := test_utils.MakePostRequest(t, router, "/echo", "Bearer "+token, map[string]string{}, http.StatusUnauthorized)
	assert.Contains(t, string(resp.Body), "Invalid token")
}

func Test_AuthMiddleware_WithExpiredToken_ReturnsUnauthorized(t *testing.T) {
	router := createRouter(AuthMiddleware(testSecret))
	token := signToken(t, jwt.SigningMethodHS256, []byte(testSecret), jwt.MapClaims{
		"sub": "x",
		"exp": time.Now().Add(-time.Hour).Unix(),
	})

	test_utils.MakePostRequest(t, router, "/echo", "Bearer "+token, map[string]string{}, http.StatusUnauthorized)
}

func Test_AuthMiddleware_WithUnsignedToken_ReturnsUnauthorized(t *testing.T) {
	router := createRouter(AuthMiddleware(testSecret))
	token := signToken(t, jwt.SigningMethodNone, jwt.UnsafeAllowNoneSignatureType, jwt.MapClaims{"sub": "x"})

	test_utils.MakePostRequest(t, router, "/echo", "Bearer "+token, map[string]string{}, http.StatusUnauthorized)
}

func Test_DecompressRequestMiddleware_WithGzipBody_InflatesIt(t *testing.T) {
	router := createRouter(DecompressRequestMiddleware())

	var compressed bytes.Buffer
	writer := gzip.NewWriter(&compressed)
	_, err := writer.Write([]byte(`{"logs":[]}`))
	require.NoError(t, err)
	require.NoError(t, writer.Close())

	var response map[string]any
	resp := test_utils.MakeRequest(t, router, test_utils.RequestOptions{
		Method:         http.MethodPost,
		URL:            "/echo",
		RawBody:        compressed.Bytes(),
		Headers:        map[string]string{"Content-Encoding": "gzip"},
		ExpectedStatus: http.StatusOK,
	})
	require.NoError(t, json.Unmarshal(resp.Body, &response))

	assert.Equal(t, `{"logs":[]}`, response["body"])
}

func Test_DecompressRequestMiddleware_WithCorruptGzip_ReturnsBadRequest(t *testing.T) {
	router := createRouter(DecompressRequestMiddleware())

	resp := test_utils.MakeRequest(t, router, test_utils.RequestOptions{
		Method:         http.MethodPost,
		URL:            "/echo",
		RawBody:        []byte("definitely not gzip"),
		Headers:        map[string]string{"Content-Encoding": "gzip"},
		ExpectedStatus: http.StatusBadRequest,
	})

	assert.Contains(t, string(resp.Body), "Invalid gzip request body")
}

func Test_DecompressRequestMiddleware_WithPlainBody_PassesThrough(t *testing.T) {
	router := createRouter(DecompressRequestMiddleware())

	var response map[string]any
	test_utils.MakePostRequestAndUnmarshal(
		t, router, "/echo", "", map[string]int{"n": 1}, http.StatusOK, &response,
	)

	assert.Equal(t, `{"n":1}`, response["body"])
}
