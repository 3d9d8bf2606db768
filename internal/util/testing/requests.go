package test_utils

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
)

type RequestOptions struct {
	Method         string
	URL            string
	Body           any
	RawBody        []byte
	Headers        map[string]string
	AuthToken      string
	ExpectedStatus int
}

type TestResponse struct {
	StatusCode int
	Body       []byte
	Headers    http.Header
}

// MakeRequest runs a request against the router and asserts the status code.
// RawBody is sent as-is and takes precedence over Body.
func MakeRequest(t *testing.T, router *gin.Engine, options RequestOptions) *TestResponse {
	t.Helper()

	var body io.Reader
	switch {
	case options.RawBody != nil:
		body = bytes.NewReader(options.RawBody)
	case options.Body != nil:
		encoded, err := json.Marshal(options.Body)
		require.NoError(t, err, "failed to marshal request body")
		body = bytes.NewReader(encoded)
	}

	req, err := http.NewRequest(options.Method, options.URL, body)
	require.NoError(t, err, "failed to create request")

	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	if options.AuthToken != "" {
		req.Header.Set("Authorization", options.AuthToken)
	}

	for key, value := range options.Headers {
		req.Header.Set(key, value)
	}

	recorder := httptest.NewRecorder()
	router.ServeHTTP(recorder, req)

	if options.ExpectedStatus != 0 {
		require.Equal(t, options.ExpectedStatus, recorder.Code,
			"unexpected status for %s %s, body: %s", options.Method, options.URL, recorder.Body.String())
	}

	return &TestResponse{
		StatusCode: recorder.Code,
		Body:       recorder.Body.Bytes(),
		Headers:    recorder.Header(),
	}
}

func MakeGetRequest(
	t *testing.T,
	router *gin.Engine,
	url, authToken string,
	expectedStatus int,
) *TestResponse {
	return MakeRequest(t, router, RequestOptions{
		Method:         http.MethodGet,
		URL:            url,
		AuthToken:      authToken,
		ExpectedStatus: expectedStatus,
	})
}

func MakeGetRequestAndUnmarshal(
	t *testing.T,
	router *gin.Engine,
	url, authToken string,
	expectedStatus int,
	target any,
) *TestResponse {
	resp := MakeGetRequest(t, router, url, authToken, expectedStatus)
	require.NoError(t, json.Unmarshal(resp.Body, target), "failed to unmarshal response: %s", string(resp.Body))
	return resp
}

func MakePostRequest(
	t *testing.T,
	router *gin.Engine,
	url, authToken string,
	body any,
	expectedStatus int,
) *TestResponse {
	return MakeRequest(t, router, RequestOptions{
		Method:         http.MethodPost,
		URL:            url,
		Body:           body,
		AuthToken:      authToken,
		ExpectedStatus: expectedStatus,
	})
}

func MakePostRequestAndUnmarshal(
	t *testing.T,
	router *gin.Engine,
	url, authToken string,
	body any,
	expectedStatus int,
	target any,
) *TestResponse {
	resp := MakePostRequest(t, router, url, authToken, body, expectedStatus)
	require.NoError(t, json.Unmarshal(resp.Body, target), "failed to unmarshal response: %s", string(resp.Body))
	return resp
}
