package middleware

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"

	"qywxbot/wecom/pkg/wxerr"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func TestFromError(t *testing.T) {
	cases := []struct {
		err    error
		status int
		code   int
	}{
		{wxerr.Validation("text content too long"), http.StatusBadRequest, 400},
		{fmt.Errorf("wrap: %w", wxerr.NotFound("file not found: /a")), http.StatusNotFound, 404},
		{wxerr.Remote(40009, "invalid media size"), http.StatusBadGateway, 40009},
		{wxerr.Protocol(nil, "not json"), http.StatusBadGateway, 50200},
		{wxerr.Transport(nil, "timed out").WithTimeout(), http.StatusGatewayTimeout, 50200},
		{errors.New("boom"), http.StatusInternalServerError, 50000},
	}
	for _, tc := range cases {
		e := FromError(tc.err)
		if e.HttpCode != tc.status || e.Code != tc.code {
			t.Fatalf("%v: got status=%d code=%d", tc.err, e.HttpCode, e.Code)
		}
	}
}

func TestFailedAndRequestID(t *testing.T) {
	r := gin.New()
	r.Use(RequestID())
	r.GET("/fail", func(c *gin.Context) {
		Failed(wxerr.Validation("articles must not be empty"), c)
	})
	r.GET("/ok", func(c *gin.Context) {
		Success(gin.H{"id": GetRequestID(c)}, c)
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/fail", nil))
	if w.Code != http.StatusBadRequest {
		t.Fatalf("unexpected status %d", w.Code)
	}
	var body map[string]any
	_ = json.Unmarshal(w.Body.Bytes(), &body)
	if body["kind"] != "validation" || body["code"].(float64) != 400 {
		t.Fatalf("unexpected body %s", w.Body.String())
	}
	if w.Header().Get(RequestIDHeader) == "" {
		t.Fatalf("request id header missing")
	}

	req := httptest.NewRequest(http.MethodGet, "/ok", nil)
	req.Header.Set(RequestIDHeader, "fixed-id")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	var ok Response
	_ = json.Unmarshal(w.Body.Bytes(), &ok)
	if ok.Code != 0 || ok.Data.(map[string]any)["id"] != "fixed-id" {
		t.Fatalf("unexpected body %s", w.Body.String())
	}
}
