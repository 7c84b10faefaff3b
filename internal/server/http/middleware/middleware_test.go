package middleware

import (
	"bytes"
	"compress/gzip"
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"

	pkgAuth "github.com/artmarket/settlement/internal/pkg/auth"
	testhelpers "github.com/artmarket/settlement/internal/test"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func serveWithAuth(t *testing.T, parser TokenParser, token string, handler gin.HandlerFunc) *httptest.ResponseRecorder {
	t.Helper()
	router := gin.New()
	router.Use(AuthRequired(parser))
	router.GET("/", handler)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	return resp
}

func TestAuthRequired(t *testing.T) {
	noop := func(c *gin.Context) { c.Status(http.StatusOK) }

	t.Run("missing token", func(t *testing.T) {
		resp := serveWithAuth(t, testhelpers.TokenParserStub{}, "", noop)
		if resp.Code != http.StatusUnauthorized {
			t.Fatalf("status = %d, want 401", resp.Code)
		}
	})

	t.Run("invalid token", func(t *testing.T) {
		resp := serveWithAuth(t, testhelpers.TokenParserStub{Err: pkgAuth.ErrInvalidToken}, "token", noop)
		if resp.Code != http.StatusUnauthorized {
			t.Fatalf("status = %d, want 401", resp.Code)
		}
	})

	t.Run("parser failure", func(t *testing.T) {
		resp := serveWithAuth(t, testhelpers.TokenParserStub{Err: context.DeadlineExceeded}, "token", noop)
		if resp.Code != http.StatusInternalServerError {
			t.Fatalf("status = %d, want 500", resp.Code)
		}
	})

	t.Run("valid token exposes user id", func(t *testing.T) {
		var storedID int64
		resp := serveWithAuth(t, testhelpers.TokenParserStub{ID: 42}, "token", func(c *gin.Context) {
			if v, ok := c.Get(UserIDContextKey); ok {
				storedID = v.(int64)
			}
			c.Status(http.StatusOK)
		})
		if resp.Code != http.StatusOK {
			t.Fatalf("status = %d, want 200", resp.Code)
		}
		if storedID != 42 {
			t.Fatalf("user id = %d, want 42", storedID)
		}
	})
}

func TestSetAuthCookie(t *testing.T) {
	recorder := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(recorder)
	SetAuthCookie(c, "token")

	if got := recorder.Header().Get("Authorization"); got != "Bearer token" {
		t.Fatalf("Authorization header = %q", got)
	}

	result := recorder.Result()
	t.Cleanup(func() { _ = result.Body.Close() })
	cookies := result.Cookies()
	if len(cookies) != 1 || cookies[0].Name != authCookieName || cookies[0].Value != "token" {
		t.Fatalf("cookies = %+v", cookies)
	}
	if !cookies[0].HttpOnly {
		t.Error("session cookie must be http-only")
	}
}

func TestExtractToken(t *testing.T) {
	newContext := func() *gin.Context {
		c, _ := gin.CreateTestContext(httptest.NewRecorder())
		c.Request = httptest.NewRequest(http.MethodGet, "/", nil)
		return c
	}

	c := newContext()
	if token := extractToken(c); token != "" {
		t.Fatalf("token = %q, want empty", token)
	}

	c = newContext()
	c.Request.Header.Set("Authorization", "Bearer abc")
	c.Request.AddCookie(&http.Cookie{Name: authCookieName, Value: "from-cookie"})
	if token := extractToken(c); token != "abc" {
		t.Fatalf("header should win over cookie, got %q", token)
	}

	c = newContext()
	c.Request.AddCookie(&http.Cookie{Name: authCookieName, Value: "from-cookie"})
	if token := extractToken(c); token != "from-cookie" {
		t.Fatalf("token = %q, want cookie value", token)
	}
}

func TestDecompressRequest(t *testing.T) {
	router := gin.New()
	router.Use(DecompressRequest())
	var body string
	router.POST("/", func(c *gin.Context) {
		data, _ := io.ReadAll(c.Request.Body)
		body = string(data)
		c.Status(http.StatusOK)
	})

	t.Run("gzip body", func(t *testing.T) {
		var buf bytes.Buffer
		gz := gzip.NewWriter(&buf)
		_, _ = gz.Write([]byte("payload"))
		_ = gz.Close()

		req := httptest.NewRequest(http.MethodPost, "/", &buf)
		req.Header.Set("Content-Encoding", "gzip")
		router.ServeHTTP(httptest.NewRecorder(), req)
		if body != "payload" {
			t.Fatalf("body = %q, want decompressed payload", body)
		}
	})

	t.Run("plain body passes through", func(t *testing.T) {
		body = ""
		req := httptest.NewRequest(http.MethodPost, "/", bytes.NewReader([]byte("plain")))
		router.ServeHTTP(httptest.NewRecorder(), req)
		if body != "plain" {
			t.Fatalf("body = %q, want plain", body)
		}
	})

	t.Run("corrupt gzip rejected", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/", bytes.NewReader([]byte("not gzip")))
		req.Header.Set("Content-Encoding", "gzip")
		resp := httptest.NewRecorder()
		router.ServeHTTP(resp, req)
		if resp.Code != http.StatusBadRequest {
			t.Fatalf("status = %d, want 400", resp.Code)
		}
	})
}

func TestRequestLogger(t *testing.T) {
	var logged bool
	handler := slog.NewJSONHandler(io.Discard, &slog.HandlerOptions{ReplaceAttr: func(groups []string, a slog.Attr) slog.Attr {
		if a.Key == slog.LevelKey && a.Value.Any() == slog.LevelInfo {
			logged = true
		}
		return a
	}})

	router := gin.New()
	router.Use(RequestLogger(slog.New(handler)))
	router.GET("/", func(c *gin.Context) { c.Status(http.StatusOK) })

	router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))
	if !logged {
		t.Fatal("expected request to be logged")
	}
}
