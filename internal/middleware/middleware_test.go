package middleware_test

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"go-payroll/internal/domain"
	"go-payroll/internal/middleware"
	"go-payroll/internal/shared/contextutil"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redismock/v9"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const testSecret = "test-secret"

type apiError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type apiEnvelope struct {
	Ok    bool            `json:"ok"`
	Data  json.RawMessage `json:"data"`
	Error *apiError       `json:"error"`
}

func decodeEnvelope(t *testing.T, w *httptest.ResponseRecorder) apiEnvelope {
	t.Helper()
	var env apiEnvelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	return env
}

func signToken(t *testing.T, claims jwt.MapClaims) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	s, err := token.SignedString([]byte(testSecret))
	require.NoError(t, err)
	return s
}

func newRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	return gin.New()
}

func TestAuthMiddleware(t *testing.T) {
	r := newRouter()
	r.GET("/me", middleware.AuthMiddleware(testSecret), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"user_id":     c.GetString("user_id"),
			"employee_id": c.GetString("employee_id"),
			"company_id":  contextutil.GetCompanyID(c.Request.Context()),
		})
	})

	t.Run("valid bearer token", func(t *testing.T) {
		token := signToken(t, jwt.MapClaims{
			"user_id":     "u-1",
			"company_id":  "c-1",
			"employee_id": "e-1",
			"exp":         time.Now().Add(time.Hour).Unix(),
		})

		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/me", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		r.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		var body map[string]string
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
		assert.Equal(t, "u-1", body["user_id"])
		assert.Equal(t, "e-1", body["employee_id"])
		assert.Equal(t, "c-1", body["company_id"])
	})

	t.Run("cookie token without employee falls back to user", func(t *testing.T) {
		token := signToken(t, jwt.MapClaims{"user_id": "u-2", "company_id": "c-1"})

		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/me", nil)
		req.AddCookie(&http.Cookie{Name: "access_token", Value: token})
		r.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		var body map[string]string
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
		assert.Equal(t, "u-2", body["employee_id"])
	})

	t.Run("missing token", func(t *testing.T) {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/me", nil))

		assert.Equal(t, http.StatusUnauthorized, w.Code)
		env := decodeEnvelope(t, w)
		assert.False(t, env.Ok)
		assert.Equal(t, "UNAUTHORIZED", env.Error.Code)
	})

	t.Run("expired token", func(t *testing.T) {
		token := signToken(t, jwt.MapClaims{
			"user_id":    "u-1",
			"company_id": "c-1",
			"exp":        time.Now().Add(-time.Minute).Unix(),
		})

		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/me", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		r.ServeHTTP(w, req)

		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.Equal(t, "TOKEN_EXPIRED", decodeEnvelope(t, w).Error.Code)
	})

	t.Run("wrong secret", func(t *testing.T) {
		token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{"user_id": "u-1", "company_id": "c-1"})
		signed, err := token.SignedString([]byte("other"))
		require.NoError(t, err)

		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/me", nil)
		req.Header.Set("Authorization", "Bearer "+signed)
		r.ServeHTTP(w, req)

		assert.Equal(t, "INVALID_TOKEN", decodeEnvelope(t, w).Error.Code)
	})

	t.Run("missing company claim", func(t *testing.T) {
		token := signToken(t, jwt.MapClaims{"user_id": "u-1"})

		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/me", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		r.ServeHTTP(w, req)

		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})
}

type fakeRBACService struct {
	EnforceFn func(req domain.EnforceRequest) (bool, error)
}

func (f *fakeRBACService) Enforce(req domain.EnforceRequest) (bool, error) {
	return f.EnforceFn(req)
}

func TestRBACAuthorize(t *testing.T) {
	withAuth := func(c *gin.Context) {
		c.Set("employee_id", "e-1")
		c.Set("company_id", "c-1")
		c.Next()
	}

	t.Run("allowed", func(t *testing.T) {
		svc := &fakeRBACService{EnforceFn: func(req domain.EnforceRequest) (bool, error) {
			assert.Equal(t, "salary_template", req.Resource)
			assert.Equal(t, "create", req.Action)
			assert.Equal(t, "e-1", req.EmployeeID)
			return true, nil
		}}
		r := newRouter()
		r.POST("/t", withAuth, middleware.RBACAuthorize(svc, "salary_template", "create"), func(c *gin.Context) {
			c.Status(http.StatusNoContent)
		})

		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/t", nil))
		assert.Equal(t, http.StatusNoContent, w.Code)
	})

	t.Run("denied", func(t *testing.T) {
		svc := &fakeRBACService{EnforceFn: func(domain.EnforceRequest) (bool, error) { return false, nil }}
		r := newRouter()
		r.POST("/t", withAuth, middleware.RBACAuthorize(svc, "salary_template", "create"), func(c *gin.Context) {
			t.Fatal("handler must not run")
		})

		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/t", nil))
		assert.Equal(t, http.StatusForbidden, w.Code)
		assert.Equal(t, "FORBIDDEN", decodeEnvelope(t, w).Error.Code)
	})

	t.Run("enforcer error", func(t *testing.T) {
		svc := &fakeRBACService{EnforceFn: func(domain.EnforceRequest) (bool, error) { return false, errors.New("db down") }}
		r := newRouter()
		r.POST("/t", withAuth, middleware.RBACAuthorize(svc, "salary_template", "create"))

		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/t", nil))
		assert.Equal(t, http.StatusInternalServerError, w.Code)
	})

	t.Run("missing auth context", func(t *testing.T) {
		svc := &fakeRBACService{}
		r := newRouter()
		r.POST("/t", middleware.RBACAuthorize(svc, "salary_template", "create"))

		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/t", nil))
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})
}

func TestRateLimitByUser(t *testing.T) {
	r := newRouter()
	r.POST("/preview",
		func(c *gin.Context) { c.Set("user_id", "u-1"); c.Next() },
		middleware.RateLimitByUser(1, 2),
		func(c *gin.Context) { c.Status(http.StatusOK) },
	)

	codes := make([]int, 0, 3)
	for i := 0; i < 3; i++ {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/preview", nil))
		codes = append(codes, w.Code)
	}

	assert.Equal(t, []int{http.StatusOK, http.StatusOK, http.StatusTooManyRequests}, codes)
}

func TestIdempotency(t *testing.T) {
	const path = "/templates"
	const cacheKey = "idemp:/templates:u-1:key-1"

	newIdempotentRouter := func(mw gin.HandlerFunc, handler gin.HandlerFunc) *gin.Engine {
		r := newRouter()
		r.POST(path, func(c *gin.Context) { c.Set("user_id_validated", "u-1"); c.Next() }, mw, handler)
		return r
	}

	t.Run("replays cached response", func(t *testing.T) {
		rdb, mock := redismock.NewClientMock()
		mock.ExpectGet(cacheKey).SetVal(`{"id":"tmpl-1"}`)

		r := newIdempotentRouter(middleware.Idempotency(rdb), func(c *gin.Context) {
			t.Fatal("handler must not run on replay")
		})

		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, path, nil)
		req.Header.Set("Idempotency-Key", "key-1")
		r.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		env := decodeEnvelope(t, w)
		assert.True(t, env.Ok)
		assert.JSONEq(t, `{"id":"tmpl-1"}`, string(env.Data))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("first request takes the lock", func(t *testing.T) {
		rdb, mock := redismock.NewClientMock()
		mock.ExpectGet(cacheKey).RedisNil()
		mock.ExpectSetNX(cacheKey+":lock", "locked", 30*time.Second).SetVal(true)

		var gotCacheKey, gotLockKey string
		r := newIdempotentRouter(middleware.Idempotency(rdb), func(c *gin.Context) {
			gotCacheKey = c.GetString(middleware.IdempotencyCacheKey)
			gotLockKey = c.GetString(middleware.IdempotencyLockKey)
			c.Status(http.StatusCreated)
		})

		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, path, nil)
		req.Header.Set("Idempotency-Key", "key-1")
		r.ServeHTTP(w, req)

		assert.Equal(t, http.StatusCreated, w.Code)
		assert.Equal(t, cacheKey, gotCacheKey)
		assert.Equal(t, cacheKey+":lock", gotLockKey)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("concurrent retry is rejected", func(t *testing.T) {
		rdb, mock := redismock.NewClientMock()
		mock.ExpectGet(cacheKey).RedisNil()
		mock.ExpectSetNX(cacheKey+":lock", "locked", 30*time.Second).SetVal(false)

		r := newIdempotentRouter(middleware.Idempotency(rdb), func(c *gin.Context) {
			t.Fatal("handler must not run while locked")
		})

		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, path, nil)
		req.Header.Set("Idempotency-Key", "key-1")
		r.ServeHTTP(w, req)

		assert.Equal(t, http.StatusConflict, w.Code)
		assert.Equal(t, "PROCESSING", decodeEnvelope(t, w).Error.Code)
	})

	t.Run("no key passes through", func(t *testing.T) {
		rdb, mock := redismock.NewClientMock()
		r := newIdempotentRouter(middleware.Idempotency(rdb), func(c *gin.Context) {
			c.Status(http.StatusCreated)
		})

		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, path, nil))

		assert.Equal(t, http.StatusCreated, w.Code)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestContextLogger(t *testing.T) {
	r := newRouter()
	r.Use(middleware.ContextLogger(zap.NewNop()))
	r.GET("/ping", func(c *gin.Context) {
		c.String(http.StatusOK, contextutil.GetRequestID(c.Request.Context()))
	})

	t.Run("echoes caller request id", func(t *testing.T) {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/ping", nil)
		req.Header.Set("X-Request-ID", "rid-abc")
		r.ServeHTTP(w, req)

		assert.Equal(t, "rid-abc", w.Header().Get("X-Request-ID"))
		assert.Equal(t, "rid-abc", w.Body.String())
	})

	t.Run("generates request id", func(t *testing.T) {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ping", nil))

		rid := w.Header().Get("X-Request-ID")
		assert.NotEmpty(t, rid)
		assert.Equal(t, rid, w.Body.String())
	})
}
