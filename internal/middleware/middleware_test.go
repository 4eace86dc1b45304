package middleware

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"caravanshare/internal/models"
	"caravanshare/internal/repositories/memory"
	"caravanshare/internal/utils"
	"caravanshare/pkg/logger"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

const testSecret = "middleware-secret"

func init() {
	gin.SetMode(gin.TestMode)
}

func whoAmI(c *gin.Context) {
	id, _ := UserID(c)
	c.JSON(http.StatusOK, gin.H{"id": id.Hex(), "type": c.GetString(ContextUserType)})
}

func serve(r *gin.Engine, req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func token(t *testing.T, id primitive.ObjectID, userType string) string {
	t.Helper()
	tok, err := utils.GenerateToken(id, userType, "a@example.com", testSecret, time.Hour)
	require.NoError(t, err)
	return tok.AccessToken
}

func TestAuthRequired(t *testing.T) {
	r := gin.New()
	r.GET("/me", AuthRequired(testSecret), whoAmI)
	id := primitive.NewObjectID()

	t.Run("bearer header", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/me", nil)
		req.Header.Set("Authorization", "Bearer "+token(t, id, utils.UserTypeGuest))
		w := serve(r, req)
		require.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), id.Hex())
	})

	t.Run("query token", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/me?token="+token(t, id, utils.UserTypeHost), nil)
		w := serve(r, req)
		require.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), utils.UserTypeHost)
	})

	t.Run("missing", func(t *testing.T) {
		w := serve(r, httptest.NewRequest(http.MethodGet, "/me", nil))
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("not bearer", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/me", nil)
		req.Header.Set("Authorization", "Basic abc")
		assert.Equal(t, http.StatusUnauthorized, serve(r, req).Code)
	})

	t.Run("wrong secret", func(t *testing.T) {
		tok, err := utils.GenerateToken(id, utils.UserTypeGuest, "", "other", time.Hour)
		require.NoError(t, err)
		req := httptest.NewRequest(http.MethodGet, "/me", nil)
		req.Header.Set("Authorization", "Bearer "+tok.AccessToken)
		assert.Equal(t, http.StatusUnauthorized, serve(r, req).Code)
	})
}

func TestGuestRequired(t *testing.T) {
	users := memory.NewUserRepository()
	ctx := context.Background()

	guest := &models.User{DisplayName: "Guest", Email: "guest@example.com"}
	require.NoError(t, users.Create(ctx, guest))
	host := &models.User{DisplayName: "Host", Email: "host@example.com"}
	require.NoError(t, users.Create(ctx, host))
	require.NoError(t, users.SetHost(ctx, host.ID))

	r := gin.New()
	r.POST("/reservations", AuthRequired(testSecret), GuestRequired(users), whoAmI)

	call := func(id primitive.ObjectID) int {
		req := httptest.NewRequest(http.MethodPost, "/reservations", nil)
		req.Header.Set("Authorization", "Bearer "+token(t, id, utils.UserTypeGuest))
		return serve(r, req).Code
	}

	assert.Equal(t, http.StatusOK, call(guest.ID))
	assert.Equal(t, http.StatusForbidden, call(host.ID), "host flag is read from storage, not the token")
	assert.Equal(t, http.StatusNotFound, call(primitive.NewObjectID()))
}

func TestCORSMiddleware(t *testing.T) {
	r := gin.New()
	r.Use(CORSMiddleware([]string{"http://app.example"}))
	r.GET("/ping", func(c *gin.Context) { c.String(http.StatusOK, "pong") })

	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.Header.Set("Origin", "http://app.example")
	w := serve(r, req)
	assert.Equal(t, "http://app.example", w.Header().Get("Access-Control-Allow-Origin"))

	req = httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.Header.Set("Origin", "http://evil.example")
	w = serve(r, req)
	assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))

	req = httptest.NewRequest(http.MethodOptions, "/ping", nil)
	assert.Equal(t, http.StatusNoContent, serve(r, req).Code)
}

func TestRequestIDAndLogging(t *testing.T) {
	var buf bytes.Buffer
	log := logger.Nop()
	log.SetOutput(&buf)

	r := gin.New()
	r.Use(RequestIDMiddleware(), LoggingMiddleware(log))
	r.GET("/caravans/:id", func(c *gin.Context) { c.Status(http.StatusOK) })

	w := serve(r, httptest.NewRequest(http.MethodGet, "/caravans/abc", nil))
	generated := w.Header().Get("X-Request-ID")
	assert.Len(t, generated, 36)
	assert.Contains(t, buf.String(), "/caravans/:id")
	assert.Contains(t, buf.String(), generated)

	req := httptest.NewRequest(http.MethodGet, "/caravans/abc", nil)
	req.Header.Set("X-Request-ID", "fixed-id")
	w = serve(r, req)
	assert.Equal(t, "fixed-id", w.Header().Get("X-Request-ID"))
}
