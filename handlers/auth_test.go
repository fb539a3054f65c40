package handlers

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"lemon16/middleware"
)

func setupAuthTest(t *testing.T, password, secret string) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	var hash string
	if password != "" {
		raw, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
		require.NoError(t, err)
		hash = string(raw)
	}

	Init(Deps{JWTSecret: secret, AdminPasswordHash: hash})

	router := gin.New()
	router.POST("/login", Login)
	return router
}

func TestLoginIssuesValidToken(t *testing.T) {
	router := setupAuthTest(t, "hunter2", "test-secret")

	w := doRequest(router, http.MethodPost, "/login", map[string]string{"password": "hunter2"})
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Token string `json:"token"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.NotEmpty(t, resp.Token)
	assert.NoError(t, middleware.ParseAdminToken(resp.Token, "test-secret"))
}

func TestLoginWrongPassword(t *testing.T) {
	router := setupAuthTest(t, "hunter2", "test-secret")

	w := doRequest(router, http.MethodPost, "/login", map[string]string{"password": "wrong"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestLoginMissingPassword(t *testing.T) {
	router := setupAuthTest(t, "hunter2", "test-secret")

	w := doRequest(router, http.MethodPost, "/login", map[string]string{})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestLoginAuthDisabled(t *testing.T) {
	router := setupAuthTest(t, "", "")

	w := doRequest(router, http.MethodPost, "/login", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Token   string `json:"token"`
		Message string `json:"message"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Empty(t, resp.Token)
	assert.Contains(t, resp.Message, "disabled")
}

func TestParseAdminTokenRejectsWrongSecret(t *testing.T) {
	router := setupAuthTest(t, "hunter2", "test-secret")

	w := doRequest(router, http.MethodPost, "/login", map[string]string{"password": "hunter2"})
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Token string `json:"token"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Error(t, middleware.ParseAdminToken(resp.Token, "other-secret"))
}
