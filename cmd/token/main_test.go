package main

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jengzang/rose-backend-go/internal/middleware"
)

func TestRunIssuesAcceptedToken(t *testing.T) {
	t.Setenv("JWT_SECRET", "cli-secret")
	gin.SetMode(gin.TestMode)

	var out bytes.Buffer
	require.NoError(t, run([]string{"-subject", "ops", "-ttl", "1h"}, &out))
	token := strings.TrimSpace(out.String())
	require.NotEmpty(t, token)

	r := gin.New()
	r.GET("/", middleware.Auth("cli-secret"), func(c *gin.Context) {
		c.String(http.StatusOK, c.GetString(middleware.SubjectKey))
	})
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "ops", w.Body.String())
}

func TestRunRejectsBadInput(t *testing.T) {
	t.Setenv("JWT_SECRET", "cli-secret")
	var out bytes.Buffer
	assert.Error(t, run([]string{"-ttl", "0s"}, &out))

	t.Setenv("JWT_SECRET", "")
	assert.Error(t, run(nil, &out))
	assert.Empty(t, out.String())
}
