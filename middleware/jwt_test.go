package middleware_test

import (
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"reminderpro/reminder-api/middleware"
	"reminderpro/reminder-api/model"
	"reminderpro/reminder-api/store"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	viper.Set("jwt.secret", "test-secret")
	os.Exit(m.Run())
}

func signToken(t *testing.T, secret string, claims jwt.MapClaims) string {
	t.Helper()

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	require.NoError(t, err)
	return token
}

func TestJWTMiddleware(t *testing.T) {
	s := store.NewMemory()
	require.NoError(t, s.CreateUser(&model.User{
		ID:       "u1",
		Username: "someone",
		Email:    "someone@example.com",
	}))

	r := gin.New()
	r.Use(func(c *gin.Context) { c.Set("requestID", "test") })
	r.GET("/protected", middleware.NewJWTMiddleware(s), func(c *gin.Context) {
		c.String(http.StatusOK, c.GetString("userID"))
	})

	valid := jwt.MapClaims{
		"user_id": "u1",
		"type":    "auth",
		"iat":     time.Now().Unix(),
		"exp":     time.Now().Add(time.Hour).Unix(),
	}

	cases := []struct {
		name  string
		token string
		want  int
	}{
		{"no cookie", "", http.StatusUnauthorized},
		{"garbage token", "not-a-jwt", http.StatusUnauthorized},
		{"wrong secret", signToken(t, "other-secret", valid), http.StatusUnauthorized},
		{"expired", signToken(t, "test-secret", jwt.MapClaims{
			"user_id": "u1",
			"exp":     time.Now().Add(-time.Hour).Unix(),
		}), http.StatusUnauthorized},
		{"unknown user", signToken(t, "test-secret", jwt.MapClaims{
			"user_id": "ghost",
			"exp":     time.Now().Add(time.Hour).Unix(),
		}), http.StatusUnauthorized},
		{"valid", signToken(t, "test-secret", valid), http.StatusOK},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			req := httptest.NewRequest("GET", "/protected", nil)
			if c.token != "" {
				req.AddCookie(&http.Cookie{Name: "auth_token", Value: c.token})
			}

			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)

			assert.Equal(t, c.want, w.Code)
			if c.want == http.StatusOK {
				assert.Equal(t, "u1", w.Body.String())
			}
		})
	}
}
