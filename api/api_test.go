package api_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"reminderpro/reminder-api/api"
	"reminderpro/reminder-api/model"
	"reminderpro/reminder-api/security"
	"reminderpro/reminder-api/store"

	"github.com/gin-gonic/gin"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)

	viper.Set("jwt.secret", "test-secret")
	viper.Set("plan.free_limit", 10)
	viper.Set("plan.pro_limit", 100)

	os.Exit(m.Run())
}

// env wires the handlers to a memory store behind a stand-in auth
// middleware. Whoever env.user points at is the authenticated caller.
type env struct {
	api    *api.API
	router *gin.Engine
	user   *model.User
}

func newEnv(t *testing.T) *env {
	t.Helper()

	e := &env{}

	e.api = &api.API{
		Store: store.NewMemory(),
		Argon: security.New(),
	}

	auth := func(c *gin.Context) {
		c.Set("requestID", "test")

		if e.user != nil {
			c.Set("userID", e.user.ID)
			c.Set("user", e.user)
		}
	}

	r := gin.New()
	r.Use(auth)

	r.POST("/api/users", e.api.UserRegister)
	r.POST("/api/users/login", e.api.UserLogin)
	r.GET("/api/users", e.api.UserFetch)

	r.GET("/api/reminders", e.api.ReminderFetchBulk)
	r.POST("/api/reminders", e.api.ReminderCreate)
	r.GET("/api/reminders/:id", e.api.ReminderFetch)
	r.PUT("/api/reminders/:id", e.api.ReminderUpdate)
	r.DELETE("/api/reminders/:id", e.api.ReminderDelete)

	r.GET("/api/visa-reminders", e.api.VisaFetchBulk)
	r.GET("/api/visa-reminders/:id", e.api.VisaFetch)
	r.PUT("/api/visa-reminders/:id", e.api.VisaUpdate)

	r.GET("/api/admin/stats", e.api.AdminStats)

	e.router = r
	return e
}

func (e *env) seedUser(t *testing.T, id string, plan model.PlanType, limit int) *model.User {
	t.Helper()

	u := &model.User{
		ID:            id,
		Username:      "user-" + id,
		Email:         id + "@example.com",
		PasswordHash:  "x",
		PlanType:      plan,
		ReminderLimit: limit,
	}
	require.NoError(t, e.api.Store.CreateUser(u))
	return u
}

func (e *env) do(t *testing.T, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}

	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")

	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()

	var out T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
	return out
}

func visaBody(title string) gin.H {
	return gin.H{
		"title":         title,
		"reminder_type": "visa",
		"reminder_date": "2025-06-01",
		"visa_data": gin.H{
			"visa_type":   "work",
			"country":     "Germany",
			"expiry_date": "2025-05-01",
		},
	}
}

func TestReminderCreateVisa(t *testing.T) {
	e := newEnv(t)
	e.user = e.seedUser(t, "u1", model.PlanPro, 100)

	w := e.do(t, "POST", "/api/reminders", visaBody("Renew visa"))
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	created := decode[model.ReminderWithVisa](t, w)
	assert.Equal(t, "Renew visa", created.Title)
	require.NotNil(t, created.VisaData)
	assert.Equal(t, "Germany", created.VisaData.Country)

	// No channels picked, so the defaults kick in
	notifications, err := e.api.Store.NotificationsByReminderID(created.ID)
	require.NoError(t, err)
	require.Len(t, notifications, 2)
	for _, n := range notifications {
		assert.True(t, n.IsEnabled)
	}
}

func TestReminderCreateRejectsVisaWithoutData(t *testing.T) {
	e := newEnv(t)
	e.user = e.seedUser(t, "u1", model.PlanPro, 100)

	w := e.do(t, "POST", "/api/reminders", gin.H{
		"title":         "Renew visa",
		"reminder_type": "visa",
		"reminder_date": "2025-06-01",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestReminderCreateQuota(t *testing.T) {
	e := newEnv(t)
	e.user = e.seedUser(t, "u1", model.PlanFree, 1)

	body := gin.H{
		"title":         "Pay rent",
		"reminder_type": "bill",
		"reminder_date": "2025-06-01",
	}

	w := e.do(t, "POST", "/api/reminders", body)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	w = e.do(t, "POST", "/api/reminders", body)
	assert.Equal(t, http.StatusForbidden, w.Code)

	resp := decode[map[string]string](t, w)
	assert.Contains(t, resp["error"], "Upgrade to Pro")

	// Pro users sail past the limit
	pro := model.PlanPro
	_, err := e.api.Store.UpdateUser("u1", store.UserUpdate{PlanType: &pro})
	require.NoError(t, err)
	e.user.PlanType = model.PlanPro

	w = e.do(t, "POST", "/api/reminders", body)
	assert.Equal(t, http.StatusCreated, w.Code)
}

func TestReminderCreateDropsSMSForFreeUsers(t *testing.T) {
	e := newEnv(t)
	e.user = e.seedUser(t, "free", model.PlanFree, 10)

	body := gin.H{
		"title":         "Check in",
		"reminder_type": "task",
		"reminder_date": "2025-06-01",
		"notifications": []string{"email", "sms"},
	}

	w := e.do(t, "POST", "/api/reminders", body)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	created := decode[model.ReminderWithVisa](t, w)

	notifications, err := e.api.Store.NotificationsByReminderID(created.ID)
	require.NoError(t, err)
	require.Len(t, notifications, 1)
	assert.Equal(t, model.NotifyEmail, notifications[0].NotificationType)

	// The same request from a pro user keeps sms
	e.user = e.seedUser(t, "pro", model.PlanPro, 100)

	w = e.do(t, "POST", "/api/reminders", body)
	require.Equal(t, http.StatusCreated, w.Code)
	created = decode[model.ReminderWithVisa](t, w)

	notifications, err = e.api.Store.NotificationsByReminderID(created.ID)
	require.NoError(t, err)
	require.Len(t, notifications, 2)
}

func TestReminderFetchHidesOtherUsers(t *testing.T) {
	e := newEnv(t)
	e.user = e.seedUser(t, "owner", model.PlanFree, 10)

	w := e.do(t, "POST", "/api/reminders", visaBody("Mine"))
	require.Equal(t, http.StatusCreated, w.Code)

	w = e.do(t, "GET", "/api/reminders/1", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	e.user = e.seedUser(t, "other", model.PlanFree, 10)

	// Someone else's reminder is indistinguishable from a missing one
	for _, method := range []string{"GET", "DELETE"} {
		w = e.do(t, method, "/api/reminders/1", nil)
		assert.Equal(t, http.StatusNotFound, w.Code)
	}
}

func TestReminderUpdateToGeneralDropsVisaData(t *testing.T) {
	e := newEnv(t)
	e.user = e.seedUser(t, "u1", model.PlanPro, 100)

	w := e.do(t, "POST", "/api/reminders", visaBody("Renew visa"))
	require.Equal(t, http.StatusCreated, w.Code)
	created := decode[model.ReminderWithVisa](t, w)

	w = e.do(t, "PUT", "/api/reminders/1", gin.H{
		"title":         "Renew visa",
		"reminder_type": "general",
		"reminder_date": "2025-06-01",
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	updated := decode[model.ReminderWithVisa](t, w)
	assert.Equal(t, model.ReminderGeneral, updated.ReminderType)
	assert.Nil(t, updated.VisaData)

	visa, err := e.api.Store.VisaReminderByReminderID(created.ID)
	require.NoError(t, err)
	assert.Nil(t, visa)
}

func TestReminderDelete(t *testing.T) {
	e := newEnv(t)
	e.user = e.seedUser(t, "u1", model.PlanPro, 100)

	w := e.do(t, "POST", "/api/reminders", visaBody("Renew visa"))
	require.Equal(t, http.StatusCreated, w.Code)

	w = e.do(t, "DELETE", "/api/reminders/1", nil)
	require.Equal(t, http.StatusOK, w.Code)

	resp := decode[map[string]any](t, w)
	assert.Equal(t, true, resp["removed"])

	w = e.do(t, "DELETE", "/api/reminders/1", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestVisaUpdateRejectsNonVisaReminder(t *testing.T) {
	e := newEnv(t)
	e.user = e.seedUser(t, "u1", model.PlanPro, 100)

	w := e.do(t, "POST", "/api/reminders", gin.H{
		"title":         "Pay rent",
		"reminder_type": "bill",
		"reminder_date": "2025-06-01",
	})
	require.Equal(t, http.StatusCreated, w.Code)

	w = e.do(t, "PUT", "/api/visa-reminders/1", gin.H{
		"visa_type":   "work",
		"country":     "Germany",
		"expiry_date": "2025-05-01",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	resp := decode[map[string]string](t, w)
	assert.Equal(t, "Not a visa reminder", resp["error"])
}

func TestVisaUpdateInPlace(t *testing.T) {
	e := newEnv(t)
	e.user = e.seedUser(t, "u1", model.PlanPro, 100)

	w := e.do(t, "POST", "/api/reminders", visaBody("Renew visa"))
	require.Equal(t, http.StatusCreated, w.Code)

	w = e.do(t, "PUT", "/api/visa-reminders/1", gin.H{
		"visa_type":   "student",
		"country":     "France",
		"expiry_date": "2026-01-01",
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	visa := decode[model.VisaReminder](t, w)
	assert.Equal(t, model.VisaStudent, visa.VisaType)
	assert.Equal(t, "France", visa.Country)
}

func TestUserFetchUsage(t *testing.T) {
	e := newEnv(t)
	e.user = e.seedUser(t, "u1", model.PlanFree, 10)

	for i := 0; i < 3; i++ {
		w := e.do(t, "POST", "/api/reminders", gin.H{
			"title":         "r",
			"reminder_type": "task",
			"reminder_date": "2025-06-01",
		})
		require.Equal(t, http.StatusCreated, w.Code)
	}

	w := e.do(t, "GET", "/api/users", nil)
	require.Equal(t, http.StatusOK, w.Code)

	resp := decode[struct {
		Usage struct {
			Reminders int `json:"reminders"`
			Limit     int `json:"limit"`
		} `json:"usage"`
	}](t, w)

	assert.Equal(t, 3, resp.Usage.Reminders)
	assert.Equal(t, 10, resp.Usage.Limit)
}

func TestUserRegisterAndLogin(t *testing.T) {
	e := newEnv(t)

	w := e.do(t, "POST", "/api/users", gin.H{
		"username":  "newuser",
		"email":     "new@example.com",
		"password":  "correct horse",
		"full_name": "New User",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	created := decode[model.User](t, w)
	assert.Equal(t, model.PlanFree, created.PlanType)
	assert.Equal(t, 10, created.ReminderLimit)
	assert.Len(t, created.ID, 16)

	cookies := w.Result().Cookies()
	var gotAuth bool
	for _, c := range cookies {
		if c.Name == "auth_token" && c.Value != "" {
			gotAuth = true
		}
	}
	assert.True(t, gotAuth)

	// Duplicate username is a conflict
	w = e.do(t, "POST", "/api/users", gin.H{
		"username": "newuser",
		"email":    "other@example.com",
		"password": "correct horse",
	})
	assert.Equal(t, http.StatusConflict, w.Code)

	w = e.do(t, "POST", "/api/users/login", gin.H{
		"username": "newuser",
		"password": "correct horse",
	})
	assert.Equal(t, http.StatusOK, w.Code)

	w = e.do(t, "POST", "/api/users/login", gin.H{
		"username": "newuser",
		"password": "wrong",
	})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAdminStatsDocument(t *testing.T) {
	e := newEnv(t)
	e.seedUser(t, "free1", model.PlanFree, 10)
	e.user = e.seedUser(t, "pro1", model.PlanPro, 100)

	w := e.do(t, "POST", "/api/reminders", visaBody("Renew visa"))
	require.Equal(t, http.StatusCreated, w.Code)

	w = e.do(t, "POST", "/api/reminders", gin.H{
		"title":         "Pay rent",
		"reminder_type": "bill",
		"reminder_date": "2025-06-01",
	})
	require.Equal(t, http.StatusCreated, w.Code)

	require.NoError(t, e.api.Store.CreatePayment(&model.Payment{
		UserID:      "pro1",
		Amount:      9.99,
		PlanType:    model.PlanPro,
		IsPaid:      true,
		PaymentDate: time.Now(),
	}))

	w = e.do(t, "GET", "/api/admin/stats", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	stats := decode[struct {
		Users struct {
			Total int64 `json:"total"`
			Pro   int64 `json:"pro"`
			Free  int64 `json:"free"`
		} `json:"users"`
		Reminders struct {
			Total  int64                 `json:"total"`
			Visa   int64                 `json:"visa"`
			ByType []model.VisaTypeCount `json:"by_type"`
		} `json:"reminders"`
		Expirations map[string]int64 `json:"expirations"`
		Revenue     struct {
			Monthly          float64 `json:"monthly"`
			NewSubscriptions int64   `json:"new_subscriptions"`
			Renewals         int64   `json:"renewals"`
		} `json:"revenue"`
	}](t, w)

	assert.EqualValues(t, 2, stats.Users.Total)
	assert.EqualValues(t, 1, stats.Users.Pro)
	assert.EqualValues(t, 1, stats.Users.Free)

	assert.EqualValues(t, 2, stats.Reminders.Total)
	assert.EqualValues(t, 1, stats.Reminders.Visa)
	assert.Len(t, stats.Reminders.ByType, 5)

	assert.Contains(t, stats.Expirations, "next_7_days")
	assert.Contains(t, stats.Expirations, "next_30_days")
	assert.Contains(t, stats.Expirations, "next_90_days")

	assert.InDelta(t, 9.99, stats.Revenue.Monthly, 0.001)
	assert.EqualValues(t, 1, stats.Revenue.NewSubscriptions)
	assert.EqualValues(t, 0, stats.Revenue.Renewals)
}
