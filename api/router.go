// Package api contains all endpoints available
package api

import (
	"fmt"
	"time"

	"reminderpro/reminder-api/config"
	"reminderpro/reminder-api/db"
	"reminderpro/reminder-api/middleware"
	"reminderpro/reminder-api/model"
	"reminderpro/reminder-api/plan"
	"reminderpro/reminder-api/security"
	"reminderpro/reminder-api/store"

	cache "github.com/chenyahui/gin-cache"
	"github.com/chenyahui/gin-cache/persist"
	ginzap "github.com/gin-contrib/zap"
	gonanoid "github.com/matoous/go-nanoid/v2"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/spf13/viper"
	"github.com/stripe/stripe-go/v76"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

const (
	gray  = "\x1b[90m"
	reset = "\x1b[0m"
)

var cacheStore = persist.NewMemoryStore(time.Minute)

type API struct {
	Store  store.Store
	Router *gin.Engine
	Argon  *security.ArgonHash
}

func NewRouter() (*API, error) {
	a := &API{
		Argon: security.New(),
	}

	st, err := newStore()
	if err != nil {
		return nil, err
	}
	a.Store = st

	makeLogger()

	if config.SeedAdmin() {
		if err := a.seedAdmin(); err != nil {
			return nil, fmt.Errorf("failed to seed admin account, %w", err)
		}
	}

	router := gin.New()
	a.Router = router

	router.Use(
		cors.New(cors.Config{
			AllowOrigins:     []string{"http://localhost:5173"},
			AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
			AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization"},
			ExposeHeaders:    []string{"Content-Length"},
			AllowCredentials: true,
			MaxAge:           12 * time.Hour,
		}),
		gin.Recovery(),
		middleware.NewRequestIDMiddleware(),
		ginzap.GinzapWithConfig(zap.L(), &ginzap.Config{
			TimeFormat: "15:04:05.000",
			UTC:        true,
			Skipper: func(c *gin.Context) bool {
				return c.Request.Method == "HEAD"
			},
			Context: func(c *gin.Context) []zapcore.Field {
				fields := []zapcore.Field{}

				if v := c.GetString("requestID"); v != "" {
					fields = append(fields, zap.String("request_id", v))
				}

				if v := c.GetString("userID"); v != "" {
					fields = append(fields, zap.String("userID", v))
				}

				return fields
			},
		}),
	)

	router.HandleMethodNotAllowed = true

	jwt := middleware.NewJWTMiddleware(a.Store)
	admin := middleware.NewAdminMiddleware()
	body := middleware.BodySizeLimiter(1 << 20)
	public := middleware.RateLimiterMiddleware(middleware.RateLimiterConfig{
		RequestsPerSecond: 5,
		Burst:             10,
	})

	main := router.Group("/api")
	{
		// HEAD /api/heartbeat		-> Used to check if the server is alive
		main.HEAD("/heartbeat", a.Heartbeat)

		// HEAD /api/validate		-> Validates a JWT token
		main.HEAD("/validate", jwt, a.Validate)
	}

	users := main.Group("/users", body)
	{
		// POST /api/users		-> Registers a new user
		users.POST("", public, a.UserRegister)

		// POST /api/users/login	-> Logs in a user and returns a JWT cookie
		users.POST("/login", public, a.UserLogin)

		// POST /api/users/logout	-> Clears the auth cookie
		users.POST("/logout", jwt, a.UserLogout)

		// GET /api/users		-> Returns the current user and their usage
		users.GET("", jwt, a.UserFetch)
	}

	reminders := main.Group("/reminders", jwt, body)
	{
		// GET /api/reminders		-> Lists the user's reminders, ?type= filters
		reminders.GET("", a.ReminderFetchBulk)

		// POST /api/reminders		-> Creates a reminder, quota-gated for free users
		reminders.POST("", a.ReminderCreate)

		// GET /api/reminders/:id	-> Returns one reminder with its visa data
		reminders.GET("/:id", a.ReminderFetch)

		// PUT /api/reminders/:id	-> Full update incl. visa data and notifications
		reminders.PUT("/:id", a.ReminderUpdate)

		// DELETE /api/reminders/:id	-> Deletes a reminder and its sub-records
		reminders.DELETE("/:id", a.ReminderDelete)
	}

	visas := main.Group("/visa-reminders", jwt, body)
	{
		// GET /api/visa-reminders	-> The user's visa reminders, joined
		visas.GET("", a.VisaFetchBulk)

		// GET /api/visa-reminders/:id	-> The visa sub-record of one reminder
		visas.GET("/:id", a.VisaFetch)

		// PUT /api/visa-reminders/:id	-> Updates the visa sub-record in place
		visas.PUT("/:id", a.VisaUpdate)
	}

	adminGroup := main.Group("/admin", jwt, admin)
	{
		// GET /api/admin/users		-> All users, credentials stripped
		adminGroup.GET("/users", a.AdminUsers)

		// GET /api/admin/stats		-> Aggregate reporting document
		adminGroup.GET("/stats", cacheFor(30), a.AdminStats)
	}

	if key := viper.GetString("stripe.secret_key"); key != "" {
		stripe.Key = key

		billing := main.Group("/billing")
		{
			// POST /api/billing/subscribe	-> Creates the Stripe subscription
			billing.POST("/subscribe", jwt, body, a.BillingSubscribe)

			// POST /api/billing/webhook	-> Consumed by Stripe, not by clients
			billing.POST("/webhook", a.BillingWebhook)
		}
	}

	return a, nil
}

func newStore() (store.Store, error) {
	if viper.GetString("store.backend") == "memory" {
		zap.L().Warn("Using the in-memory store, data won't survive a restart")
		return store.NewMemory(), nil
	}

	conn, err := db.New()
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database, %w", err)
	}

	return store.NewGorm(conn), nil
}

func (a *API) seedAdmin() error {
	username := viper.GetString("admin.username")
	password := viper.GetString("admin.password")
	if username == "" || password == "" {
		return fmt.Errorf("admin.username and admin.password must be set to seed the admin account")
	}

	existing, err := a.Store.UserByUsername(username)
	if err != nil {
		return err
	}
	if existing != nil {
		return nil
	}

	hash, err := a.Argon.GenerateFromPassword(password)
	if err != nil {
		return err
	}

	id, err := gonanoid.Generate(idCharset, 16)
	if err != nil {
		return err
	}

	return a.Store.CreateUser(&model.User{
		ID:            id,
		Username:      username,
		Email:         viper.GetString("admin.email"),
		PasswordHash:  hash,
		FullName:      "Admin User",
		PlanType:      model.PlanPro,
		ReminderLimit: plan.LimitFor(model.PlanPro),
		IsAdmin:       true,
	})
}

func makeLogger() {
	cfg := zap.NewDevelopmentConfig()
	cfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	cfg.EncoderConfig.EncodeTime = func(t time.Time, pae zapcore.PrimitiveArrayEncoder) {
		pae.AppendString(gray + t.Format("15:04:05.000") + reset)
	}
	cfg.EncoderConfig.EncodeCaller = func(ec zapcore.EntryCaller, pae zapcore.PrimitiveArrayEncoder) {
		pae.AppendString(gray + ec.TrimmedPath() + reset)
	}

	cfg.DisableStacktrace = true

	log, _ := cfg.Build()
	zap.ReplaceGlobals(log)
}

func cacheFor(sec int) gin.HandlerFunc {
	return cache.CacheByRequestURI(cacheStore, time.Second*time.Duration(sec))
}
