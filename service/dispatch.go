// Package service contains background work that runs next to the API
package service

import (
	"context"
	"encoding/json"
	"time"

	"reminderpro/reminder-api/model"
	"reminderpro/reminder-api/store"

	"github.com/hibiken/asynq"
	"github.com/redis/go-redis/v9"
	"github.com/robfig/cron/v3"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

const TypeReminderSend = "reminder:send"

// dispatchWindow is how far ahead each sweep looks for due reminders.
// Must be at least as long as the sweep interval or reminders get skipped.
const dispatchWindow = time.Hour

type reminderPayload struct {
	ReminderID uint                   `json:"reminder_id"`
	UserID     string                 `json:"user_id"`
	Title      string                 `json:"title"`
	Channel    model.NotificationType `json:"channel"`
	FireDate   string                 `json:"fire_date"`
}

// Dispatcher periodically sweeps for due reminders and fans each one out to
// its enabled notification channels through an asynq queue.
type Dispatcher struct {
	store  store.Store
	client *asynq.Client
	server *asynq.Server
	cron   *cron.Cron
}

func NewDispatcher(s store.Store) *Dispatcher {
	redisOpts := asynq.RedisClientOpt{
		Addr:     viper.GetString("redis.addr"),
		Password: viper.GetString("redis.password"),
		DB:       viper.GetInt("redis.db"),
	}

	return &Dispatcher{
		store:  s,
		client: asynq.NewClient(redisOpts),
		server: asynq.NewServer(redisOpts, asynq.Config{
			Concurrency: 10,
			Queues: map[string]int{
				"default": 1,
			},
		}),
		cron: cron.New(),
	}
}

// Start launches the sweep schedule and the queue worker. Both run until
// Stop is called.
func (d *Dispatcher) Start() error {
	_, err := d.cron.AddFunc(viper.GetString("dispatch.interval"), d.enqueueDue)
	if err != nil {
		return err
	}

	mux := asynq.NewServeMux()
	mux.HandleFunc(TypeReminderSend, d.handleSend)

	go monitorRedis()

	go func() {
		zap.L().Info("Reminder dispatch worker starting")

		if err := d.server.Run(mux); err != nil {
			zap.L().Error("Dispatch worker stopped", zap.Error(err))
		}
	}()

	d.cron.Start()
	return nil
}

func (d *Dispatcher) Stop() {
	d.cron.Stop()
	d.server.Shutdown()
	d.client.Close()
}

func (d *Dispatcher) enqueueDue() {
	now := time.Now()

	due, err := d.store.DueReminders(now, now.Add(dispatchWindow))
	if err != nil {
		zap.L().Error("Failed to sweep for due reminders", zap.Error(err))
		return
	}

	for _, r := range due {
		notifications, err := d.store.NotificationsByReminderID(r.ID)
		if err != nil {
			zap.L().Error("Failed to load notification prefs", zap.Uint("reminderID", r.ID), zap.Error(err))
			continue
		}

		for _, n := range notifications {
			if !n.IsEnabled {
				continue
			}

			payload, err := json.Marshal(reminderPayload{
				ReminderID: r.ID,
				UserID:     r.UserID,
				Title:      r.Title,
				Channel:    n.NotificationType,
				FireDate:   r.ReminderDate.Format(time.RFC3339),
			})
			if err != nil {
				continue
			}

			_, err = d.client.Enqueue(asynq.NewTask(TypeReminderSend, payload))
			if err != nil {
				zap.L().Error("Failed to enqueue reminder send", zap.Uint("reminderID", r.ID), zap.Error(err))
			}
		}
	}

	if len(due) > 0 {
		zap.L().Info("Swept due reminders", zap.Int("count", len(due)))
	}
}

func (d *Dispatcher) handleSend(ctx context.Context, task *asynq.Task) error {
	var p reminderPayload
	if err := json.Unmarshal(task.Payload(), &p); err != nil {
		zap.L().Error("Invalid reminder payload", zap.Error(err))
		return err
	}

	// sms could have been enabled while the owner was still pro
	if p.Channel == model.NotifySMS {
		user, err := d.store.UserByID(p.UserID)
		if err != nil {
			return err
		}

		if user == nil || user.PlanType != model.PlanPro {
			zap.L().Debug("Dropping sms send for non-pro user", zap.String("userID", p.UserID))
			return nil
		}
	}

	// Delivery providers (mail, push, sms gateways) hook in here
	zap.L().Info("Delivering reminder",
		zap.Uint("reminderID", p.ReminderID),
		zap.String("userID", p.UserID),
		zap.String("channel", string(p.Channel)),
		zap.String("title", p.Title),
	)

	return nil
}

// monitorRedis pings the queue backend periodically so a dead connection
// shows up in the logs before users notice missed reminders
func monitorRedis() {
	client := redis.NewClient(&redis.Options{
		Addr:     viper.GetString("redis.addr"),
		Password: viper.GetString("redis.password"),
		DB:       viper.GetInt("redis.db"),
	})

	ctx := context.Background()

	for {
		if err := client.Ping(ctx).Err(); err != nil {
			zap.L().Warn("Redis connection lost", zap.Error(err))
		}
		time.Sleep(10 * time.Second)
	}
}
