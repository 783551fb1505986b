package worker

import (
	"context"
	"encoding/json"
	"time"

	"github.com/maarifahub/maarifa-backend/internal/config"
	"github.com/maarifahub/maarifa-backend/internal/telegram"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

const notifyPollTimeout = 1 * time.Second

// Notification is one queued Telegram push. Delivery is fire-and-forget:
// failures are logged and dropped, never surfaced to the request that
// queued them.
type Notification struct {
	ChatID     int64  `json:"chat_id"`
	Text       string `json:"text"`
	ButtonText string `json:"button_text,omitempty"`
}

// NotifyQueue enqueues notifications onto the Redis delivery queue.
type NotifyQueue struct {
	rdb *redis.Client
}

// NewNotifyQueue creates a NotifyQueue.
func NewNotifyQueue(rdb *redis.Client) *NotifyQueue {
	return &NotifyQueue{rdb: rdb}
}

// Enqueue pushes a notification for asynchronous delivery.
func (q *NotifyQueue) Enqueue(ctx context.Context, n Notification) error {
	raw, err := json.Marshal(n)
	if err != nil {
		return err
	}
	return q.rdb.RPush(ctx, config.WorkerKey.NotifyQueue, raw).Err()
}

// NotifyWorker drains the notification queue and delivers messages through
// the Telegram Bot API.
type NotifyWorker struct {
	rdb    *redis.Client
	tg     *telegram.Client
	appURL string
	log    zerolog.Logger
}

// NewNotifyWorker creates a NotifyWorker.
func NewNotifyWorker(rdb *redis.Client, tg *telegram.Client, appURL string, log zerolog.Logger) *NotifyWorker {
	return &NotifyWorker{
		rdb:    rdb,
		tg:     tg,
		appURL: appURL,
		log:    log.With().Str("component", "notify_worker").Logger(),
	}
}

// Start runs the delivery loop until the context is cancelled.
func (w *NotifyWorker) Start(ctx context.Context) {
	w.log.Info().Msg("NotifyWorker started")

	for {
		select {
		case <-ctx.Done():
			w.log.Info().Msg("NotifyWorker stopped")
			return
		default:
			item, err := w.rdb.BLPop(ctx, notifyPollTimeout, config.WorkerKey.NotifyQueue).Result()
			if err != nil {
				if err != redis.Nil && ctx.Err() == nil {
					w.log.Error().Err(err).Msg("BLPop error")
				}
				continue
			}

			if len(item) < 2 {
				continue
			}

			var n Notification
			if err := json.Unmarshal([]byte(item[1]), &n); err != nil {
				w.log.Error().Err(err).Msg("Invalid JSON payload")
				continue
			}

			w.deliver(ctx, n)
		}
	}
}

func (w *NotifyWorker) deliver(ctx context.Context, n Notification) {
	if !w.tg.Enabled() {
		w.log.Debug().Int64("chat_id", n.ChatID).Msg("Telegram disabled, dropping notification")
		return
	}

	if err := w.tg.SendAppMessage(ctx, n.ChatID, n.Text, n.ButtonText, w.appURL); err != nil {
		w.log.Warn().Err(err).Int64("chat_id", n.ChatID).Msg("Notification delivery failed")
	}
}
