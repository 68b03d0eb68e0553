package notifier

import (
	"context"
	"github.com/asaskevich/EventBus"
	botApi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/maxaizer/jobscout/internal/domain/events"
	"github.com/maxaizer/jobscout/internal/logger"
	log "github.com/sirupsen/logrus"
	"golang.org/x/time/rate"
	"sync"
	"time"
)

const maxAlertsPerHour = 10

type Notifier interface {
	Notify(ctx context.Context, event events.MatchFound) error
}

type apiInterface interface {
	Send(chattable botApi.Chattable) (botApi.Message, error)
}

type TelegramNotifier struct {
	api apiInterface
}

func NewTelegramNotifier(api apiInterface) *TelegramNotifier {
	return &TelegramNotifier{api: api}
}

func (t *TelegramNotifier) Notify(_ context.Context, event events.MatchFound) error {
	msg := botApi.NewMessage(event.ChatID, BuildMatchAlert(event))
	msg.ParseMode = botApi.ModeHTML
	msg.DisableWebPagePreview = true
	_, err := t.api.Send(msg)
	return err
}

// LogNotifier is used when a user has no Telegram chat or no bot token is configured.
type LogNotifier struct{}

func (LogNotifier) Notify(_ context.Context, event events.MatchFound) error {
	log.WithFields(log.Fields{
		"user_id":    event.UserID,
		"match_id":   event.Match.MatchID,
		"posting_id": event.Posting.PostingID,
		"score":      event.Match.Score,
	}).Info("high score match found")
	return nil
}

// Dispatcher delivers MatchFound events off the publisher's goroutine.
// Delivery failures and panics stay inside the dispatcher.
type Dispatcher struct {
	telegram Notifier
	fallback Notifier
	timeout  time.Duration
	limiters sync.Map
}

// NewDispatcher subscribes to MatchFound events. telegram may be nil.
func NewDispatcher(bus EventBus.Bus, telegram Notifier) (*Dispatcher, error) {
	d := &Dispatcher{telegram: telegram, fallback: LogNotifier{}, timeout: 30 * time.Second}
	if err := bus.SubscribeAsync(events.MatchFoundTopic, d.onMatchFound, false); err != nil {
		return nil, err
	}
	return d, nil
}

func (d *Dispatcher) onMatchFound(event events.MatchFound) {
	defer func() {
		if rec := recover(); rec != nil {
			log.WithField(logger.ErrorTypeField, logger.ErrorTypeTgApi).
				Errorf("notification for match %s panicked: %v", event.Match.MatchID, rec)
		}
	}()

	if !d.limiter(event.UserID).Allow() {
		log.Warnf("notification for match %s suppressed, user %s exceeded %d alerts per hour",
			event.Match.MatchID, event.UserID, maxAlertsPerHour)
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), d.timeout)
	defer cancel()

	notifier := d.fallback
	if d.telegram != nil && event.ChatID != 0 {
		notifier = d.telegram
	}

	if err := notifier.Notify(ctx, event); err != nil {
		log.WithField(logger.ErrorTypeField, logger.ErrorTypeTgApi).
			Errorf("failed to deliver notification for match %s: %v", event.Match.MatchID, err)
	}
}

func (d *Dispatcher) limiter(userID string) *rate.Limiter {
	limiter, _ := d.limiters.LoadOrStore(userID, rate.NewLimiter(rate.Every(time.Hour/maxAlertsPerHour), maxAlertsPerHour))
	return limiter.(*rate.Limiter)
}
