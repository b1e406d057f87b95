// Package events публикует события жизненного цикла учётных записей в RabbitMQ.
//
// Публикация — побочный эффект: ошибка доставки логируется вызывающей стороной
// и не влияет на результат запроса.
package events

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Тип события, он же ключ маршрутизации.
const (
	TypeSignedUp = "account.signed_up"
	TypeUpdated  = "account.updated"
	TypeDeleted  = "account.deleted"
)

// Event — сообщение о событии учётной записи. Пароль никогда не публикуется.
type Event struct {
	Type       string    `json:"type"`
	UserID     uuid.UUID `json:"user_id"`
	Email      string    `json:"email,omitempty"`
	OccurredAt time.Time `json:"occurred_at"`
}

// New создаёт событие с текущим временем.
func New(eventType string, userID uuid.UUID, email string) Event {
	return Event{
		Type:       eventType,
		UserID:     userID,
		Email:      email,
		OccurredAt: time.Now().UTC(),
	}
}

// Publisher публикует события.
type Publisher interface {
	Publish(ctx context.Context, e Event) error
}

// Noop — публикатор, который ничего не отправляет.
type Noop struct{}

// Publish ничего не делает.
func (Noop) Publish(context.Context, Event) error { return nil }
