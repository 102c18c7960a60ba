package notifier

import (
	"context"
	"fmt"
)

// Interface is the minimal notification contract the scheduler depends on.
type Interface interface {
	Send(text string) error
}

// RetrySender is implemented by notifiers that can retry transient
// delivery failures. Senders should prefer it over Send when available.
type RetrySender interface {
	SendWithRetry(ctx context.Context, text string, maxRetries int) error
}

// Console prints notifications to stdout. Used when no Telegram bot is
// configured.
type Console struct{}

func NewConsole() *Console { return &Console{} }

func (c *Console) Send(text string) error {
	_, err := fmt.Println(text)
	return err
}
