package telegram

import (
	"context"
	"fmt"

	"github.com/go-telegram/bot"
)

// Client posts messages to a fixed chat, used as an internal copy channel
// for dispatched reminders.
type Client struct {
	bot    *bot.Bot
	chatID string
}

func New(token, chatID string) (*Client, error) {
	b, err := bot.New(token)
	if err != nil {
		return nil, fmt.Errorf("failed to init telegram bot: %w", err)
	}
	return &Client{bot: b, chatID: chatID}, nil
}

func (c *Client) Send(ctx context.Context, text string) error {
	_, err := c.bot.SendMessage(ctx, &bot.SendMessageParams{
		ChatID: c.chatID,
		Text:   text,
	})
	if err != nil {
		return fmt.Errorf("failed to send telegram message: %w", err)
	}
	return nil
}
