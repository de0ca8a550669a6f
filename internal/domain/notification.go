package domain

import "context"

// NotificationService defines the interface for notification services
type NotificationService interface {
	// SendStarted announces that the bot is polling for updates
	SendStarted(ctx context.Context, botName string) error

	// SendError sends an error notification with error details
	SendError(ctx context.Context, err error) error
}
