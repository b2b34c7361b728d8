package gateway

import "context"

// Messenger defines the interface for chat gateways such as Telegram.
type Messenger interface {
	// Start begins the message listening loop
	Start(ctx context.Context) error
	// Send sends a message to a specific chat
	Send(chatID string, text string) error
	// Stop gracefully shuts down the gateway
	Stop() error
}
