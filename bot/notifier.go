// Package bot runs the Telegram bot that notifies managers and answers staff commands
package bot

import "med-field-force/internal/services"

// Notifier sends service notifications through the package-level bot
type Notifier struct{}

// NewNotifier creates a new bot notifier
func NewNotifier() *Notifier {
	return &Notifier{}
}

// SendNotification sends a notification to the managers' chat
func (n *Notifier) SendNotification(message string) {
	SendNotification(message)
}

// SendPersonalNotification sends a notification to one staff member
func (n *Notifier) SendPersonalNotification(chatID int64, message string) {
	SendPersonalNotification(chatID, message)
}

var _ services.BotNotifier = (*Notifier)(nil)
