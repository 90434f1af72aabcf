package auth

import (
	"context"
	"sync"

	"go.uber.org/zap"
)

// Message is an outgoing account mail.
type Message struct {
	To      string
	Subject string
	Link    string
}

// Mailer delivers verification and password reset links.
type Mailer interface {
	Send(ctx context.Context, msg Message) error
}

// LogMailer writes messages to the log instead of sending them.
type LogMailer struct {
	Logger *zap.Logger
}

func (m LogMailer) Send(_ context.Context, msg Message) error {
	m.Logger.Info("account mail",
		zap.String("to", msg.To),
		zap.String("subject", msg.Subject),
		zap.String("link", msg.Link))
	return nil
}

// MemoryMailer keeps messages in memory.
type MemoryMailer struct {
	mu   sync.Mutex
	sent []Message
}

func (m *MemoryMailer) Send(_ context.Context, msg Message) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sent = append(m.sent, msg)
	return nil
}

// Sent returns a copy of the delivered messages.
func (m *MemoryMailer) Sent() []Message {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]Message(nil), m.sent...)
}

// Last returns the most recent message, if any.
func (m *MemoryMailer) Last() (Message, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.sent) == 0 {
		return Message{}, false
	}
	return m.sent[len(m.sent)-1], true
}
