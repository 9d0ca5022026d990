package webhook

import (
	"context"
	"strings"
	"sync"

	"github.com/flemzord/tgnotify/pkg/botapi"
)

// CommandFunc handles a bot command. args is the text after the command.
type CommandFunc func(ctx context.Context, msg *botapi.Message, args string) error

// CommandMux is a Handler that dispatches "/command" messages. Updates that
// are not commands go to the fallback handler, if any.
type CommandMux struct {
	mu       sync.RWMutex
	commands map[string]CommandFunc
	fallback Handler
}

// NewCommandMux returns an empty mux.
func NewCommandMux() *CommandMux {
	return &CommandMux{commands: make(map[string]CommandFunc)}
}

// Handle registers fn for name, given with or without the leading slash.
func (m *CommandMux) Handle(name string, fn CommandFunc) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.commands[strings.ToLower(strings.TrimPrefix(name, "/"))] = fn
}

// Fallback sets the handler for updates no command matched.
func (m *CommandMux) Fallback(h Handler) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.fallback = h
}

// HandleUpdate implements Handler.
func (m *CommandMux) HandleUpdate(ctx context.Context, u botapi.Update) error {
	msg := u.Message
	if msg == nil {
		msg = u.ChannelPost
	}

	m.mu.RLock()
	fallback := m.fallback
	var fn CommandFunc
	var args string
	if msg != nil {
		if name, rest, ok := ParseCommand(msg.Text); ok {
			fn = m.commands[name]
			args = rest
		}
	}
	m.mu.RUnlock()

	if fn != nil {
		return fn(ctx, msg, args)
	}
	if fallback != nil {
		return fallback.HandleUpdate(ctx, u)
	}
	return nil
}

// ParseCommand splits "/name@bot args" into a lower-cased name and args.
func ParseCommand(text string) (name, args string, ok bool) {
	if !strings.HasPrefix(text, "/") {
		return "", "", false
	}
	head, rest, _ := strings.Cut(text[1:], " ")
	head, _, _ = strings.Cut(head, "@")
	if head == "" {
		return "", "", false
	}
	return strings.ToLower(head), strings.TrimSpace(rest), true
}
