package bus

import (
	"context"
	"fmt"
	"reflect"
	"sync"
	"time"

	"ccivisits-backend/pkg/observability"
)

// Command represents a request that changes state.
type Command interface {
	Validate() error
}

// CommandHandler handles a specific command type.
type CommandHandler interface {
	Handle(ctx context.Context, cmd Command) error
}

// CommandHandlerFunc adapts a function to the CommandHandler interface.
type CommandHandlerFunc func(ctx context.Context, cmd Command) error

func (f CommandHandlerFunc) Handle(ctx context.Context, cmd Command) error {
	return f(ctx, cmd)
}

// CommandBus dispatches commands to their registered handlers.
type CommandBus struct {
	handlers map[reflect.Type]CommandHandler
	metrics  *observability.Metrics
	mu       sync.RWMutex
}

// NewCommandBus creates a command bus. Metrics may be nil.
func NewCommandBus(metrics *observability.Metrics) *CommandBus {
	return &CommandBus{
		handlers: make(map[reflect.Type]CommandHandler),
		metrics:  metrics,
	}
}

// Register registers a handler for a command type.
func (b *CommandBus) Register(cmdType Command, handler CommandHandler) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	t := reflect.TypeOf(cmdType)
	if _, exists := b.handlers[t]; exists {
		return fmt.Errorf("handler already registered for command type %s", t.Name())
	}
	b.handlers[t] = handler
	return nil
}

// Send validates a command and dispatches it to its handler.
func (b *CommandBus) Send(ctx context.Context, cmd Command) error {
	if err := cmd.Validate(); err != nil {
		return fmt.Errorf("command validation failed: %w", err)
	}

	b.mu.RLock()
	handler, exists := b.handlers[reflect.TypeOf(cmd)]
	b.mu.RUnlock()

	if !exists {
		return fmt.Errorf("no handler registered for command type %T", cmd)
	}

	start := time.Now()
	err := handler.Handle(ctx, cmd)
	if b.metrics != nil {
		b.metrics.RecordCommandExecution(ctx, reflect.TypeOf(cmd).Name(), time.Since(start), err)
	}
	if err != nil {
		return fmt.Errorf("command handler failed: %w", err)
	}
	return nil
}
