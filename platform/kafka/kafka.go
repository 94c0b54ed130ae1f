package kafka

import (
	"context"
)

type (
	Middleware     func(next MessageHandler) MessageHandler
	MessageHandler func(ctx context.Context, msg Message) error
)

type Consumer interface {
	Consume(ctx context.Context, handler MessageHandler) error
}

type Producer interface {
	Send(ctx context.Context, msg OutgoingMessage) error
}

// Chain applies middlewares so that the first one is the outermost.
func Chain(handler MessageHandler, middlewares ...Middleware) MessageHandler {
	for i := len(middlewares) - 1; i >= 0; i-- {
		handler = middlewares[i](handler)
	}
	return handler
}
