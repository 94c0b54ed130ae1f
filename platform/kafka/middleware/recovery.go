package middleware

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/you-humble/paystack-checkout/platform/kafka"
)

type ErrorLogger interface {
	Error(ctx context.Context, msg string, fields ...zap.Field)
}

// Recovery turns a handler panic into an error so the message is not marked.
func Recovery(logger ErrorLogger) kafka.Middleware {
	return func(next kafka.MessageHandler) kafka.MessageHandler {
		return func(ctx context.Context, msg kafka.Message) (err error) {
			defer func() {
				if r := recover(); r != nil {
					logger.Error(ctx, "panic in kafka handler",
						zap.String("topic", msg.Topic),
						zap.Any("panic", r),
					)
					err = fmt.Errorf("kafka handler panic: %v", r)
				}
			}()
			return next(ctx, msg)
		}
	}
}
