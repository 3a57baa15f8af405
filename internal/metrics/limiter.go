package metrics

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/grpc/status"
)

// Limiter bounds the number of handlers executing at once. Calls beyond the limit wait
// for a slot and give up only when their context ends.
type Limiter struct {
	slots chan struct{}
}

// NewLimiter builds a limiter admitting n concurrent calls; n < 1 is treated as 1.
func NewLimiter(n int) *Limiter {
	if n < 1 {
		n = 1
	}
	return &Limiter{slots: make(chan struct{}, n)}
}

// InFlight reports how many calls currently hold a slot.
func (l *Limiter) InFlight() int { return len(l.slots) }

// Capacity reports the slot count.
func (l *Limiter) Capacity() int { return cap(l.slots) }

// Unary returns the server interceptor.
func (l *Limiter) Unary() grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req any, _ *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
		if err := l.acquire(ctx); err != nil {
			return nil, err
		}
		defer l.release()
		return handler(ctx, req)
	}
}

func (l *Limiter) acquire(ctx context.Context) error {
	select {
	case l.slots <- struct{}{}:
		return nil
	default:
	}

	queuedCalls.Inc()
	defer queuedCalls.Dec()
	select {
	case l.slots <- struct{}{}:
		return nil
	case <-ctx.Done():
		return status.FromContextError(ctx.Err()).Err()
	}
}

func (l *Limiter) release() { <-l.slots }
