package limiter

import (
	"context"
	"time"

	types "github.com/desain-gratis/blog/types/http"
)

// Repository counts events per key inside a fixed window.
// Implementation needs to be aware of distributed system nature.
type Repository interface {
	Get(ctx context.Context, key string) (counter int, remaining time.Duration, err *types.CommonError)
	Increment(ctx context.Context, key string, window time.Duration) (err *types.CommonError)
}

type unlimited struct{}

// NewUnlimited is a pass-through limiter for tests and setups without redis.
func NewUnlimited() *unlimited {
	return &unlimited{}
}

func (u *unlimited) Get(ctx context.Context, key string) (int, time.Duration, *types.CommonError) {
	return 0, 0, nil
}

func (u *unlimited) Increment(ctx context.Context, key string, window time.Duration) *types.CommonError {
	return nil
}
