package redis

import (
	"context"
	"time"

	"github.com/go-redis/redis/v8"

	"github.com/desain-gratis/blog/repository/limiter"
	types "github.com/desain-gratis/blog/types/http"
)

var _ limiter.Repository = &defaultHandler{}

type defaultHandler struct {
	client *redis.Client
	prefix string
}

func New(client *redis.Client, prefix string) *defaultHandler {
	return &defaultHandler{
		client: client,
		prefix: prefix,
	}
}

func (d *defaultHandler) Get(ctx context.Context, key string) (int, time.Duration, *types.CommonError) {
	combinedKey := d.prefix + "|" + key

	str := d.client.Get(ctx, combinedKey)
	if str.Err() != nil {
		if str.Err() == redis.Nil {
			return 0, 0, nil
		}
		return 0, 0, &types.CommonError{
			Errors: []types.Error{
				{Code: "FAILED_TO_GET_LIMITER", Message: str.Err().Error()},
			},
		}
	}

	strTTL := d.client.TTL(ctx, combinedKey)
	if strTTL.Err() != nil {
		return 0, 0, &types.CommonError{
			Errors: []types.Error{
				{Code: "FAILED_TO_GET_LIMITER", Message: strTTL.Err().Error()},
			},
		}
	}

	counter, err := str.Int()
	if err != nil {
		return 0, 0, &types.CommonError{
			Errors: []types.Error{
				{Code: "FAILED_TO_CONVERT_TO_INTEGER", Message: err.Error()},
			},
		}
	}

	return counter, strTTL.Val(), nil
}

func (d *defaultHandler) Increment(ctx context.Context, key string, window time.Duration) *types.CommonError {
	combinedKey := d.prefix + "|" + key

	res := d.client.Incr(ctx, combinedKey)
	if res.Err() != nil {
		return &types.CommonError{
			Errors: []types.Error{
				{Code: "FAILED_TO_INCREMENT", Message: res.Err().Error()},
			},
		}
	}

	// first hit in the window owns the expiry
	if res.Val() == 1 {
		exp := d.client.Expire(ctx, combinedKey, window)
		if exp.Err() != nil {
			return &types.CommonError{
				Errors: []types.Error{
					{Code: "FAILED_TO_EXPIRE", Message: exp.Err().Error()},
				},
			}
		}
	}

	return nil
}
