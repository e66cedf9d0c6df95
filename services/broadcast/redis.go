// Package broadcastsvc implements core.Broadcaster on different backends.
// The redis implementation fans events out over pub/sub channels consumed by
// the gateway holding the client websocket connections.
package broadcastsvc

import (
	"context"
	"encoding/json"
	"time"

	goredis "github.com/redis/go-redis/v9"
	"github.com/pkg/errors"

	"github.com/trezcool/darasa/core"
)

type event struct {
	Type    string      `json:"type"`
	Payload interface{} `json:"payload,omitempty"`
	At      time.Time   `json:"at"`
}

type redisService struct {
	rdb    *goredis.Client
	prefix string
}

var _ core.Broadcaster = (*redisService)(nil)

func NewRedisService(conf *core.Config) (*redisService, error) {
	rdb := goredis.NewClient(&goredis.Options{
		Addr:        conf.Redis.Addr,
		Password:    conf.Redis.Password,
		DialTimeout: 5 * time.Second,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, errors.Wrap(err, "pinging redis")
	}

	return &redisService{rdb: rdb, prefix: conf.Redis.ChannelPrefix}, nil
}

func (svc redisService) Publish(ctx context.Context, channel, eventType string, payload interface{}) error {
	raw, err := json.Marshal(event{Type: eventType, Payload: payload, At: time.Now().UTC()})
	if err != nil {
		return errors.Wrap(err, "encoding event")
	}
	if err = svc.rdb.Publish(ctx, svc.prefix+channel, raw).Err(); err != nil {
		return errors.Wrap(err, "publishing event")
	}
	return nil
}

func (svc redisService) Close() error {
	return svc.rdb.Close()
}
