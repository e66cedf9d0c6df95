package broadcastsvc

import (
	"context"
	"encoding/json"
	"log"

	"github.com/trezcool/darasa/core"
)

// consoleService prints events to the log; used in local dev when no redis
// is running.
type consoleService struct {
	std *log.Logger
}

var _ core.Broadcaster = (*consoleService)(nil)

func NewConsoleService(std *log.Logger) *consoleService {
	return &consoleService{std: std}
}

func (svc consoleService) Publish(_ context.Context, channel, eventType string, payload interface{}) error {
	raw, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	svc.std.Printf("broadcast [%s] %s: %s", channel, eventType, raw)
	return nil
}
