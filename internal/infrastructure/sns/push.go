package sns

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/sns"

	"github.com/alerta-api/internal/config"
)

// PushMessage is the payload delivered to client devices.
type PushMessage struct {
	Title       string  `json:"title"`
	Description string  `json:"description"`
	Emergency   bool    `json:"emergency"`
	AlertID     string  `json:"alert_id"`
	Image       *string `json:"image,omitempty"`
}

// Pusher sends push notifications via AWS SNS platform endpoints. Tokens are
// SNS endpoint ARNs registered by the mobile apps.
type Pusher interface {
	Send(ctx context.Context, msg PushMessage, tokens []string) error
}

type pusher struct {
	client *sns.Client
}

func NewPusher(cfg *config.Config) (Pusher, error) {
	awsCfg, err := awsconfig.LoadDefaultConfig(context.Background(),
		awsconfig.WithRegion(cfg.SNSRegion),
	)
	if err != nil {
		return nil, err
	}
	return &pusher{client: sns.NewFromConfig(awsCfg)}, nil
}

// Send publishes the message to each endpoint. Individual endpoint failures
// (stale registrations are common) are logged and skipped; Send fails only
// when the payload itself cannot be built.
func (p *pusher) Send(ctx context.Context, msg PushMessage, tokens []string) error {
	body, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("marshal push message: %w", err)
	}
	payload := string(body)
	for _, token := range tokens {
		t := token
		if _, err := p.client.Publish(ctx, &sns.PublishInput{
			TargetArn: &t,
			Message:   &payload,
		}); err != nil {
			slog.Warn("push publish failed", "endpoint", t, "err", err)
		}
	}
	return nil
}
