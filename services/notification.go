// services/notification.go
package services

import (
	"context"
	"encoding/json"
	"os"
	"time"

	appContext "github.com/alphabatem/common/context"
	log "github.com/sirupsen/logrus"

	"github.com/Vikash-Kumar001/wisestudent-sub002/dto"
)

// NotificationService fans completion events out on a Redis pub/sub channel
// so sibling app surfaces (category page, wallet header) can refresh without
// polling. Delivery is best-effort and at-most-once; the publish happens
// after the owning transaction commits and never fails the core operation.
type NotificationService struct {
	appContext.DefaultService

	redisSvc *RedisService
	channel  string
}

const NOTIFICATION_SVC = "notification_svc"

const publishTimeout = 2 * time.Second

func (svc NotificationService) Id() string {
	return NOTIFICATION_SVC
}

func (svc *NotificationService) Configure(ctx *appContext.Context) error {
	svc.channel = os.Getenv("NOTIFICATION_CHANNEL")
	if svc.channel == "" {
		svc.channel = "wisestudent:game-completed"
	}
	return svc.DefaultService.Configure(ctx)
}

func (svc *NotificationService) Start() error {
	svc.redisSvc = svc.Service(REDIS_SVC).(*RedisService)
	return nil
}

func (svc *NotificationService) PublishGameCompleted(event dto.GameCompletedEvent) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), publishTimeout)
	defer cancel()

	if err := svc.redisSvc.Publish(ctx, svc.channel, payload); err != nil {
		return err
	}

	log.WithFields(log.Fields{
		"channel": svc.channel,
		"game_id": event.GameID,
	}).Debug("Published game completion event")

	return nil
}
