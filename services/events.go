package services

import (
	"context"
	"encoding/json"
	"time"

	"go.uber.org/zap"

	"github.com/latum0/exonyb-sub001/kafka"
	"github.com/latum0/exonyb-sub001/logger"
	"github.com/latum0/exonyb-sub001/models"
	aws_pkg "github.com/latum0/exonyb-sub001/pkg/aws"
)

// EventPublisher fans order and stock events out to Kafka and SNS after a
// transaction commits. Publication is best-effort: a broker failure is
// logged and never fails the request. Nil-safe so wiring stays optional.
type EventPublisher struct {
	producer    kafka.ProducerAPI
	snsClient   aws_pkg.SNSPublisher
	snsTopicArn string
}

func NewEventPublisher(producer kafka.ProducerAPI, snsClient aws_pkg.SNSPublisher, snsTopicArn string) *EventPublisher {
	return &EventPublisher{producer: producer, snsClient: snsClient, snsTopicArn: snsTopicArn}
}

func (p *EventPublisher) PublishOrderEvent(ctx context.Context, order *models.Order, action, userID string) {
	if p == nil || order == nil {
		return
	}
	evt := models.OrderEvent{
		OrderID:   order.ID.String(),
		ClientID:  order.ClientID.String(),
		Action:    action,
		Total:     order.Total.String(),
		UserID:    userID,
		Timestamp: time.Now().UTC(),
	}

	if p.producer != nil {
		if err := p.producer.SendOrderEvent(evt); err != nil {
			logger.Warn(ctx, "Kafka order event publish failed",
				zap.String("order_id", evt.OrderID),
				zap.Error(err),
			)
		}
	}

	p.publishSNS(ctx, evt)
}

func (p *EventPublisher) PublishStockAlert(ctx context.Context, evt models.StockAlertEvent) {
	if p == nil {
		return
	}
	evt.Timestamp = time.Now().UTC()

	if p.producer != nil {
		if err := p.producer.SendStockAlert(evt); err != nil {
			logger.Warn(ctx, "Kafka stock alert publish failed",
				zap.String("product_id", evt.ProductID),
				zap.Error(err),
			)
		}
	}

	p.publishSNS(ctx, evt)
}

func (p *EventPublisher) publishSNS(ctx context.Context, payload interface{}) {
	if p.snsClient == nil || p.snsTopicArn == "" {
		return
	}
	data, err := json.Marshal(payload)
	if err != nil {
		logger.Warn(ctx, "Failed to marshal event for SNS", zap.Error(err))
		return
	}
	if err := p.snsClient.Publish(ctx, p.snsTopicArn, data); err != nil {
		logger.Warn(ctx, "SNS publish failed", zap.Error(err))
	}
}
