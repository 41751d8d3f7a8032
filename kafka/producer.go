package kafka

import (
	"context"
	"encoding/json"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	"github.com/latum0/exonyb-sub001/logger"
	"github.com/latum0/exonyb-sub001/models"
)

// ProducerAPI is the event publishing surface the services depend on.
type ProducerAPI interface {
	Publish(topic string, message []byte) error
	SendOrderEvent(evt models.OrderEvent) error
	SendStockAlert(evt models.StockAlertEvent) error
}

type Producer struct {
	writer     *kafka.Writer
	orderTopic string
	alertTopic string
}

func NewProducer(brokers []string, orderTopic, alertTopic string) *Producer {
	w := &kafka.Writer{
		Addr:     kafka.TCP(brokers...),
		Balancer: &kafka.LeastBytes{},
	}
	logger.Log.Info("Kafka producer initialized",
		zap.Strings("brokers", brokers),
		zap.String("order_topic", orderTopic),
		zap.String("alert_topic", alertTopic),
	)
	return &Producer{writer: w, orderTopic: orderTopic, alertTopic: alertTopic}
}

func (p *Producer) Publish(topic string, message []byte) error {
	msg := kafka.Message{
		Topic: topic,
		Value: message,
	}
	return p.writer.WriteMessages(context.Background(), msg)
}

func (p *Producer) SendOrderEvent(evt models.OrderEvent) error {
	data, err := json.Marshal(evt)
	if err != nil {
		return err
	}
	msg := kafka.Message{
		Topic: p.orderTopic,
		Key:   []byte(evt.OrderID),
		Value: data,
	}
	if err := p.writer.WriteMessages(context.Background(), msg); err != nil {
		logger.Log.Error("Failed to publish order event",
			zap.String("order_id", evt.OrderID),
			zap.String("action", evt.Action),
			zap.Error(err),
		)
		return err
	}
	return nil
}

func (p *Producer) SendStockAlert(evt models.StockAlertEvent) error {
	data, err := json.Marshal(evt)
	if err != nil {
		return err
	}
	msg := kafka.Message{
		Topic: p.alertTopic,
		Key:   []byte(evt.ProductID),
		Value: data,
	}
	if err := p.writer.WriteMessages(context.Background(), msg); err != nil {
		logger.Log.Error("Failed to publish stock alert",
			zap.String("product_id", evt.ProductID),
			zap.Error(err),
		)
		return err
	}
	return nil
}

func (p *Producer) Close() error {
	return p.writer.Close()
}
