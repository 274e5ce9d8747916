package service

import (
	"context"
	"crypto/tls"
	"encoding/json"
	"time"

	"member_gate/internal/config"
	"member_gate/internal/middleware"

	"github.com/segmentio/kafka-go"
	"github.com/segmentio/kafka-go/sasl/plain"
)

// SendMailEvent はメール配送サービスが購読するイベントのペイロード
type SendMailEvent struct {
	To      string `json:"to"`
	Subject string `json:"subject"`
	Body    string `json:"body"`
}

// KafkaMailer はメール本文を直接送信せず、送信イベントをKafkaに発行する実装。
// 実際の配送は別サービス(メール配送コラボレータ)が担う。
type KafkaMailer struct {
	writer *kafka.Writer
}

func NewKafkaMailer(cfg *config.KafkaConfig) Mailer {
	var transport *kafka.Transport
	if cfg.Username != "" {
		transport = &kafka.Transport{
			SASL: plain.Mechanism{
				Username: cfg.Username,
				Password: cfg.Password,
			},
			TLS: &tls.Config{},
		}
	}

	return &KafkaMailer{
		writer: &kafka.Writer{
			Addr:         kafka.TCP(cfg.Broker),
			Topic:        cfg.Topic,
			Balancer:     &kafka.LeastBytes{},
			RequiredAcks: kafka.RequireAll,
			Async:        false,
			Transport:    transport,
			WriteTimeout: 10 * time.Second,
		},
	}
}

func (m *KafkaMailer) Send(ctx context.Context, to, subject, body string) error {
	logger := middleware.GetLogger(ctx)

	value, err := json.Marshal(SendMailEvent{To: to, Subject: subject, Body: body})
	if err != nil {
		logger.Error("Failed to marshal send-mail event", "error", err)
		return err
	}

	writeCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	err = m.writer.WriteMessages(writeCtx, kafka.Message{
		Key:   []byte(to),
		Value: value,
		Time:  time.Now(),
	})
	if err != nil {
		logger.Error("Failed to publish send-mail event", "error", err, "to", to)
		return err
	}

	logger.Info("Send-mail event published", "to", to, "subject", subject)
	return nil
}
