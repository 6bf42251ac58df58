package service

import (
	"encoding/json"
	"fmt"

	"foodsense"
	"foodsense/internal/logger"

	mqtt "github.com/eclipse/paho.mqtt.golang"
)

// Notifier pushes freshly stored predictions to interested dashboards.
// Publishing is fire-and-forget: a failed publish is logged, never returned.
type Notifier interface {
	Publish(rec foodsense.PredictionRecord)
}

// MQTTNotifier publishes each prediction as a JSON payload on a fixed
// topic.
type MQTTNotifier struct {
	client mqtt.Client
	topic  string
	log    *logger.Logger
}

// NewMQTTNotifier connects to the broker and returns a ready notifier.
func NewMQTTNotifier(broker, clientID, topic string, log *logger.Logger) (*MQTTNotifier, error) {
	opts := mqtt.NewClientOptions().AddBroker(broker).SetClientID(clientID)
	client := mqtt.NewClient(opts)
	token := client.Connect()
	token.Wait()
	if err := token.Error(); err != nil {
		return nil, fmt.Errorf("connect mqtt broker %q: %w", broker, err)
	}
	return &MQTTNotifier{client: client, topic: topic, log: log}, nil
}

func (n *MQTTNotifier) Publish(rec foodsense.PredictionRecord) {
	payload, err := json.Marshal(rec)
	if err != nil {
		n.log.Errorw("mqtt_marshal_failed", "err", err)
		return
	}
	token := n.client.Publish(n.topic, 0, false, payload)
	token.Wait()
	if err := token.Error(); err != nil {
		n.log.Errorw("mqtt_publish_failed", "topic", n.topic, "err", err)
	}
}

// Close disconnects from the broker.
func (n *MQTTNotifier) Close() {
	n.client.Disconnect(250)
}
