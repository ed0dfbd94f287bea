package telemetry

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	mqtt "github.com/eclipse/paho.mqtt.golang"
)

// MQTTPublisher publishes tick reports to an MQTT topic at QoS 0.
type MQTTPublisher struct {
	client mqtt.Client
	topic  string
	log    *slog.Logger
}

func NewMQTTPublisher(brokerAddr, topic string, log *slog.Logger) (*MQTTPublisher, error) {
	opts := mqtt.NewClientOptions().AddBroker(brokerAddr)
	client := mqtt.NewClient(opts)
	if token := client.Connect(); token.Wait() && token.Error() != nil {
		return nil, fmt.Errorf("mqtt connect: %w", token.Error())
	}
	l := log.With("component", "mqtt-publisher", "topic", topic)
	l.Info("mqtt client connected", "broker", brokerAddr)
	return &MQTTPublisher{client: client, topic: topic, log: l}, nil
}

func (p *MQTTPublisher) Publish(_ context.Context, msg TickReportMessage) error {
	payload, err := json.Marshal(msg)
	if err != nil {
		p.log.Error("marshal failed", "err", err)
		return err
	}
	token := p.client.Publish(p.topic, 0, false, payload)
	token.Wait()
	if err := token.Error(); err != nil {
		p.log.Error("mqtt publish failed", "err", err, "tick", msg.Tick)
		return err
	}
	return nil
}

func (p *MQTTPublisher) Close() error {
	p.client.Disconnect(250)
	return nil
}
