// Package telemetry republishes Protocol Engine observer events to an
// external MQTT broker for dashboards that live outside this process.
package telemetry

import (
	"encoding/json"
	"fmt"
	"log"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"

	"github.com/frc-ds/ds-core/internal/protocol"
)

// Publisher wraps a PAHO client and knows how to build the frc/<team>/*
// topic names. It is disabled entirely (every method a no-op) when
// constructed with an empty broker URL, so the engine runs identically
// with or without it attached.
type Publisher struct {
	client  mqtt.Client
	team    int
	enabled bool
}

// NewPublisher connects to brokerURL, or returns a disabled Publisher
// when brokerURL is empty.
func NewPublisher(brokerURL string, team int) *Publisher {
	if brokerURL == "" {
		return &Publisher{enabled: false}
	}

	opts := mqtt.NewClientOptions().
		AddBroker(brokerURL).
		SetClientID(fmt.Sprintf("dscore-%d", team)).
		SetKeepAlive(60 * time.Second).
		SetPingTimeout(1 * time.Second).
		SetAutoReconnect(true).
		SetMaxReconnectInterval(10 * time.Second).
		SetCleanSession(true)

	opts.SetConnectionLostHandler(func(_ mqtt.Client, err error) {
		log.Printf("telemetry: lost connection to broker: %v", err)
	})
	opts.SetOnConnectHandler(func(_ mqtt.Client) {
		log.Printf("telemetry: connected to %s", brokerURL)
	})

	client := mqtt.NewClient(opts)
	p := &Publisher{client: client, team: team, enabled: true}

	token := client.Connect()
	if token.Wait() && token.Error() != nil {
		log.Printf("telemetry: initial connect failed, will auto-reconnect: %v", token.Error())
	}

	return p
}

// PublishVoltage publishes a retained message on frc/<team>/voltage.
func (p *Publisher) PublishVoltage(voltage float64) {
	p.publish("voltage", map[string]float64{"voltage": voltage})
}

// PublishCode publishes a retained message on frc/<team>/code.
func (p *Publisher) PublishCode(present bool) {
	p.publish("code", map[string]bool{"present": present})
}

// PublishMode publishes a retained message on frc/<team>/mode.
func (p *Publisher) PublishMode(mode protocol.ControlMode) {
	p.publish("mode", map[string]string{"mode": mode.String()})
}

func (p *Publisher) publish(subtopic string, payload interface{}) {
	if !p.enabled {
		return
	}

	body, err := json.Marshal(payload)
	if err != nil {
		log.Printf("telemetry: failed to marshal %s payload: %v", subtopic, err)
		return
	}

	topic := fmt.Sprintf("frc/%d/%s", p.team, subtopic)
	token := p.client.Publish(topic, 0, true, body)
	if token.Wait() && token.Error() != nil {
		log.Printf("telemetry: publish to %s failed: %v", topic, token.Error())
	}
}

// Close disconnects the underlying client, if connected.
func (p *Publisher) Close() {
	if p.enabled {
		p.client.Disconnect(250)
	}
}
