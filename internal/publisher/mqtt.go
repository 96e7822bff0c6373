package publisher

import (
	"encoding/json"
	"fmt"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"

	"github.com/jgoulah/powercurve/internal/config"
	"github.com/jgoulah/powercurve/pkg/models"
)

const publishTimeout = 10 * time.Second

// Publisher sends daily consumption figures to an MQTT broker
type Publisher struct {
	client      mqtt.Client
	topicPrefix string
}

// New connects to the configured broker
func New(mqttCfg config.MQTTConfig) (*Publisher, error) {
	if !mqttCfg.Enabled {
		return nil, fmt.Errorf("MQTT publishing is not enabled in config")
	}
	if mqttCfg.Broker == "" {
		return nil, fmt.Errorf("MQTT broker address is required when enabled")
	}

	clientID := mqttCfg.ClientID
	if clientID == "" {
		clientID = "powercurve"
	}

	opts := mqtt.NewClientOptions()
	opts.AddBroker(fmt.Sprintf("tcp://%s", mqttCfg.Broker))
	opts.SetClientID(clientID)
	opts.SetAutoReconnect(true)
	opts.SetConnectRetry(true)
	opts.SetConnectTimeout(10 * time.Second)

	if mqttCfg.Username != "" {
		opts.SetUsername(mqttCfg.Username)
	}
	if mqttCfg.Password != "" {
		opts.SetPassword(mqttCfg.Password)
	}

	client := mqtt.NewClient(opts)
	if token := client.Connect(); token.Wait() && token.Error() != nil {
		return nil, fmt.Errorf("connecting to MQTT broker: %w", token.Error())
	}

	return NewWithClient(client, mqttCfg.TopicPrefix), nil
}

// NewWithClient wraps an already connected client
func NewWithClient(client mqtt.Client, topicPrefix string) *Publisher {
	if topicPrefix == "" {
		topicPrefix = "powercurve"
	}
	return &Publisher{client: client, topicPrefix: topicPrefix}
}

// DailyPayload is the retained state message for one day
type DailyPayload struct {
	Date          string  `json:"date"`
	Year          int     `json:"year"`
	Day           int     `json:"day"`
	GWh           float64 `json:"gwh"`
	CumulativeGWh float64 `json:"cumulative_gwh"`
	PublishedAt   string  `json:"published_at"`
}

// Topic returns the state topic for daily consumption
func (p *Publisher) Topic() string {
	return p.topicPrefix + "/daily/state"
}

// Publish sends one day of the year report as a retained message
func (p *Publisher) Publish(date string, row models.YearRow) error {
	payload := DailyPayload{
		Date:          date,
		Year:          row.Year,
		Day:           row.Day,
		GWh:           row.Value,
		CumulativeGWh: row.Cumulative,
		PublishedAt:   time.Now().UTC().Format(time.RFC3339),
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("encoding payload: %w", err)
	}

	token := p.client.Publish(p.Topic(), 1, true, body)
	if !token.WaitTimeout(publishTimeout) {
		return fmt.Errorf("publishing to %s: timed out", p.Topic())
	}
	if err := token.Error(); err != nil {
		return fmt.Errorf("publishing to %s: %w", p.Topic(), err)
	}
	return nil
}

// Close disconnects from the MQTT broker
func (p *Publisher) Close() {
	if p.client != nil && p.client.IsConnected() {
		p.client.Disconnect(250)
	}
}
