// Package publish ships run summaries to an MQTT broker so research-data
// collection pipelines can subscribe to simulation results as they land.
package publish

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
)

// Options configures the broker connection and target topic.
type Options struct {
	BrokerURL string
	Topic     string
	ClientID  string
	Timeout   time.Duration
}

// Summary is the payload published per run.
type Summary struct {
	RunID          string  `json:"run_id"`
	Simulation     string  `json:"simulation"`
	TotalTasks     int     `json:"total_tasks"`
	FailedTasks    int     `json:"failed_tasks"`
	CompletionDate float64 `json:"completion_date"`
	HostRows       int     `json:"host_rows"`
	PublishedAt    string  `json:"published_at"`
}

// Publisher delivers one summary per run over MQTT.
type Publisher struct {
	opts Options
}

func NewPublisher(opts Options) (*Publisher, error) {
	if strings.TrimSpace(opts.BrokerURL) == "" {
		return nil, fmt.Errorf("publish: broker url is empty")
	}
	if opts.Topic == "" {
		opts.Topic = "wfreport/runs"
	}
	if opts.ClientID == "" {
		opts.ClientID = "wfreport-publisher"
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 10 * time.Second
	}
	return &Publisher{opts: opts}, nil
}

// Publish connects, delivers the summary at QoS 1, and disconnects. The
// connection is per-run: analysis runs are short-lived processes.
func (p *Publisher) Publish(ctx context.Context, s Summary) error {
	if s.PublishedAt == "" {
		s.PublishedAt = time.Now().UTC().Format(time.RFC3339Nano)
	}
	payload, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("publish: marshal summary: %w", err)
	}

	copts := mqtt.NewClientOptions()
	copts.AddBroker(p.opts.BrokerURL)
	copts.SetClientID(p.opts.ClientID)
	copts.SetCleanSession(true)
	copts.SetAutoReconnect(false)
	copts.SetKeepAlive(30 * time.Second)
	copts.SetConnectTimeout(p.opts.Timeout)

	client := mqtt.NewClient(copts)
	token := client.Connect()
	if !token.WaitTimeout(p.opts.Timeout) {
		return fmt.Errorf("publish: connect to %q timed out", p.opts.BrokerURL)
	}
	if err := token.Error(); err != nil {
		return fmt.Errorf("publish: connect to %q: %w", p.opts.BrokerURL, err)
	}
	defer client.Disconnect(250)

	select {
	case <-ctx.Done():
		return fmt.Errorf("publish: %w", ctx.Err())
	default:
	}

	pub := client.Publish(p.opts.Topic, 1, false, payload)
	if !pub.WaitTimeout(p.opts.Timeout) {
		return fmt.Errorf("publish: delivery to %q timed out", p.opts.Topic)
	}
	if err := pub.Error(); err != nil {
		return fmt.Errorf("publish: deliver to %q: %w", p.opts.Topic, err)
	}
	return nil
}
