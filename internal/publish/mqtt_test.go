package publish

import (
	"testing"
	"time"
)

func TestNewPublisherDefaults(t *testing.T) {
	p, err := NewPublisher(Options{BrokerURL: "tcp://localhost:1883"})
	if err != nil {
		t.Fatalf("new publisher: %v", err)
	}
	if p.opts.Topic != "wfreport/runs" {
		t.Fatalf("unexpected default topic: %q", p.opts.Topic)
	}
	if p.opts.ClientID != "wfreport-publisher" {
		t.Fatalf("unexpected default client id: %q", p.opts.ClientID)
	}
	if p.opts.Timeout != 10*time.Second {
		t.Fatalf("unexpected default timeout: %v", p.opts.Timeout)
	}
}

func TestNewPublisherRejectsEmptyBroker(t *testing.T) {
	if _, err := NewPublisher(Options{}); err == nil {
		t.Fatal("expected error for empty broker url")
	}
}
