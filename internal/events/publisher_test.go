package events

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/rabbitmq/amqp091-go"
	"github.com/shopspring/decimal"
)

type fakeChannel struct {
	exchange string
	key      string
	msg      amqp091.Publishing
	err      error
	closed   bool
}

func (f *fakeChannel) PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp091.Publishing) error {
	if _, ok := ctx.Deadline(); !ok {
		return errors.New("publish without deadline")
	}
	f.exchange, f.key, f.msg = exchange, key, msg
	return f.err
}

func (f *fakeChannel) Close() error {
	f.closed = true
	return nil
}

func TestAMQPPublisherPublish(t *testing.T) {
	ch := &fakeChannel{}
	p := &AMQPPublisher{channel: ch, exchangeName: "splitty"}

	msg := NewMessage(SettlementRecorded, "owner-1", "exp-1", map[string]decimal.Decimal{
		"f1": decimal.Zero,
	})
	if err := p.Publish(context.Background(), msg); err != nil {
		t.Fatalf("Publish() error = %v", err)
	}

	if ch.exchange != "splitty" || ch.key != "settlement.recorded" {
		t.Errorf("published to %s/%s", ch.exchange, ch.key)
	}
	if ch.msg.DeliveryMode != amqp091.Persistent || ch.msg.ContentType != "application/json" {
		t.Errorf("publishing = %+v", ch.msg)
	}

	var got Message
	if err := json.Unmarshal(ch.msg.Body, &got); err != nil {
		t.Fatalf("body is not a message: %v", err)
	}
	if got.Kind != SettlementRecorded || got.OwnerID != "owner-1" || got.ExpenseID != "exp-1" {
		t.Errorf("decoded = %+v", got)
	}
	if b, ok := got.Balances["f1"]; !ok || !b.IsZero() {
		t.Errorf("Balances = %v", got.Balances)
	}

	if err := p.Close(); err != nil {
		t.Errorf("Close() error = %v", err)
	}
	if !ch.closed {
		t.Error("channel not closed")
	}
}

func TestAMQPPublisherPublishError(t *testing.T) {
	p := &AMQPPublisher{channel: &fakeChannel{err: errors.New("broker down")}, exchangeName: "x"}
	if err := p.Publish(context.Background(), NewMessage(ExpenseRecorded, "o", "e", nil)); err == nil {
		t.Error("Publish() error = nil, want error")
	}
}

func TestNop(t *testing.T) {
	var p Publisher = Nop{}
	if err := p.Publish(context.Background(), NewMessage(ExpenseDeleted, "o", "e", nil)); err != nil {
		t.Errorf("Publish() error = %v", err)
	}
}
