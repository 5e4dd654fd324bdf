package service

import (
	"context"
	"time"

	"github.com/mmynk/splitty/internal/events"
	"github.com/mmynk/splitty/internal/format"
	"github.com/mmynk/splitty/internal/metrics"
)

// Options carries the collaborators shared by all services. Zero fields get
// working defaults.
type Options struct {
	// Location defines calendar months. Defaults to time.Local.
	Location *time.Location

	// Currency formats amounts for display. Defaults to USD in en-US.
	Currency format.CurrencyFormatter

	// Publisher receives ledger events. Defaults to events.Nop.
	Publisher events.Publisher

	// Metrics may be nil.
	Metrics *metrics.Metrics

	// LoadTimeout bounds the concurrent loads behind a single request.
	LoadTimeout time.Duration

	// Now returns the current time. Defaults to time.Now.
	Now func() time.Time
}

func (o Options) withDefaults() Options {
	if o.Location == nil {
		o.Location = time.Local
	}
	if o.Currency == nil {
		c, err := format.NewCurrency("USD", "en-US")
		if err != nil {
			panic(err)
		}
		o.Currency = c
	}
	if o.Publisher == nil {
		o.Publisher = events.Nop{}
	}
	if o.LoadTimeout <= 0 {
		o.LoadTimeout = 10 * time.Second
	}
	if o.Now == nil {
		o.Now = time.Now
	}
	return o
}

func (o Options) now() time.Time {
	return o.Now().In(o.Location)
}

func (o Options) loadContext(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, o.LoadTimeout)
}
