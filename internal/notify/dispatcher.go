package notify

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// DefaultSendTimeout bounds a single provider call when no timeout is
// configured. The provider may hang; an expired send becomes a failure
// outcome for that token only.
const DefaultSendTimeout = 10 * time.Second

// Dispatcher fans a notification out to a set of destination tokens.
//
// Sends run concurrently, one delivery attempt per token, no retries.
// Outcomes are collected by input position so the result order matches the
// token order regardless of completion order. A failing token never affects
// its siblings.
type Dispatcher struct {
	sender  Sender
	timeout time.Duration
	log     *zerolog.Logger
}

// NewDispatcher creates a dispatcher delivering through sender, bounding
// each provider call with timeout.
func NewDispatcher(sender Sender, timeout time.Duration, logger *zerolog.Logger) *Dispatcher {
	if timeout <= 0 {
		timeout = DefaultSendTimeout
	}
	return &Dispatcher{
		sender:  sender,
		timeout: timeout,
		log:     logger,
	}
}

// Dispatch delivers n to every token and returns one outcome per token, in
// input order. Always returns len(tokens) outcomes.
func (d *Dispatcher) Dispatch(ctx context.Context, n Notification, tokens []string) []Outcome {
	outcomes := make([]Outcome, len(tokens))

	var wg sync.WaitGroup
	for i, token := range tokens {
		wg.Add(1)
		go func(i int, token string) {
			defer wg.Done()
			outcomes[i] = d.send(ctx, n, token)
		}(i, token)
	}
	wg.Wait()

	return outcomes
}

func (d *Dispatcher) send(ctx context.Context, n Notification, token string) Outcome {
	sendCtx, cancel := context.WithTimeout(ctx, d.timeout)
	defer cancel()

	receipt, err := d.sender.Send(sendCtx, token, n)
	if err != nil {
		d.log.Debug().Err(err).Str("token", token).Msg("push delivery failed")
		return Outcome{Token: token, Err: err}
	}

	return Outcome{Token: token, Receipt: receipt}
}
