package notify

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/d3ntaltech/calendrier/internal/log"
	"github.com/d3ntaltech/calendrier/internal/model"
)

// Dispatcher mails every committed change to a fixed recipient list. Sends
// happen in the background; failures are logged and dropped.
type Dispatcher struct {
	transport  Transport
	recipients []string
	timeout    time.Duration
	wg         sync.WaitGroup
}

func NewDispatcher(transport Transport, recipients []string, timeout time.Duration) *Dispatcher {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Dispatcher{
		transport:  transport,
		recipients: append([]string(nil), recipients...),
		timeout:    timeout,
	}
}

// Notify has the signature of db.Hook and returns without waiting for delivery.
func (d *Dispatcher) Notify(ctx context.Context, change model.Change) {
	msg, err := RenderChange(change)
	if err != nil {
		log.Error("render notification", err, "action", change.Action, "event_id", change.Event.ID)
		return
	}

	base := context.WithoutCancel(ctx)
	d.wg.Add(1)
	go func() {
		defer d.wg.Done()
		if err := d.Send(base, msg); err != nil {
			log.Error("notification not delivered", err,
				"action", change.Action,
				"event_id", change.Event.ID,
				"actor", change.Actor,
			)
			return
		}
		log.Debug("notification sent", "action", change.Action, "event_id", change.Event.ID)
	}()
}

// Send delivers msg to the dispatcher's recipients, giving up after the
// configured timeout. Every failure is a *TransportError.
func (d *Dispatcher) Send(ctx context.Context, msg Message) error {
	msg.To = d.recipients

	ctx, cancel := context.WithTimeout(ctx, d.timeout)
	defer cancel()

	done := make(chan error, 1)
	go func() {
		done <- d.transport.Send(ctx, msg)
	}()

	var err error
	select {
	case err = <-done:
	case <-ctx.Done():
		err = ctx.Err()
	}
	if err == nil {
		return nil
	}

	var transportErr *TransportError
	if errors.As(err, &transportErr) {
		return transportErr
	}
	return &TransportError{Op: "send", Err: err}
}

// Wait blocks until background sends have finished.
func (d *Dispatcher) Wait() {
	d.wg.Wait()
}

// Hook adapts the dispatcher for db.Store.OnChange.
func (d *Dispatcher) Hook() func(context.Context, model.Change) {
	return d.Notify
}
