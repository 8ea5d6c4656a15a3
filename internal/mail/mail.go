// Package mail sends transactional email: invite links, registration notices and approval notices.
package mail

import (
	"context"
	"errors"
	"sync"
	"time"

	"fxacademy/internal/logging"
)

var ErrNoRecipients = errors.New("message has no recipients")

type Address struct {
	Name  string
	Email string
}

type Message struct {
	To      []Address
	Subject string
	Text    string
	HTML    string
}

// Sender delivers a single message synchronously.
type Sender interface {
	Send(ctx context.Context, msg Message) error
}

// Dispatcher sends messages in the background so request handlers never wait on, or fail because of, email.
type Dispatcher struct {
	sender  Sender
	log     *logging.Logger
	timeout time.Duration
	wg      sync.WaitGroup
}

func NewDispatcher(sender Sender, log *logging.Logger) *Dispatcher {
	return &Dispatcher{sender: sender, log: log, timeout: 15 * time.Second}
}

// Dispatch queues msgs; failures are logged.
func (d *Dispatcher) Dispatch(ctx context.Context, msgs ...Message) {
	base := context.WithoutCancel(ctx)
	for _, msg := range msgs {
		if len(msg.To) == 0 {
			continue
		}
		d.wg.Add(1)
		go func(msg Message) {
			defer d.wg.Done()
			sendCtx, cancel := context.WithTimeout(base, d.timeout)
			defer cancel()
			if err := d.sender.Send(sendCtx, msg); err != nil {
				d.log.Error("mail_send_failed", err, map[string]any{
					"component": "mail",
					"subject":   msg.Subject,
					"to_count":  len(msg.To),
				})
			}
		}(msg)
	}
}

// Wait blocks until every dispatched message has been handled.
func (d *Dispatcher) Wait() {
	d.wg.Wait()
}
