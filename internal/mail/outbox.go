package mail

import (
	"context"
	"time"

	"moneywise/internal/logx"
)

// Outbox is a bounded in-process queue for fire-and-forget mail (welcome,
// password-changed). Every outcome is logged; nothing is silently dropped
// except when the queue is full, which is logged too.
type Outbox struct {
	mailer *Mailer
	log    *logx.Logger
	ch     chan message
	done   chan struct{}
}

type message struct {
	To      string
	Subject string
	Body    string
}

func NewOutbox(mailer *Mailer, log *logx.Logger) *Outbox {
	return &Outbox{
		mailer: mailer,
		log:    log.WithComponent("mail"),
		ch:     make(chan message, 128),
		done:   make(chan struct{}),
	}
}

// Enqueue queues a message without blocking the caller.
func (o *Outbox) Enqueue(to, subject, body string) {
	select {
	case o.ch <- message{To: to, Subject: subject, Body: body}:
	default:
		o.log.Warn("outbox full, dropping mail", "to", to, "subject", subject)
	}
}

// Run drains the queue until ctx is cancelled, then flushes what is left.
func (o *Outbox) Run(ctx context.Context) {
	defer close(o.done)
	for {
		select {
		case msg := <-o.ch:
			o.send(msg)
		case <-ctx.Done():
			for {
				select {
				case msg := <-o.ch:
					o.send(msg)
				default:
					return
				}
			}
		}
	}
}

// Wait blocks until Run has returned.
func (o *Outbox) Wait() {
	<-o.done
}

func (o *Outbox) send(msg message) {
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := o.mailer.Send(ctx, msg.To, msg.Subject, msg.Body); err != nil {
		o.log.Error("mail send failed", "to", msg.To, "subject", msg.Subject, "error", err)
		return
	}
	o.log.Info("mail sent", "to", msg.To, "subject", msg.Subject)
}
