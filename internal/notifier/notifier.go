// Package notifier implements the outbound email actor. Messages are
// queued without blocking the caller and drained periodically by a single
// goroutine; a failed delivery is logged and counted, never propagated back
// to the request that queued it.
package notifier

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"sync"
	"sync/atomic"
	"time"

	gomail "github.com/wneessen/go-mail"

	"github.com/mkarpenko/streamhub/internal/config"
	"github.com/mkarpenko/streamhub/internal/logger"
	"github.com/mkarpenko/streamhub/models"
)

var (
	// ErrQueueFull is returned when the outgoing message queue is at
	// capacity.
	ErrQueueFull = errors.New("notifier queue is full")

	// ErrNotifierClosed is returned for messages queued after Shutdown.
	ErrNotifierClosed = errors.New("notifier is stopped")

	// ErrInvalidAddress is returned for recipient addresses that do not
	// parse as email addresses.
	ErrInvalidAddress = errors.New("invalid email address")
)

// Sender delivers built messages. *gomail.Client satisfies it; tests swap
// in a recorder.
type Sender interface {
	DialAndSend(messages ...*gomail.Msg) error
}

// Notifier is the caller-side handle to the email actor. Safe for
// concurrent use.
type Notifier struct {
	queue    chan *gomail.Msg
	done     chan struct{}
	exited   chan struct{}
	stopOnce sync.Once

	sender      Sender
	from        string
	frontendURL string
	period      time.Duration

	sent   atomic.Uint64
	failed atomic.Uint64

	logger *logger.Logger
}

// New builds the SMTP client from cfg and starts the drain loop.
func New(cfg config.SMTP, frontendURL string, log *logger.Logger) (*Notifier, error) {
	opts := []gomail.Option{
		gomail.WithPort(cfg.Port),
		gomail.WithTLSPolicy(gomail.TLSOpportunistic),
	}
	if cfg.Username != "" {
		opts = append(opts,
			gomail.WithSMTPAuth(gomail.SMTPAuthPlain),
			gomail.WithUsername(cfg.Username),
			gomail.WithPassword(cfg.Password),
		)
	}

	client, err := gomail.NewClient(cfg.Host, opts...)
	if err != nil {
		return nil, fmt.Errorf("error building smtp client: %w", err)
	}

	return start(client, cfg, frontendURL, log), nil
}

// start wires a sender into a running actor. Split from New so tests can
// inject a fake sender and a short period.
func start(sender Sender, cfg config.SMTP, frontendURL string, log *logger.Logger) *Notifier {
	n := &Notifier{
		queue:       make(chan *gomail.Msg, cfg.QueueSize),
		done:        make(chan struct{}),
		exited:      make(chan struct{}),
		sender:      sender,
		from:        cfg.From,
		frontendURL: frontendURL,
		period:      cfg.SendPeriod,
		logger:      log,
	}

	go n.run()

	return n
}

// SendRegistration queues the account verification email for addr. The
// message embeds the validation link the recipient must follow.
func (n *Notifier) SendRegistration(addr, validationCode string) error {
	if _, err := mail.ParseAddress(addr); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidAddress, err)
	}

	link := fmt.Sprintf("%s/?val_code=%s", n.frontendURL, validationCode)

	textBody := fmt.Sprintf("Welcome to StreamHub - build your own streaming channel! "+
		"Please paste the following link into your browser to complete registration %s - "+
		"if you did not attempt to register at StreamHub please just delete this email.", link)
	htmlBody := fmt.Sprintf("<p>Welcome to StreamHub - build your own streaming channel!</p> "+
		"<p><a href=%q>Please click here to complete registration</a></p> "+
		"<p>If you did not attempt to register at StreamHub please just delete this email.</p>", link)

	msg := gomail.NewMsg()
	if err := msg.From(n.from); err != nil {
		return fmt.Errorf("error setting sender address: %w", err)
	}
	if err := msg.To(addr); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidAddress, err)
	}
	msg.Subject("StreamHub: Verify Your Account")
	msg.SetBodyString(gomail.TypeTextPlain, textBody)
	msg.AddAlternativeString(gomail.TypeTextHTML, htmlBody)

	select {
	case <-n.done:
		return ErrNotifierClosed
	default:
	}

	select {
	case n.queue <- msg:
		return nil
	default:
		return ErrQueueFull
	}
}

// Shutdown stops the drain loop after one final flush of the queue. Safe
// to call more than once, concurrently included.
func (n *Notifier) Shutdown(ctx context.Context) error {
	n.stopOnce.Do(func() { close(n.done) })

	select {
	case <-n.exited:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (n *Notifier) run() {
	defer close(n.exited)

	ticker := time.NewTicker(n.period)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			n.flush()
		case <-n.done:
			n.flush()
			return
		}
	}
}

// flush drains everything currently queued. Each message is attempted
// independently; one failure never blocks the rest.
func (n *Notifier) flush() {
	for {
		select {
		case msg := <-n.queue:
			if err := n.sender.DialAndSend(msg); err != nil {
				n.failed.Add(1)
				n.logger.Err(err).Msg("error sending registration email")
				continue
			}
			n.sent.Add(1)
			n.logger.Info().Msg("registration email sent")
		default:
			return
		}
	}
}

// AppendStatus folds the notifier's counters into a status report.
func (n *Notifier) AppendStatus(report *models.StatusReport) {
	report.Counters["emails_sent"] = n.sent.Load()
	report.Counters["emails_failed"] = n.failed.Load()
	report.Counters["email_queue_length"] = uint64(len(n.queue))
}
