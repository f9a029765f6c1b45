package mailer

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/murdoch-its/complaints-api/pkg/config"
	"github.com/murdoch-its/complaints-api/pkg/jobs"
)

const (
	jobTicketConfirmation = "ticket_confirmation"
	jobLoginCode          = "login_code"
)

// AsyncNotifier decouples mail delivery from the request lifecycle by pushing
// messages onto a background worker queue. A slow or failing SMTP endpoint
// never blocks a request thread; delivery failures are retried and then
// logged.
type AsyncNotifier struct {
	inner   Notifier
	queue   *jobs.Queue
	logger  *zap.Logger
	timeout config.MailerConfig
}

// NewAsyncNotifier wraps inner with a worker queue.
func NewAsyncNotifier(inner Notifier, cfg config.MailerConfig, logger *zap.Logger) *AsyncNotifier {
	if logger == nil {
		logger = zap.NewNop()
	}
	n := &AsyncNotifier{inner: inner, logger: logger, timeout: cfg}
	n.queue = jobs.NewQueue("mailer", n.handle, jobs.QueueConfig{
		Workers:    cfg.Workers,
		MaxRetries: cfg.MaxRetries,
		RetryDelay: cfg.RetryDelay,
		Logger:     logger,
	})
	return n
}

// Start launches the delivery workers.
func (n *AsyncNotifier) Start(ctx context.Context) {
	n.queue.Start(ctx)
}

// Stop drains the workers.
func (n *AsyncNotifier) Stop() {
	n.queue.Stop()
}

// SendTicketConfirmation enqueues a submission confirmation.
func (n *AsyncNotifier) SendTicketConfirmation(_ context.Context, msg TicketConfirmation) error {
	return n.enqueue(jobTicketConfirmation, msg)
}

// SendLoginCode enqueues an OTP delivery.
func (n *AsyncNotifier) SendLoginCode(_ context.Context, msg LoginCode) error {
	return n.enqueue(jobLoginCode, msg)
}

func (n *AsyncNotifier) enqueue(jobType string, payload interface{}) error {
	return n.queue.Enqueue(jobs.Job{
		ID:      uuid.NewString(),
		Type:    jobType,
		Payload: payload,
	})
}

func (n *AsyncNotifier) handle(ctx context.Context, job jobs.Job) error {
	if n.timeout.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, n.timeout.Timeout)
		defer cancel()
	}

	switch job.Type {
	case jobTicketConfirmation:
		msg, ok := job.Payload.(TicketConfirmation)
		if !ok {
			n.logger.Error("mailer job carries unexpected payload", zap.String("type", job.Type))
			return nil
		}
		return n.inner.SendTicketConfirmation(ctx, msg)
	case jobLoginCode:
		msg, ok := job.Payload.(LoginCode)
		if !ok {
			n.logger.Error("mailer job carries unexpected payload", zap.String("type", job.Type))
			return nil
		}
		return n.inner.SendLoginCode(ctx, msg)
	default:
		return fmt.Errorf("unknown mailer job type %q", job.Type)
	}
}
