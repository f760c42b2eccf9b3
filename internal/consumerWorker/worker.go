package consumerWorker

import (
	"context"
	"encoding/json"

	"github.com/wb-go/wbf/zlog"

	"eventease/internal/dto"
	"eventease/internal/mailer"
	"eventease/internal/model"
)

// Consumer is the queue side the reader needs; satisfied by rabbit.Client.
type Consumer interface {
	Consume(handler func([]byte) error) error
}

// BookingGetter is the slice of the repository the reader needs.
type BookingGetter interface {
	GetBookingByID(ctx context.Context, id int64) (*model.BookingDetail, error)
}

type Reader struct {
	queue  Consumer
	repo   BookingGetter
	mail   *mailer.Mailer
	done   chan struct{}
	cancel context.CancelFunc
}

func NewReader(queue Consumer, repo BookingGetter, mail *mailer.Mailer) *Reader {
	return &Reader{
		queue: queue,
		repo:  repo,
		mail:  mail,
		done:  make(chan struct{}),
	}
}

func (r *Reader) Start(ctx context.Context) {
	cctx, cancel := context.WithCancel(ctx)
	r.cancel = cancel

	zlog.Logger.Info().Msg("booking notification reader started")

	go func() {
		defer close(r.done)

		if err := r.queue.Consume(r.Handle(cctx)); err != nil {
			zlog.Logger.Error().Err(err).Msg("Failed to start consuming")
			return
		}

		<-cctx.Done()
		zlog.Logger.Info().Msg("booking notification reader stopped by context")
	}()
}

// Handle builds the message handler: unmarshal, load the booking with its
// venue and event, send the notification mail. A booking that vanished
// before the message was processed is skipped, not retried.
func (r *Reader) Handle(ctx context.Context) func([]byte) error {
	return func(body []byte) error {
		var msg dto.BookingOperateMessage
		if err := json.Unmarshal(body, &msg); err != nil {
			zlog.Logger.Error().
				Err(err).
				Msgf("Failed to unmarshal message: %s", string(body))
			return err
		}

		zlog.Logger.Info().
			Int64("booking_id", msg.BookingID).
			Int64("venue_id", msg.VenueID).
			Int64("event_id", msg.EventID).
			Msg("received booking message")

		detail, err := r.repo.GetBookingByID(ctx, msg.BookingID)
		if err != nil {
			zlog.Logger.Warn().
				Int64("booking_id", msg.BookingID).
				Msg("booking no longer exists, skipping notification")
			return nil
		}

		if err := r.mail.SendBookingNotification(detail); err != nil {
			zlog.Logger.Warn().
				Err(err).
				Int64("booking_id", msg.BookingID).
				Msg("Failed to send notification on e-mail")
		}

		return nil
	}
}

func (r *Reader) Stop() {
	if r.cancel != nil {
		r.cancel()
		<-r.done
	}
}
