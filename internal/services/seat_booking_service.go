package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	intconfig "campushub/internal/config"
	intdb "campushub/internal/db"
	"campushub/internal/domain"
	"campushub/internal/domain/models"
	"campushub/internal/notify"
	"campushub/internal/repositories"
	"campushub/internal/utils"

	"github.com/google/uuid"
)

// ticketCodeAttempts bounds retries when a generated ticket code collides.
const ticketCodeAttempts = 3

// SeatBookingService reserves seats on trips and lets the owning agent
// confirm or cancel them.
type SeatBookingService struct {
	Trips     repositories.TripRepository
	Bookings  repositories.SeatBookingRepository
	Notifier  notify.Notifier
	DB        *sql.DB
	RequestID string
	NewCode   func() string
}

func (s SeatBookingService) db() *sql.DB {
	if s.DB != nil {
		return s.DB
	}
	return intconfig.DB
}

func (s SeatBookingService) notifier() notify.Notifier {
	if s.Notifier != nil {
		return s.Notifier
	}
	return notify.Default()
}

func (s SeatBookingService) newCode() string {
	if s.NewCode != nil {
		return s.NewCode()
	}
	return NewTicketCode()
}

// NewTicketCode returns a short random code such as "CH-3F9A1C2B7D".
func NewTicketCode() string {
	raw := strings.ReplaceAll(uuid.NewString(), "-", "")
	return "CH-" + strings.ToUpper(raw[:10])
}

func (s SeatBookingService) trip(ctx context.Context, id int64) (models.Trip, error) {
	t, err := s.Trips.GetByID(ctx, id)
	if errors.Is(err, sql.ErrNoRows) {
		return t, domain.NotFoundError{Resource: "trip", Err: err}
	}
	if err != nil {
		return t, domain.InternalError{Msg: "load trip", Err: err}
	}
	return t, nil
}

// SeatMap returns the trip layout with the seats currently held.
func (s SeatBookingService) SeatMap(ctx context.Context, tripID int64) (models.SeatMap, error) {
	t, err := s.trip(ctx, tripID)
	if err != nil {
		return models.SeatMap{}, err
	}
	taken, err := s.Bookings.TakenSeats(ctx, tripID)
	if err != nil {
		return models.SeatMap{}, domain.InternalError{Msg: "list taken seats", Err: err}
	}
	return models.SeatMap{
		Trip:       t,
		Layout:     domain.GenerateSeatLayout(t.RowCount, t.ColumnCount, t.Walkway),
		TakenSeats: taken,
		BookingFee: domain.BookingFee(t.Price),
	}, nil
}

// Allocate reserves a seat. The insert itself is the availability check:
// a second active booking for the same seat fails on the unique key and is
// reported as a conflict.
func (s SeatBookingService) Allocate(ctx context.Context, tripID int64, in models.SeatBookingInput) (models.SeatBooking, error) {
	in.StudentName = strings.TrimSpace(in.StudentName)
	in.StudentPhone = strings.TrimSpace(in.StudentPhone)
	in.StudentEmail = strings.TrimSpace(in.StudentEmail)
	if in.StudentName == "" || in.StudentPhone == "" {
		return models.SeatBooking{}, domain.ValidationError{Msg: "student_name and student_phone are required"}
	}

	t, err := s.trip(ctx, tripID)
	if err != nil {
		return models.SeatBooking{}, err
	}
	if t.Status != domain.TripActive {
		return models.SeatBooking{}, domain.ValidationError{Field: "trip_id", Msg: "trip is not active"}
	}
	if capacity := domain.SeatCapacity(t.RowCount, t.ColumnCount); in.SeatNumber < 1 || in.SeatNumber > capacity {
		return models.SeatBooking{}, domain.ValidationError{Field: "seat_number", Msg: fmt.Sprintf("must be between 1 and %d", capacity)}
	}

	claim := repositories.SeatClaim{
		TripID:       tripID,
		SeatNumber:   in.SeatNumber,
		StudentName:  in.StudentName,
		StudentPhone: in.StudentPhone,
		StudentEmail: in.StudentEmail,
	}
	var (
		id       int64
		affected int64
	)
	for attempt := 1; ; attempt++ {
		claim.TicketCode = s.newCode()
		id, affected, err = s.Bookings.Allocate(ctx, claim)
		if err == nil {
			break
		}
		if intdb.IsDuplicateKey(err, repositories.KeyTripActiveSeat) {
			utils.LogEvent(s.RequestID, "seat_booking", "allocate_conflict", fmt.Sprintf("trip_id=%d seat=%d", tripID, in.SeatNumber))
			return models.SeatBooking{}, domain.ConflictError{Resource: "seat", Msg: fmt.Sprintf("seat %d is already booked", in.SeatNumber), Err: err}
		}
		if intdb.IsDuplicateKey(err, repositories.KeyTicketCode) && attempt < ticketCodeAttempts {
			continue
		}
		return models.SeatBooking{}, domain.InternalError{Msg: "allocate seat", Err: err}
	}
	if affected == 0 {
		// The trip was deactivated or removed between the read and the insert.
		return models.SeatBooking{}, domain.ValidationError{Field: "trip_id", Msg: "trip is not active"}
	}
	utils.LogEvent(s.RequestID, "seat_booking", "allocate", fmt.Sprintf("booking_id=%d trip_id=%d seat=%d", id, tripID, in.SeatNumber))

	booking, err := s.Bookings.GetByID(ctx, id)
	if err != nil {
		return models.SeatBooking{}, domain.InternalError{Msg: "load seat booking", Err: err}
	}
	if booking.StudentEmail != "" {
		s.queueTicketEmail(ctx, booking)
	}
	return booking, nil
}

func (s SeatBookingService) queueTicketEmail(ctx context.Context, b models.SeatBooking) {
	msg, err := notify.SeatTicketEmail(b.StudentEmail, notify.SeatTicket{
		StudentName:   b.StudentName,
		Origin:        b.Origin,
		Destination:   b.Destination,
		DepartureDate: utils.FormatDay(b.DepartureDate),
		DepartureTime: b.DepartureTime,
		SeatNumber:    b.SeatNumber,
		BookingFee:    utils.FormatMoney(b.BookingFee),
		TicketCode:    b.TicketCode,
	})
	if err != nil {
		utils.LogError(s.RequestID, "seat_booking", "render_ticket_email", err)
		return
	}
	s.notifier().Notify(notify.WithRequestID(ctx, s.RequestID), msg)
}

// mutateOwned locks the booking with its trip, checks that agentID owns the
// trip and runs apply inside the same transaction. Nothing is written for
// a foreign agent.
func (s SeatBookingService) mutateOwned(ctx context.Context, agentID, id int64, apply func(*sql.Tx, repositories.SeatBookingLock) error) error {
	return intdb.WithTx(ctx, s.db(), func(tx *sql.Tx) error {
		lock, err := s.Bookings.LockTx(ctx, tx, id)
		if errors.Is(err, sql.ErrNoRows) {
			return domain.NotFoundError{Resource: "seat booking", Err: err}
		}
		if err != nil {
			return domain.InternalError{Msg: "lock seat booking", Err: err}
		}
		if !lock.TripAgentID.Valid || lock.TripAgentID.Int64 != agentID {
			return domain.ForbiddenError{Resource: "seat booking", Msg: "booking belongs to another agent's trip"}
		}
		return apply(tx, lock)
	})
}

// ConfirmPayment marks the booking paid. Confirming a paid booking succeeds
// without writing; cancelled bookings cannot be confirmed.
func (s SeatBookingService) ConfirmPayment(ctx context.Context, agentID, id int64) (models.SeatBooking, error) {
	err := s.mutateOwned(ctx, agentID, id, func(tx *sql.Tx, lock repositories.SeatBookingLock) error {
		if lock.Status == domain.SeatStatusCancelled {
			return domain.ConflictError{Resource: "seat booking", Msg: "booking is cancelled"}
		}
		if lock.PaymentStatus == domain.PaymentPaid {
			return nil
		}
		if err := s.Bookings.MarkPaidTx(ctx, tx, id); err != nil {
			return domain.InternalError{Msg: "confirm payment", Err: err}
		}
		return nil
	})
	if err != nil {
		if domain.IsForbidden(err) {
			utils.LogEvent(s.RequestID, "seat_booking", "confirm_forbidden", fmt.Sprintf("booking_id=%d agent_id=%d", id, agentID))
		}
		return models.SeatBooking{}, wrapTxError(err, "confirm payment")
	}
	utils.LogEvent(s.RequestID, "seat_booking", "confirm_payment", fmt.Sprintf("booking_id=%d agent_id=%d", id, agentID))
	return s.get(ctx, id)
}

// Cancel releases the seat. Paid bookings are refunded outside the system
// and may still be cancelled.
func (s SeatBookingService) Cancel(ctx context.Context, agentID, id int64) (models.SeatBooking, error) {
	err := s.mutateOwned(ctx, agentID, id, func(tx *sql.Tx, lock repositories.SeatBookingLock) error {
		if !domain.IsActiveSeatStatus(lock.Status) {
			return nil
		}
		if err := s.Bookings.MarkCancelledTx(ctx, tx, id); err != nil {
			return domain.InternalError{Msg: "cancel seat booking", Err: err}
		}
		return nil
	})
	if err != nil {
		return models.SeatBooking{}, wrapTxError(err, "cancel seat booking")
	}
	utils.LogEvent(s.RequestID, "seat_booking", "cancel", fmt.Sprintf("booking_id=%d agent_id=%d", id, agentID))
	return s.get(ctx, id)
}

func (s SeatBookingService) get(ctx context.Context, id int64) (models.SeatBooking, error) {
	b, err := s.Bookings.GetByID(ctx, id)
	if errors.Is(err, sql.ErrNoRows) {
		return b, domain.NotFoundError{Resource: "seat booking", Err: err}
	}
	if err != nil {
		return b, domain.InternalError{Msg: "load seat booking", Err: err}
	}
	return b, nil
}

func (s SeatBookingService) ListForAgent(ctx context.Context, agentID int64) ([]models.SeatBooking, error) {
	out, err := s.Bookings.ListByAgent(ctx, agentID)
	if err != nil {
		return nil, domain.InternalError{Msg: "list seat bookings", Err: err}
	}
	return out, nil
}

func (s SeatBookingService) ByTicketCode(ctx context.Context, code string) (models.SeatBooking, error) {
	code = strings.ToUpper(strings.TrimSpace(code))
	if code == "" {
		return models.SeatBooking{}, domain.ValidationError{Field: "code", Msg: "is required"}
	}
	b, err := s.Bookings.GetByTicketCode(ctx, code)
	if errors.Is(err, sql.ErrNoRows) {
		return b, domain.NotFoundError{Resource: "ticket", Err: err}
	}
	if err != nil {
		return b, domain.InternalError{Msg: "load ticket", Err: err}
	}
	return b, nil
}
