package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	bikeserrors "rentabike/internal/bikes/errors"
	"rentabike/internal/bookings/availability"
	bookingserrors "rentabike/internal/bookings/errors"
	"rentabike/internal/bookings/lifecycle"
	"rentabike/internal/bookings/repository"
	"rentabike/internal/bookings/validator"
	"rentabike/pkg/clock"
	"rentabike/pkg/config"
	apperrors "rentabike/pkg/errors"
	"rentabike/pkg/model"
	"rentabike/pkg/sanitizer"
)

const defaultNotifyTimeout = 10 * time.Second

type BookingService interface {
	Create(ctx context.Context, req *model.BookingRequest) (*model.BookingDetails, error)
	GetByID(ctx context.Context, id string) (*model.BookingDetails, error)
	GetAll(ctx context.Context, filter model.BookingFilter, limit int, offset int64) ([]*model.BookingDetails, int64, error)
	UpdateStatus(ctx context.Context, id string, update *model.StatusUpdate) (*model.BookingDetails, error)
	UpdateTimes(ctx context.Context, id string, update *model.TimesUpdate) (*model.BookingDetails, error)
	Cancel(ctx context.Context, id string) (*model.BookingDetails, error)
	BookedDates(ctx context.Context, bikeID string) (*model.BookedDates, error)
	IsPendingExpired(b *model.Booking) bool
	// Wait blocks until in-flight notifications have finished.
	Wait()
}

// BikeLookup is the read side of the bike catalog the booking flow needs.
type BikeLookup interface {
	FindByID(ctx context.Context, id string) (*model.Bike, error)
}

// Notifier delivers lifecycle messages. Calls are best effort: a failure is
// logged and never affects the booking operation that triggered it.
type Notifier interface {
	Notify(ctx context.Context, booking *model.Booking, bike *model.Bike, kind model.NotificationKind, previous model.BookingStatus) error
}

type bookingService struct {
	repo      repository.BookingRepository
	lockRepo  repository.BookingLockRepository
	bikes     BikeLookup
	notifier  Notifier
	validator *validator.BookingValidator
	clock     clock.Clock
	policy    lifecycle.Policy
	cfg       *config.Config
	pending   sync.WaitGroup
}

func NewBookingService(
	repo repository.BookingRepository,
	lockRepo repository.BookingLockRepository,
	bikes BikeLookup,
	notifier Notifier,
	validator *validator.BookingValidator,
	clk clock.Clock,
	cfg *config.Config,
) BookingService {
	if clk == nil {
		clk = clock.System{}
	}
	return &bookingService{
		repo:      repo,
		lockRepo:  lockRepo,
		bikes:     bikes,
		notifier:  notifier,
		validator: validator,
		clock:     clk,
		policy:    lifecycle.NewPolicy(cfg.PendingHoldDuration),
		cfg:       cfg,
	}
}

func (s *bookingService) Create(ctx context.Context, req *model.BookingRequest) (*model.BookingDetails, error) {
	s.sanitize(req)
	if err := s.validator.Validate(req); err != nil {
		s.cfg.Log.Warn("Booking validation failed", "bike_id", req.BikeID, "error", err)
		return nil, toValidationError(err)
	}

	bike, err := s.lookupBike(ctx, req.BikeID)
	if err != nil {
		return nil, err
	}
	if !bike.Available {
		s.cfg.Log.Info("Booking rejected, bike unavailable", "bike_id", bike.ID)
		return nil, apperrors.BikeUnavailable(bike.ID)
	}

	quote, err := lifecycle.Price(req.StartDate, req.EndDate, req.PickupTime, req.DropoffTime, bike.PricePerDay)
	if err != nil {
		return nil, apperrors.Validation(validator.ReasonInvalidDate, map[string]any{"reason": validator.ReasonInvalidDate})
	}
	candidate, err := availability.NewInterval(req.StartDate, req.EndDate, req.PickupTime, req.DropoffTime)
	if err != nil {
		return nil, apperrors.Validation(validator.ReasonInvalidDate, map[string]any{"reason": validator.ReasonInvalidDate})
	}

	booking := &model.Booking{
		BikeID:          bike.ID,
		CustomerName:    req.CustomerName,
		CustomerEmail:   req.CustomerEmail,
		CustomerPhone:   req.CustomerPhone,
		StartDate:       req.StartDate,
		EndDate:         req.EndDate,
		PickupTime:      req.PickupTime,
		DropoffTime:     req.DropoffTime,
		DurationHours:   quote.DurationHours,
		TotalCost:       quote.TotalCost,
		Status:          model.StatusPending,
		SpecialRequests: req.SpecialRequests,
	}

	err = s.withBikeLock(ctx, bike.ID, func(txCtx context.Context) error {
		booking.ID = ""
		booking.CreatedAt = s.clock.Now().UTC()

		if err := s.verifyAvailability(txCtx, bike.ID, candidate, ""); err != nil {
			return err
		}
		if err := s.repo.Create(txCtx, booking); err != nil {
			if errors.Is(err, bookingserrors.ErrDuplicate) {
				return apperrors.Conflict("Booking already exists")
			}
			return apperrors.Infrastructure("Failed to create booking", err)
		}
		return nil
	})
	if err != nil {
		s.logFailure("Failed to create booking", err, "bike_id", bike.ID)
		return nil, asInfrastructure("Failed to create booking", err)
	}

	s.cfg.Log.Info("Booking created successfully",
		"id", booking.ID,
		"bike_id", booking.BikeID,
		"start_date", booking.StartDate,
		"end_date", booking.EndDate,
		"total_cost", booking.TotalCost,
	)

	s.notify(booking, bike, model.KindConfirmation, "")
	return s.policy.Describe(booking, bike.Summary(), s.clock.Now()), nil
}

func (s *bookingService) GetByID(ctx context.Context, id string) (*model.BookingDetails, error) {
	booking, err := s.findBooking(ctx, id)
	if err != nil {
		return nil, err
	}
	bike := s.bikeForDisplay(ctx, booking.BikeID)
	return s.policy.Describe(booking, bike.Summary(), s.clock.Now()), nil
}

func (s *bookingService) GetAll(ctx context.Context, filter model.BookingFilter, limit int, offset int64) ([]*model.BookingDetails, int64, error) {
	if filter.Status != "" && !filter.Status.IsValid() {
		return nil, 0, apperrors.InvalidInput(fmt.Sprintf("invalid status filter: %s", filter.Status))
	}

	var count int64
	var bookings []*model.Booking
	var errCount, errFind error
	var wg sync.WaitGroup
	wg.Add(2)

	go func() {
		defer wg.Done()
		count, errCount = s.repo.Count(ctx, filter)
		if errCount != nil {
			s.cfg.Log.Error("Failed to count bookings", "error", errCount)
			errCount = apperrors.Infrastructure("Failed to count bookings", errCount)
		}
	}()

	go func() {
		defer wg.Done()
		bookings, errFind = s.repo.FindAll(ctx, filter, limit, offset)
		if errFind != nil {
			s.cfg.Log.Error("Failed to list bookings", "error", errFind)
			errFind = apperrors.Infrastructure("Failed to retrieve bookings", errFind)
		}
	}()

	wg.Wait()
	if errCount != nil {
		return nil, 0, errCount
	}
	if errFind != nil {
		return nil, 0, errFind
	}

	now := s.clock.Now()
	bikes := map[string]*model.Bike{}
	result := make([]*model.BookingDetails, 0, len(bookings))
	for _, b := range bookings {
		bike, seen := bikes[b.BikeID]
		if !seen {
			bike = s.bikeForDisplay(ctx, b.BikeID)
			bikes[b.BikeID] = bike
		}
		result = append(result, s.policy.Describe(b, bike.Summary(), now))
	}

	return result, count, nil
}

func (s *bookingService) UpdateStatus(ctx context.Context, id string, update *model.StatusUpdate) (*model.BookingDetails, error) {
	status, err := s.validator.ValidateStatus(update)
	if err != nil {
		s.cfg.Log.Warn("Booking status validation failed", "id", id, "error", err)
		return nil, toValidationError(err)
	}

	existing, err := s.findBooking(ctx, id)
	if err != nil {
		return nil, err
	}

	if s.cfg.EnforceStatusTransitions && !existing.Status.CanTransitionTo(status) {
		return nil, apperrors.Validation("invalid status transition", map[string]any{
			"reason": "invalid status transition",
			"from":   existing.Status,
			"to":     status,
		})
	}

	var updated *model.Booking
	if status.IsActive() && !existing.Status.IsActive() {
		updated, err = s.reactivate(ctx, existing, status)
	} else {
		updated, err = s.repo.UpdateStatus(ctx, id, status)
		if err != nil {
			err = s.mapBookingError(id, "Failed to update booking status", err)
		}
	}
	if err != nil {
		s.logFailure("Failed to update booking status", err, "id", id, "status", status)
		return nil, err
	}

	bike := s.bikeForDisplay(ctx, updated.BikeID)

	s.cfg.Log.Info("Booking status updated",
		"id", id,
		"previous_status", existing.Status,
		"status", updated.Status,
	)

	if existing.Status != updated.Status {
		s.notify(updated, bike, model.KindStatusUpdate, existing.Status)
	}
	return s.policy.Describe(updated, bike.Summary(), s.clock.Now()), nil
}

// reactivate moves an inactive booking back into pending or confirmed. It
// holds the bike again, so the overlap check runs first under the bike lock.
func (s *bookingService) reactivate(ctx context.Context, existing *model.Booking, status model.BookingStatus) (*model.Booking, error) {
	candidate, err := availability.ForBooking(existing)
	if err != nil {
		return nil, apperrors.Internal("Stored booking has invalid dates", err)
	}

	var updated *model.Booking
	err = s.withBikeLock(ctx, existing.BikeID, func(txCtx context.Context) error {
		if err := s.verifyAvailability(txCtx, existing.BikeID, candidate, existing.ID); err != nil {
			return err
		}
		var err error
		updated, err = s.repo.UpdateStatus(txCtx, existing.ID, status)
		if err != nil {
			return s.mapBookingError(existing.ID, "Failed to update booking status", err)
		}
		return nil
	})
	if err != nil {
		return nil, asInfrastructure("Failed to update booking status", err)
	}
	return updated, nil
}

func (s *bookingService) UpdateTimes(ctx context.Context, id string, update *model.TimesUpdate) (*model.BookingDetails, error) {
	update.PickupTime = sanitizer.SanitizeClock(update.PickupTime)
	update.DropoffTime = sanitizer.SanitizeClock(update.DropoffTime)

	existing, err := s.findBooking(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.validator.ValidateTimes(update, existing); err != nil {
		s.cfg.Log.Warn("Booking times validation failed", "id", id, "error", err)
		return nil, toValidationError(err)
	}

	quote, err := lifecycle.Price(existing.StartDate, existing.EndDate, update.PickupTime, update.DropoffTime, 0)
	if err != nil {
		return nil, apperrors.Internal("Stored booking has invalid dates", err)
	}
	candidate, err := availability.NewInterval(existing.StartDate, existing.EndDate, update.PickupTime, update.DropoffTime)
	if err != nil {
		return nil, apperrors.Internal("Stored booking has invalid dates", err)
	}

	write := func(txCtx context.Context) (*model.Booking, error) {
		updated, err := s.repo.UpdateTimes(txCtx, id, update.PickupTime, update.DropoffTime, quote.DurationHours)
		if err != nil {
			return nil, s.mapBookingError(id, "Failed to update booking times", err)
		}
		return updated, nil
	}

	var updated *model.Booking
	if existing.Status.IsActive() {
		err = s.withBikeLock(ctx, existing.BikeID, func(txCtx context.Context) error {
			if err := s.verifyAvailability(txCtx, existing.BikeID, candidate, existing.ID); err != nil {
				return err
			}
			var err error
			updated, err = write(txCtx)
			return err
		})
		if err != nil {
			s.logFailure("Failed to update booking times", err, "id", id)
			return nil, asInfrastructure("Failed to update booking times", err)
		}
	} else {
		updated, err = write(ctx)
		if err != nil {
			s.logFailure("Failed to update booking times", err, "id", id)
			return nil, err
		}
	}

	s.cfg.Log.Info("Booking times updated",
		"id", id,
		"pickup_time", updated.PickupTime,
		"dropoff_time", updated.DropoffTime,
	)

	bike := s.bikeForDisplay(ctx, updated.BikeID)
	return s.policy.Describe(updated, bike.Summary(), s.clock.Now()), nil
}

// Cancel is a status write; bookings are never deleted.
func (s *bookingService) Cancel(ctx context.Context, id string) (*model.BookingDetails, error) {
	return s.UpdateStatus(ctx, id, &model.StatusUpdate{Status: string(model.StatusCancelled)})
}

func (s *bookingService) BookedDates(ctx context.Context, bikeID string) (*model.BookedDates, error) {
	if bikeID == "" {
		return nil, apperrors.InvalidInput("bike_id query parameter is required")
	}

	active, err := s.repo.FindActiveByBike(ctx, bikeID)
	if err != nil {
		s.cfg.Log.Error("Failed to load booked dates", "bike_id", bikeID, "error", err)
		return nil, apperrors.Infrastructure("Failed to load booked dates", err)
	}

	seen := map[string]struct{}{}
	for _, b := range s.blocking(active) {
		days, err := availability.ExpandDays(b.StartDate, b.EndDate)
		if err != nil {
			s.cfg.Log.Warn("Skipping booking with invalid dates", "id", b.ID, "error", err)
			continue
		}
		for _, d := range days {
			seen[d] = struct{}{}
		}
	}

	dates := make([]string, 0, len(seen))
	for d := range seen {
		dates = append(dates, d)
	}
	sort.Strings(dates)

	return &model.BookedDates{BikeID: bikeID, BookedDates: dates, Count: len(dates)}, nil
}

func (s *bookingService) IsPendingExpired(b *model.Booking) bool {
	return s.policy.IsPendingExpired(b, s.clock.Now())
}

func (s *bookingService) Wait() {
	s.pending.Wait()
}

// --- Helpers ---

func (s *bookingService) sanitize(req *model.BookingRequest) {
	req.BikeID = sanitizer.TrimAndNormalize(req.BikeID)
	req.CustomerName = sanitizer.SanitizeName(req.CustomerName)
	req.CustomerEmail = sanitizer.SanitizeEmail(req.CustomerEmail)
	req.CustomerPhone = sanitizer.NormalizePhone(req.CustomerPhone)
	req.StartDate = sanitizer.TrimAndNormalize(req.StartDate)
	req.EndDate = sanitizer.TrimAndNormalize(req.EndDate)
	req.PickupTime = sanitizer.SanitizeClock(req.PickupTime)
	req.DropoffTime = sanitizer.SanitizeClock(req.DropoffTime)
	req.SpecialRequests = sanitizer.SanitizeFreeText(req.SpecialRequests)
}

func (s *bookingService) lookupBike(ctx context.Context, bikeID string) (*model.Bike, error) {
	bike, err := s.bikes.FindByID(ctx, bikeID)
	if err != nil {
		if errors.Is(err, bikeserrors.ErrNotFound) || errors.Is(err, bikeserrors.ErrInvalidID) {
			return nil, apperrors.NotFoundWithID("Bike", bikeID)
		}
		s.cfg.Log.Error("Failed to look up bike", "bike_id", bikeID, "error", err)
		return nil, apperrors.Infrastructure("Failed to look up bike", err)
	}
	return bike, nil
}

// bikeForDisplay tolerates a deleted or unreachable bike; the booking is
// still shown, just without the bike summary.
func (s *bookingService) bikeForDisplay(ctx context.Context, bikeID string) *model.Bike {
	bike, err := s.bikes.FindByID(ctx, bikeID)
	if err != nil {
		s.cfg.Log.Debug("Bike unavailable for booking display", "bike_id", bikeID, "error", err)
		return nil
	}
	return bike
}

func (s *bookingService) findBooking(ctx context.Context, id string) (*model.Booking, error) {
	if id == "" {
		return nil, apperrors.InvalidInput("Booking ID cannot be empty")
	}
	booking, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, s.mapBookingError(id, "Failed to retrieve booking", err)
	}
	return booking, nil
}

// An ID that cannot be parsed cannot exist, so both cases are NotFound.
func (s *bookingService) mapBookingError(id, message string, err error) error {
	if errors.Is(err, bookingserrors.ErrNotFound) || errors.Is(err, bookingserrors.ErrInvalidID) {
		return apperrors.NotFoundWithID("Booking", id)
	}
	if apperrors.IsAppError(err) {
		return err
	}
	return apperrors.Infrastructure(message, err)
}

// blocking returns the bookings that still hold their bike. With
// ExpiredPendingBlocks off, pending holds past their deadline are dropped.
func (s *bookingService) blocking(active []*model.Booking) []*model.Booking {
	if s.cfg.ExpiredPendingBlocks {
		return active
	}
	now := s.clock.Now()
	kept := make([]*model.Booking, 0, len(active))
	for _, b := range active {
		if s.policy.IsPendingExpired(b, now) {
			continue
		}
		kept = append(kept, b)
	}
	return kept
}

func (s *bookingService) verifyAvailability(ctx context.Context, bikeID string, candidate availability.Interval, excludeID string) error {
	active, err := s.repo.FindActiveByBike(ctx, bikeID)
	if err != nil {
		return apperrors.Infrastructure("Failed to check existing bookings", err)
	}

	result := availability.Check(candidate, s.blocking(active), excludeID)
	if !result.HasConflict {
		return nil
	}

	s.cfg.Log.Info("Booking conflict detected",
		"bike_id", bikeID,
		"conflicting_booking_id", result.Conflict.ID,
	)
	return apperrors.Conflict("Bike is already booked for the selected dates").WithDetails(map[string]any{
		"bike_id":                bikeID,
		"conflicting_booking_id": result.Conflict.ID,
		"conflicting_start_date": result.Conflict.StartDate,
		"conflicting_end_date":   result.Conflict.EndDate,
	})
}

func (s *bookingService) notify(booking *model.Booking, bike *model.Bike, kind model.NotificationKind, previous model.BookingStatus) {
	if s.notifier == nil {
		return
	}

	snapshot := *booking
	timeout := s.cfg.NotifyTimeout
	if timeout <= 0 {
		timeout = defaultNotifyTimeout
	}

	s.pending.Add(1)
	go func() {
		defer s.pending.Done()
		defer func() {
			if r := recover(); r != nil {
				s.cfg.Log.Error("Notifier panicked", "booking_id", snapshot.ID, "kind", kind, "panic", r)
			}
		}()

		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()

		if err := s.notifier.Notify(ctx, &snapshot, bike, kind, previous); err != nil {
			s.cfg.Log.Warn("Failed to send booking notification",
				"booking_id", snapshot.ID,
				"kind", kind,
				"error", err,
			)
		}
	}()
}

func (s *bookingService) logFailure(msg string, err error, args ...any) {
	args = append(args, "error", err)
	switch {
	case apperrors.HasCode(err, apperrors.CodeConflict), apperrors.HasCode(err, apperrors.CodeNotFound):
		s.cfg.Log.Info(msg, args...)
	case apperrors.HasCode(err, apperrors.CodeValidation):
		s.cfg.Log.Warn(msg, args...)
	default:
		s.cfg.Log.Error(msg, args...)
	}
}

func toValidationError(err error) error {
	var reqErr *validator.RequestError
	if !errors.As(err, &reqErr) {
		return apperrors.Internal("Failed to validate booking", err)
	}

	details := map[string]any{"reason": reqErr.Reason}
	if len(reqErr.MissingFields) > 0 {
		details["missing_fields"] = reqErr.MissingFields
	}
	if len(reqErr.Fields) > 0 {
		details["fields"] = reqErr.Fields
	}
	return apperrors.Validation(reqErr.Reason, details)
}

// asInfrastructure keeps AppErrors from inside a transaction and treats any
// other failure of the transaction itself as retriable.
func asInfrastructure(message string, err error) error {
	if apperrors.IsAppError(err) {
		return apperrors.AsAppError(err)
	}
	return apperrors.Infrastructure(message, err)
}
