package validator

import (
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"strings"
	"time"

	"rentabike/pkg/clock"
	"rentabike/pkg/logger"
	"rentabike/pkg/model"

	"github.com/go-playground/validator/v10"
)

// Rejection reasons, stable for clients.
const (
	ReasonMissingFields  = "missing required fields"
	ReasonInvalidEmail   = "invalid email"
	ReasonInvalidTime    = "invalid time format"
	ReasonInvalidDate    = "invalid date format"
	ReasonStartInPast    = "start in past"
	ReasonEndBeforeStart = "end before start"
	ReasonInvalidStatus  = "invalid status"
	ReasonInvalidField   = "invalid field"
)

var (
	emailRegex = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
	hhmmRegex  = regexp.MustCompile(`^([01][0-9]|2[0-3]):[0-5][0-9]$`)
)

type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func (v ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", v.Field, v.Message)
}

type ValidationErrors []ValidationError

func (v ValidationErrors) Error() string {
	if len(v) == 0 {
		return ""
	}
	var messages []string
	for _, err := range v {
		messages = append(messages, err.Error())
	}
	return fmt.Sprintf("validation failed: %d error(s): [%s]", len(v), strings.Join(messages, "; "))
}

// RequestError is a rejected request: one reason plus whatever detail helps
// the caller fix it.
type RequestError struct {
	Reason        string
	MissingFields []string
	Fields        ValidationErrors
}

func (e *RequestError) Error() string {
	switch {
	case len(e.MissingFields) > 0:
		return fmt.Sprintf("%s: %s", e.Reason, strings.Join(e.MissingFields, ", "))
	case len(e.Fields) > 0:
		return fmt.Sprintf("%s: %s", e.Reason, e.Fields.Error())
	default:
		return e.Reason
	}
}

type BookingValidator struct {
	validate *validator.Validate
	logger   *logger.Logger
	clock    clock.Clock
	location *time.Location
}

func NewBookingValidator(log *logger.Logger, clk clock.Clock, location *time.Location) *BookingValidator {
	v := validator.New()

	v.RegisterTagNameFunc(jsonFieldName)

	if err := v.RegisterValidation("basic_email", validateBasicEmail); err != nil {
		log.Fatal("Failed to register 'basic_email' validator",
			"error", err,
		)
	}
	if err := v.RegisterValidation("hhmm", validateHHMM); err != nil {
		log.Fatal("Failed to register 'hhmm' validator",
			"error", err,
		)
	}

	if location == nil {
		location = time.UTC
	}

	log.Info("Booking validator initialized successfully", "time_zone", location.String())

	return &BookingValidator{
		validate: v,
		logger:   log,
		clock:    clk,
		location: location,
	}
}

func jsonFieldName(fld reflect.StructField) string {
	name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
	if name == "-" || name == "" {
		return fld.Name
	}
	return name
}

func validateBasicEmail(fl validator.FieldLevel) bool {
	return emailRegex.MatchString(fl.Field().String())
}

func validateHHMM(fl validator.FieldLevel) bool {
	return hhmmRegex.MatchString(fl.Field().String())
}

// Today is the current calendar date in the shop's time zone.
func (v *BookingValidator) Today() string {
	return v.clock.Now().In(v.location).Format(model.DateLayout)
}

// Validate checks a create request. Checks run in a fixed order and the
// first failing one is reported.
func (v *BookingValidator) Validate(req *model.BookingRequest) error {
	if err := v.validate.Struct(req); err != nil {
		var validationErrs validator.ValidationErrors
		if !errors.As(err, &validationErrs) {
			return err
		}
		if missing := missingFields(validationErrs); len(missing) > 0 {
			return &RequestError{Reason: ReasonMissingFields, MissingFields: missing}
		}
		return &RequestError{Reason: ReasonInvalidField, Fields: v.translateValidationErrors(validationErrs)}
	}

	if err := v.validate.Var(req.CustomerEmail, "basic_email"); err != nil {
		return &RequestError{Reason: ReasonInvalidEmail}
	}

	if err := v.ValidateClock(req.PickupTime, req.DropoffTime); err != nil {
		return err
	}

	if err := v.validate.Var(req.StartDate, "datetime="+model.DateLayout); err != nil {
		return &RequestError{Reason: ReasonInvalidDate, Fields: ValidationErrors{{Field: "start_date", Message: "start_date must be YYYY-MM-DD"}}}
	}
	if err := v.validate.Var(req.EndDate, "datetime="+model.DateLayout); err != nil {
		return &RequestError{Reason: ReasonInvalidDate, Fields: ValidationErrors{{Field: "end_date", Message: "end_date must be YYYY-MM-DD"}}}
	}

	// YYYY-MM-DD compares correctly as a string.
	if req.StartDate < v.Today() {
		return &RequestError{Reason: ReasonStartInPast}
	}

	return checkOrder(req.StartDate, req.EndDate, req.PickupTime, req.DropoffTime)
}

// ValidateClock checks optional HH:MM values.
func (v *BookingValidator) ValidateClock(pickupTime, dropoffTime string) error {
	var fields ValidationErrors
	if err := v.validate.Var(pickupTime, "omitempty,hhmm"); err != nil {
		fields = append(fields, ValidationError{Field: "pickup_time", Message: "pickup_time must be HH:MM (24-hour)"})
	}
	if err := v.validate.Var(dropoffTime, "omitempty,hhmm"); err != nil {
		fields = append(fields, ValidationError{Field: "dropoff_time", Message: "dropoff_time must be HH:MM (24-hour)"})
	}
	if len(fields) > 0 {
		return &RequestError{Reason: ReasonInvalidTime, Fields: fields}
	}
	return nil
}

// ValidateTimes checks a reschedule of pickup and dropoff against the
// booking's existing dates.
func (v *BookingValidator) ValidateTimes(update *model.TimesUpdate, booking *model.Booking) error {
	if err := v.validate.Struct(update); err != nil {
		var validationErrs validator.ValidationErrors
		if errors.As(err, &validationErrs) {
			return &RequestError{Reason: ReasonMissingFields, MissingFields: missingFields(validationErrs)}
		}
		return err
	}
	if err := v.ValidateClock(update.PickupTime, update.DropoffTime); err != nil {
		return err
	}
	return checkOrder(booking.StartDate, booking.EndDate, update.PickupTime, update.DropoffTime)
}

// ValidateStatus parses a target status from the four-value enumeration.
func (v *BookingValidator) ValidateStatus(update *model.StatusUpdate) (model.BookingStatus, error) {
	if err := v.validate.Struct(update); err != nil {
		return "", &RequestError{Reason: ReasonMissingFields, MissingFields: []string{"status"}}
	}
	status, ok := model.ParseBookingStatus(update.Status)
	if !ok {
		return "", &RequestError{
			Reason: ReasonInvalidStatus,
			Fields: ValidationErrors{{
				Field:   "status",
				Message: fmt.Sprintf("status must be one of: %s", strings.Join(model.StatusValues(), ", ")),
			}},
		}
	}
	return status, nil
}

// Same-day bookings are allowed; on a single day a dropoff earlier than the
// pickup is still an end before the start.
func checkOrder(startDate, endDate, pickupTime, dropoffTime string) error {
	if endDate < startDate {
		return &RequestError{Reason: ReasonEndBeforeStart}
	}
	if endDate == startDate && pickupTime != "" && dropoffTime != "" && dropoffTime < pickupTime {
		return &RequestError{Reason: ReasonEndBeforeStart}
	}
	return nil
}

func missingFields(errs validator.ValidationErrors) []string {
	var missing []string
	for _, err := range errs {
		if err.Tag() == "required" {
			missing = append(missing, err.Field())
		}
	}
	return missing
}

func (v *BookingValidator) translateValidationErrors(errs validator.ValidationErrors) ValidationErrors {
	var validationErrors ValidationErrors

	for _, err := range errs {
		message := err.Error()

		switch err.Tag() {
		case "required":
			message = fmt.Sprintf("%s is required", err.Field())
		case "min":
			message = fmt.Sprintf("%s must be at least %s", err.Field(), err.Param())
		case "max":
			message = fmt.Sprintf("%s must be at most %s characters", err.Field(), err.Param())
		case "oneof":
			message = fmt.Sprintf("%s must be one of: %s", err.Field(), err.Param())
		}

		validationErrors = append(validationErrors, ValidationError{
			Field:   err.Field(),
			Message: message,
		})
	}

	return validationErrors
}
