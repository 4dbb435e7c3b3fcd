package domain

import (
	"reflect"
	"regexp"
	"sort"
	"strings"
	"time"

	"github.com/dmitrymomot/foundation/core/validator"
)

// ErrValidation is matched by every *ValidationError via errors.Is.
var ErrValidation = NewError("HL-VALD-4000", "validation failed")

// Form field constraints.
const (
	MinPasswordLength = 6
	MinNameLength     = 2
	DateLayout        = "2006-01-02"
)

var phonePattern = regexp.MustCompile(`^\+?[\d\s\-()]+$`)

// Rule keys registered with the validator.
const (
	ruleRequired = "validation.required"
	ruleNotBlank = "validation.notblank"
	ruleNotPast  = "validation.notpast"
)

func init() {
	validator.RegisterValidator("notblank", notBlankRule)
	validator.RegisterValidator("optphone", optionalPhoneRule)
	validator.RegisterValidator("timeslot", timeSlotRule)
	validator.RegisterValidator("notpast", notPastRule)
}

// notBlankRule rejects a set but blank string. Unset pointers pass.
func notBlankRule(field string, value reflect.Value, _ []string) validator.Rule {
	return validator.Rule{
		Check: func() bool {
			return value.Kind() != reflect.String || strings.TrimSpace(value.String()) != ""
		},
		Error: validator.ValidationError{Field: field, Message: "must not be blank", TranslationKey: ruleNotBlank},
	}
}

func optionalPhoneRule(field string, value reflect.Value, _ []string) validator.Rule {
	return validator.Rule{
		Check: func() bool {
			if value.Kind() != reflect.String || value.String() == "" {
				return true
			}
			return phonePattern.MatchString(value.String())
		},
		Error: validator.ValidationError{Field: field, Message: "must be a phone number", TranslationKey: "validation.phone"},
	}
}

func timeSlotRule(field string, value reflect.Value, _ []string) validator.Rule {
	return validator.Rule{
		Check: func() bool {
			return value.Kind() != reflect.String || value.String() == "" || IsTimeSlot(value.String())
		},
		Error: validator.ValidationError{Field: field, Message: "must be a bookable time slot", TranslationKey: "validation.timeslot"},
	}
}

// calendarDay pairs a YYYY-MM-DD value with the day it is checked against.
type calendarDay struct {
	Value string
	Today time.Time
}

// notPastRule rejects a calendarDay before its Today. Unparseable values
// pass; date_format reports those.
func notPastRule(field string, value reflect.Value, _ []string) validator.Rule {
	return validator.Rule{
		Check: func() bool {
			day, ok := value.Interface().(calendarDay)
			if !ok {
				return true
			}
			date, err := time.ParseInLocation(DateLayout, day.Value, day.Today.Location())
			return err != nil || !date.Before(day.Today)
		},
		Error: validator.ValidationError{Field: field, Message: "must not be in the past", TranslationKey: ruleNotPast},
	}
}

// ValidationError collects per-field messages for a rejected form.
// It is raised before any request is sent.
type ValidationError struct {
	Fields map[string]string
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+": "+e.Fields[k])
	}
	return ErrValidation.WithDetails(strings.Join(parts, "; ")).Error()
}

// Is makes errors.Is(err, ErrValidation) succeed.
func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

// fieldMessages maps a form field to its wire key and user-facing texts.
// texts is keyed by validator translation key; "" is the fallback.
type fieldMessages struct {
	key   string
	texts map[string]string
}

func (m fieldMessages) text(ruleKey string) string {
	if t, ok := m.texts[ruleKey]; ok {
		return t
	}
	return m.texts[""]
}

var (
	emailMessages = fieldMessages{key: "email", texts: map[string]string{
		ruleRequired: "Email is required",
		ruleNotBlank: "Email is required",
		"":           "Email is invalid",
	}}
	passwordMessages = fieldMessages{key: "password", texts: map[string]string{
		ruleRequired: "Password is required",
		"":           "Password must be at least 6 characters",
	}}
	nameMessages = fieldMessages{key: "name", texts: map[string]string{
		ruleRequired: "Name is required",
		ruleNotBlank: "Name is required",
		"":           "Name must be at least 2 characters",
	}}
	phoneMessages = fieldMessages{key: "phone", texts: map[string]string{
		"": "Phone number is invalid",
	}}
)

type fieldErrors map[string]string

func (f fieldErrors) add(field, msg string) {
	if _, ok := f[field]; !ok {
		f[field] = msg
	}
}

func (f fieldErrors) err() error {
	if len(f) == 0 {
		return nil
	}
	return &ValidationError{Fields: f}
}

// check runs the tag rules on form and keeps the first message per field.
func check(f fieldErrors, form any, fields map[string]fieldMessages) {
	err := validator.ValidateStruct(form)
	if err == nil {
		return
	}
	errs := validator.ExtractValidationErrors(err)
	if errs == nil {
		f.add("form", err.Error())
		return
	}
	for _, fe := range errs {
		m, ok := fields[fe.Field]
		if !ok {
			f.add(fe.Field, fe.Message)
			continue
		}
		f.add(m.key, m.text(fe.TranslationKey))
	}
}

type credentialsForm struct {
	Email    string `validate:"required;email"`
	Password string `validate:"required;min:6"`
}

// ValidateCredentials checks a login form.
func ValidateCredentials(c Credentials) error {
	f := fieldErrors{}
	check(f, &credentialsForm{Email: c.Email, Password: c.Password}, map[string]fieldMessages{
		"Email":    emailMessages,
		"Password": passwordMessages,
	})
	return f.err()
}

type registrationForm struct {
	Name     string `validate:"required;min:2"`
	Email    string `validate:"required;email"`
	Password string `validate:"required;min:6"`
	Confirm  string `validate:"required"`
	Phone    string `validate:"optphone"`
}

// ValidateRegistration checks a sign-up form. confirm is the repeated
// password, which is never sent to the server.
func ValidateRegistration(r Registration, confirm string) error {
	f := fieldErrors{}
	form := &registrationForm{
		Name:     strings.TrimSpace(r.Name),
		Email:    r.Email,
		Password: r.Password,
		Confirm:  confirm,
		Phone:    r.Phone,
	}
	check(f, form, map[string]fieldMessages{
		"Name":     nameMessages,
		"Email":    emailMessages,
		"Password": passwordMessages,
		"Confirm": {key: "confirmPassword", texts: map[string]string{
			"": "Please confirm your password",
		}},
		"Phone": phoneMessages,
	})
	if confirm != "" && confirm != r.Password {
		f.add("confirmPassword", "Passwords do not match")
	}
	return f.err()
}

type profileForm struct {
	Name  *string `validate:"notblank;min:2"`
	Email *string `validate:"notblank;email"`
	Phone *string `validate:"optphone"`
}

// ValidateProfileUpdate checks the fields present in an update.
func ValidateProfileUpdate(p ProfileUpdate) error {
	f := fieldErrors{}
	if p.IsEmpty() {
		f.add("profile", "Nothing to update")
	}
	form := &profileForm{Name: p.Name, Email: p.Email, Phone: p.Phone}
	if p.Name != nil {
		name := strings.TrimSpace(*p.Name)
		form.Name = &name
	}
	check(f, form, map[string]fieldMessages{
		"Name":  nameMessages,
		"Email": emailMessages,
		"Phone": phoneMessages,
	})
	return f.err()
}

type providerForm struct {
	ServiceType string  `validate:"required"`
	Phone       string  `validate:"optphone"`
	Rating      float64 `validate:"between:0,5"`
}

// ValidateProviderRequest checks a create-provider form.
func ValidateProviderRequest(p ProviderRequest) error {
	f := fieldErrors{}
	check(f, &providerForm{ServiceType: p.ServiceType, Phone: p.Phone, Rating: p.Rating}, map[string]fieldMessages{
		"ServiceType": {key: "serviceType", texts: map[string]string{"": "Service type is required"}},
		"Phone":       phoneMessages,
		"Rating":      {key: "rating", texts: map[string]string{"": "Rating must be between 0 and 5"}},
	})
	return f.err()
}

type bookingForm struct {
	ProviderID  int64       `validate:"positive"`
	BookingDate string      `validate:"required;date_format:2006-01-02"`
	Day         calendarDay `validate:"notpast"`
	BookingTime string      `validate:"required;timeslot"`
}

// ValidateBookingRequest checks a create-booking form against the current
// time. Dates compare by calendar day in now's location.
func ValidateBookingRequest(b BookingRequest, now time.Time) error {
	f := fieldErrors{}
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	dateMessages := fieldMessages{key: "bookingDate", texts: map[string]string{
		ruleRequired: "Please select a date",
		ruleNotPast:  "Date cannot be in the past",
		"":           "Date must be in YYYY-MM-DD format",
	}}
	form := &bookingForm{
		ProviderID:  b.ProviderID,
		BookingDate: b.BookingDate,
		Day:         calendarDay{Value: b.BookingDate, Today: today},
		BookingTime: b.BookingTime,
	}
	check(f, form, map[string]fieldMessages{
		"ProviderID":  {key: "providerId", texts: map[string]string{"": "Please select a service provider"}},
		"BookingDate": dateMessages,
		"Day":         dateMessages,
		"BookingTime": {key: "bookingTime", texts: map[string]string{
			ruleRequired: "Please select a time",
			"":           "Time must be a half-hour slot between 08:00 and 20:30",
		}},
	})
	return f.err()
}
