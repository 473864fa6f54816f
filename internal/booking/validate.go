package booking

import (
	"math"
	"regexp"
	"strconv"
	"strings"

	validator "github.com/go-playground/validator/v10"
)

// OrderRequest is the raw, untrusted booking form input.
type OrderRequest struct {
	FirstName  string
	LastName   string
	Phone      string
	Amount     string
	TicketType string
}

// Order is a sanitized, validated booking ready for submission.
type Order struct {
	FirstName  string
	LastName   string
	Phone      string
	Amount     float64
	TicketType string
}

// FieldError describes a single rejected input field.
type FieldError struct {
	Field  string `json:"field"`
	Reason string `json:"reason"`
}

const defaultTicketType = "Museum Ticket"

// Georgian mobile numbers, with or without the country prefix.
var phonePattern = regexp.MustCompile(`^(\+995|995)?[0-9]{9}$`)

var (
	unsafeChars   = strings.NewReplacer("<", "", ">", "", `"`, "", "'", "", "&", "")
	phoneStripper = regexp.MustCompile(`[^0-9+]`)
)

type checkedOrder struct {
	FirstName  string  `validate:"required,min=2,max=100"`
	LastName   string  `validate:"required,min=2,max=100"`
	Phone      string  `validate:"required,gephone"`
	Amount     float64 `validate:"gt=0,lte=1000"`
	TicketType string  `validate:"max=200"`
}

// Validator sanitizes and validates booking form input.
type Validator struct {
	v *validator.Validate
}

// NewValidator constructs a Validator with the Georgian phone rule registered.
func NewValidator() *Validator {
	v := validator.New()
	_ = v.RegisterValidation("gephone", func(fl validator.FieldLevel) bool {
		return phonePattern.MatchString(fl.Field().String())
	})
	return &Validator{v: v}
}

// Validate returns a sanitized order, or the list of fields that failed.
// It never panics past this boundary.
func (val *Validator) Validate(req OrderRequest) (Order, []FieldError) {
	var errs []FieldError

	checked := checkedOrder{
		FirstName:  sanitizeText(req.FirstName),
		LastName:   sanitizeText(req.LastName),
		Phone:      phoneStripper.ReplaceAllString(req.Phone, ""),
		TicketType: sanitizeText(req.TicketType),
	}
	if checked.TicketType == "" {
		checked.TicketType = defaultTicketType
	}

	amount, err := strconv.ParseFloat(strings.TrimSpace(req.Amount), 64)
	if err != nil {
		errs = append(errs, FieldError{Field: "amount", Reason: "must be a decimal number"})
	} else {
		checked.Amount = math.Round(amount*100) / 100
	}

	if verr := val.v.Struct(checked); verr != nil {
		if fieldErrs, ok := verr.(validator.ValidationErrors); ok {
			for _, fe := range fieldErrs {
				errs = append(errs, FieldError{Field: jsonField(fe.Field()), Reason: reasonFor(fe)})
			}
		} else {
			errs = append(errs, FieldError{Field: "input", Reason: "invalid input"})
		}
	}
	if len(errs) > 0 {
		return Order{}, errs
	}
	return Order{
		FirstName:  checked.FirstName,
		LastName:   checked.LastName,
		Phone:      checked.Phone,
		Amount:     checked.Amount,
		TicketType: checked.TicketType,
	}, nil
}

func sanitizeText(s string) string {
	return strings.TrimSpace(unsafeChars.Replace(s))
}

func jsonField(name string) string {
	switch name {
	case "FirstName":
		return "firstName"
	case "LastName":
		return "lastName"
	case "TicketType":
		return "ticketType"
	default:
		return strings.ToLower(name)
	}
}

func reasonFor(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "min":
		return "is too short"
	case "max":
		return "is too long"
	case "gephone":
		return "must be a Georgian mobile number"
	case "gt":
		return "must be greater than 0"
	case "lte":
		return "must not exceed 1000"
	default:
		return "is invalid"
	}
}
