package services

import (
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"reflect"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
)

// ErrorResponse represents error response structure
type ErrorResponse struct {
	Error   string            `json:"error"`             // Error message
	Details map[string]string `json:"details,omitempty"` // Validation details
}

var (
	cardNumberPattern = regexp.MustCompile(`^\d{16}$`)
	cvv2Pattern       = regexp.MustCompile(`^\d{3,4}$`)
	ibanPattern       = regexp.MustCompile(`^(?i:IR)?\d{24}$`)
	expiryPattern     = regexp.MustCompile(`^(0[1-9]|1[0-2])/\d{2}$`)
)

// ValidationHelper provides shared validation functionality
type ValidationHelper struct {
	validator *validator.Validate
}

// NewValidationHelper creates a new validation helper with the card,
// IBAN and expiry tags registered
func NewValidationHelper() *ValidationHelper {
	v := validator.New()

	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return fld.Name
		}
		return name
	})

	// gt/gte see decimals as floats, which is only good enough for the
	// sign check; the money tag checks the exact value
	v.RegisterCustomTypeFunc(func(field reflect.Value) any {
		if d, ok := field.Interface().(decimal.Decimal); ok {
			return d.InexactFloat64()
		}
		return nil
	}, decimal.Decimal{})

	mustRegister(v, "cardnumber", cardNumberPattern)
	mustRegister(v, "cvv2", cvv2Pattern)
	mustRegister(v, "iban", ibanPattern)
	mustRegister(v, "expiry", expiryPattern)
	if err := v.RegisterValidation("money", validMoney); err != nil {
		log.Fatalf("failed to register validation %q: %v", "money", err)
	}

	return &ValidationHelper{validator: v}
}

func mustRegister(v *validator.Validate, tag string, pattern *regexp.Regexp) {
	if err := v.RegisterValidation(tag, func(fl validator.FieldLevel) bool {
		return pattern.MatchString(fl.Field().String())
	}); err != nil {
		log.Fatalf("failed to register validation %q: %v", tag, err)
	}
}

// Validate runs struct validation and converts failures into a
// KindValidation error with one message per field
func (vh *ValidationHelper) Validate(s any) error {
	err := vh.validator.Struct(s)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !asValidationErrors(err, &verrs) {
		return NewValidationError(err.Error(), nil)
	}

	fields := make(map[string]string, len(verrs))
	for _, fe := range verrs {
		fields[fe.Field()] = fieldMessage(fe)
	}
	return NewValidationError("validation failed", fields)
}

// maxMoney bounds amounts and balances to what NUMERIC(15,2) holds
var maxMoney = decimal.New(1, 13)

// validMoney accepts amounts with at most two decimal places below
// maxMoney. The custom type func has already turned the field into a
// float, so the decimal is read back from the parent struct.
func validMoney(fl validator.FieldLevel) bool {
	d, ok := moneyField(fl)
	if !ok {
		return false
	}
	return d.Equal(d.Truncate(2)) && d.Abs().LessThan(maxMoney)
}

func moneyField(fl validator.FieldLevel) (decimal.Decimal, bool) {
	if d, ok := fl.Field().Interface().(decimal.Decimal); ok {
		return d, true
	}

	parent := reflect.Indirect(fl.Parent())
	if parent.Kind() != reflect.Struct {
		return decimal.Decimal{}, false
	}
	field := parent.FieldByName(fl.StructFieldName())
	if !field.IsValid() || !field.CanInterface() {
		return decimal.Decimal{}, false
	}
	d, ok := field.Interface().(decimal.Decimal)
	return d, ok
}

func asValidationErrors(err error, target *validator.ValidationErrors) bool {
	verrs, ok := err.(validator.ValidationErrors)
	if ok {
		*target = verrs
	}
	return ok
}

func fieldMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "cardnumber":
		return "must be exactly 16 digits"
	case "cvv2":
		return "must be 3 or 4 digits"
	case "iban":
		return "must be 24 digits with an optional IR prefix"
	case "expiry":
		return "must use the MM/YY format"
	case "gt":
		return fmt.Sprintf("must be greater than %s", fe.Param())
	case "gte":
		return fmt.Sprintf("must be at least %s", fe.Param())
	case "min", "max":
		return fmt.Sprintf("must satisfy %s=%s", fe.Tag(), fe.Param())
	case "oneof":
		return fmt.Sprintf("must be one of: %s", fe.Param())
	case "money":
		return "must have at most 2 decimal places and be below 10000000000000"
	case "datetime":
		return "must be a YYYY-MM-DD date"
	case "email":
		return "must be a valid email address"
	default:
		return fmt.Sprintf("failed on the '%s' rule", fe.Tag())
	}
}

// NormalizeIBAN strips an optional IR prefix in any case and re-adds it
// upper-case. Empty input stays empty.
func NormalizeIBAN(iban string) string {
	iban = strings.TrimSpace(iban)
	if iban == "" {
		return ""
	}
	if len(iban) >= 2 && strings.EqualFold(iban[:2], "IR") {
		iban = iban[2:]
	}
	return "IR" + iban
}

// SendErrorResponse sends a JSON error response
func SendErrorResponse(w http.ResponseWriter, message string, statusCode int, details map[string]string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	json.NewEncoder(w).Encode(ErrorResponse{Error: message, Details: details})
}
