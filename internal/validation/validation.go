// Package validation provides reusable field rules backed by go-playground/validator.
//
// A Rule is a value describing the constraints of one field. Rules are checked through a Set,
// which keeps going after a failure so that every violated field of a payload is reported at once.
package validation

import (
	"fmt"
	"reflect"
	"regexp"
	"strings"
	"unicode"

	"github.com/go-playground/validator"
)

type Mode int

const (
	// Email accepts a well formed email address.
	Email Mode = iota
	// Extended accepts letters, digits, whitespace and -,.;:!
	Extended
	// Letters accepts letters and spaces only.
	Letters
	// Alphanumeric accepts letters, digits and spaces.
	Alphanumeric
)

const (
	DefaultMinLength = 2
	DefaultMaxLength = 2000

	PasswordMinLength = 8
	PasswordMaxLength = 25
)

var (
	extendedRe     = regexp.MustCompile(`^[a-zA-Z0-9,.;:\-\s!]+$`)
	lettersRe      = regexp.MustCompile(`^[a-zA-Z ]+$`)
	alphanumericRe = regexp.MustCompile(`^[a-zA-Z0-9 ]+$`)

	engine = newEngine()
)

type (
	Rule struct {
		tag  string
		kind reflect.Kind
	}

	FieldError struct {
		Field   string `json:"field"`
		Message string `json:"message"`
	}

	// Errors is the aggregated result of a Set.
	Errors []FieldError

	Set struct {
		errs Errors
	}
)

func newEngine() *validator.Validate {
	v := validator.New()
	mustRegister(v, "extended", regexpFunc(extendedRe))
	mustRegister(v, "letters", regexpFunc(lettersRe))
	mustRegister(v, "alphanumspace", regexpFunc(alphanumericRe))
	mustRegister(v, "password", func(fl validator.FieldLevel) bool {
		var lower, upper, digit bool
		for _, r := range fl.Field().String() {
			switch {
			case unicode.IsLower(r):
				lower = true
			case unicode.IsUpper(r):
				upper = true
			case unicode.IsDigit(r):
				digit = true
			}
		}
		return lower && upper && digit
	})
	return v
}

func mustRegister(v *validator.Validate, tag string, fn validator.Func) {
	if err := v.RegisterValidation(tag, fn); err != nil {
		panic(err)
	}
}

func regexpFunc(re *regexp.Regexp) validator.Func {
	return func(fl validator.FieldLevel) bool {
		return re.MatchString(fl.Field().String())
	}
}

// String bounds the length of a string and restricts its characters according to mode.
func String(min, max int, mode Mode) Rule {
	if min <= 0 {
		min = DefaultMinLength
	}
	if max <= 0 {
		max = DefaultMaxLength
	}
	tags := []string{"required", fmt.Sprintf("min=%d", min), fmt.Sprintf("max=%d", max)}
	switch mode {
	case Email:
		tags = append(tags, "email")
	case Extended:
		tags = append(tags, "extended")
	case Alphanumeric:
		tags = append(tags, "alphanumspace")
	default:
		tags = append(tags, "letters")
	}
	return Rule{tag: strings.Join(tags, ","), kind: reflect.String}
}

// Text bounds the length of a string without restricting its characters.
func Text(min, max int) Rule {
	return Rule{tag: fmt.Sprintf("required,min=%d,max=%d", min, max), kind: reflect.String}
}

func Password() Rule {
	return Rule{
		tag:  fmt.Sprintf("required,min=%d,max=%d,password", PasswordMinLength, PasswordMaxLength),
		kind: reflect.String,
	}
}

// Int is an inclusive numeric range.
func Int(min, max int) Rule {
	return Rule{tag: fmt.Sprintf("min=%d,max=%d", min, max), kind: reflect.Int}
}

func NewSet() *Set {
	return &Set{}
}

// Check validates value against rule and records the first violated constraint under field.
func (s *Set) Check(field string, value interface{}, rule Rule) *Set {
	err := engine.Var(value, rule.tag)
	if err == nil {
		return s
	}
	verrs, ok := err.(validator.ValidationErrors)
	if !ok || len(verrs) == 0 {
		s.errs = append(s.errs, FieldError{Field: field, Message: err.Error()})
		return s
	}
	s.errs = append(s.errs, FieldError{Field: field, Message: message(verrs[0], rule.kind)})
	return s
}

// Add records a failure that does not come from a Rule.
func (s *Set) Add(field, msg string) *Set {
	s.errs = append(s.errs, FieldError{Field: field, Message: msg})
	return s
}

// Err returns nil when every check passed.
func (s *Set) Err() error {
	if len(s.errs) == 0 {
		return nil
	}
	return s.errs
}

func (e Errors) Error() string {
	parts := make([]string, len(e))
	for i := range e {
		parts[i] = e[i].Field + ": " + e[i].Message
	}
	return strings.Join(parts, "; ")
}

// ByField groups messages by field name, keeping their order.
func (e Errors) ByField() map[string][]string {
	out := make(map[string][]string, len(e))
	for _, fe := range e {
		out[fe.Field] = append(out[fe.Field], fe.Message)
	}
	return out
}

func message(fe validator.FieldError, kind reflect.Kind) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "min":
		if kind == reflect.String {
			return fmt.Sprintf("must be at least %s characters long", fe.Param())
		}
		return fmt.Sprintf("must be a number equal to or greater than %s", fe.Param())
	case "max":
		if kind == reflect.String {
			return fmt.Sprintf("must not be more than %s characters long", fe.Param())
		}
		return fmt.Sprintf("must be a number equal to or less than %s", fe.Param())
	case "email":
		return "invalid email format"
	case "extended":
		return "can only contain alphanumeric characters, spaces and '-,.;:!'"
	case "letters":
		return "can only contain alphabetical characters A-Z and spaces"
	case "alphanumspace":
		return "can only contain alphanumeric characters A-Z, 0-9 and spaces"
	case "password":
		return "must contain at least one lowercase letter, one uppercase letter and one digit"
	}
	return fmt.Sprintf("failed on the '%s' rule", fe.Tag())
}
