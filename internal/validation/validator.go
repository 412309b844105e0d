// Package validation wraps go-playground/validator with the form rules shared
// by the auth, projects, tasks and comments packages, and turns failures into
// per-field messages.
package validation

import (
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"sort"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/go-playground/validator/v10"
)

// FieldErrors maps a JSON field name to a user-facing message.
type FieldErrors map[string]string

func (f FieldErrors) Error() string {
	keys := make([]string, 0, len(f))
	for k := range f {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+": "+f[k])
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// Add records msg for field unless the field already has a message.
func (f FieldErrors) Add(field, msg string) {
	if _, ok := f[field]; !ok {
		f[field] = msg
	}
}

// Err returns nil when there are no field errors.
func (f FieldErrors) Err() error {
	if len(f) == 0 {
		return nil
	}
	return f
}

// AsFieldErrors reports whether err carries field errors.
func AsFieldErrors(err error) (FieldErrors, bool) {
	var fe FieldErrors
	if errors.As(err, &fe) {
		return fe, true
	}
	return nil, false
}

var (
	personNameRe = regexp.MustCompile(`^[a-zA-Z\x{00C0}-\x{00FF}\s]+$`)
	tagRe        = regexp.MustCompile(`^[a-zA-Z0-9\s]+$`)
	upperRe      = regexp.MustCompile(`[A-Z]`)
	lowerRe      = regexp.MustCompile(`[a-z]`)
	digitRe      = regexp.MustCompile(`[0-9]`)
	specialRe    = regexp.MustCompile(`[^a-zA-Z0-9]`)
)

var (
	once     sync.Once
	instance *validator.Validate
)

// Validator returns the shared validator with the custom tags registered.
func Validator() *validator.Validate {
	once.Do(func() {
		v := validator.New(validator.WithRequiredStructEnabled())
		v.RegisterTagNameFunc(func(fld reflect.StructField) string {
			name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
			if name == "-" || name == "" {
				return fld.Name
			}
			return name
		})

		mustRegister(v, "password", func(fl validator.FieldLevel) bool {
			return PasswordProblem(fl.Field().String()) == ""
		})
		mustRegister(v, "personname", func(fl validator.FieldLevel) bool {
			return personNameRe.MatchString(fl.Field().String())
		})
		mustRegister(v, "isodate", func(fl validator.FieldLevel) bool {
			_, err := ParseDate(fl.Field().String())
			return err == nil
		})
		mustRegister(v, "tag", func(fl validator.FieldLevel) bool {
			s := fl.Field().String()
			return len(s) >= 2 && len(s) <= 20 && tagRe.MatchString(s)
		})

		instance = v
	})
	return instance
}

func mustRegister(v *validator.Validate, tag string, fn validator.Func) {
	if err := v.RegisterValidation(tag, fn); err != nil {
		panic(fmt.Sprintf("register validation %q: %v", tag, err))
	}
}

// Struct validates s and returns FieldErrors (or nil).
func Struct(s interface{}) error {
	err := Validator().Struct(s)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	return FromValidationErrors(verrs)
}

// FromValidationErrors keeps the first failing rule per field.
func FromValidationErrors(verrs validator.ValidationErrors) FieldErrors {
	out := FieldErrors{}
	for _, fe := range verrs {
		out.Add(fieldName(fe), message(fe))
	}
	return out
}

// fieldName strips dive indexes so tags[2] reports as "tags".
func fieldName(fe validator.FieldError) string {
	name := fe.Field()
	if i := strings.IndexByte(name, '['); i >= 0 {
		name = name[:i]
	}
	return name
}

func message(fe validator.FieldError) string {
	field := fieldName(fe)
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", field)
	case "min":
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("%s must be at least %s characters", field, fe.Param())
		}
		return fmt.Sprintf("%s must have at least %s items", field, fe.Param())
	case "max":
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("%s must be at most %s characters", field, fe.Param())
		}
		return fmt.Sprintf("%s must have at most %s items", field, fe.Param())
	case "email":
		return "invalid email"
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", field, strings.ReplaceAll(fe.Param(), " ", ", "))
	case "password":
		if s, ok := fe.Value().(string); ok {
			if p := PasswordProblem(s); p != "" {
				return p
			}
		}
		return "password is too weak"
	case "personname":
		return fmt.Sprintf("%s must contain only letters and spaces", field)
	case "isodate":
		return fmt.Sprintf("%s must be a valid date", field)
	case "tag":
		return "each tag must be 2-20 letters, numbers or spaces"
	default:
		return fmt.Sprintf("%s is invalid", field)
	}
}

// PasswordProblem returns the first unmet password rule, or "" when the
// password is acceptable.
func PasswordProblem(pw string) string {
	switch {
	case utf8.RuneCountInString(pw) < 8:
		return "password must be at least 8 characters"
	case !upperRe.MatchString(pw):
		return "password must contain at least one uppercase letter"
	case !lowerRe.MatchString(pw):
		return "password must contain at least one lowercase letter"
	case !digitRe.MatchString(pw):
		return "password must contain at least one number"
	case !specialRe.MatchString(pw):
		return "password must contain at least one special character"
	}
	return ""
}

var dateLayouts = []string{time.RFC3339Nano, time.RFC3339, "2006-01-02T15:04", "2006-01-02"}

// ParseDate accepts a calendar date or an RFC 3339 timestamp.
func ParseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid date %q", s)
}
