package validation

import (
	"errors"
	"reflect"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/diakonovmakar/yatube-final/internal/app/models/dto"
)

// Validation rule patterns
var (
	// UsernamePattern allows letters, digits and @.+-_
	UsernamePattern = `^[\w.@+-]+$`

	// SlugPattern is what a group slug may contain.
	SlugPattern = `^[-a-zA-Z0-9_]+$`
)

// CompiledPatterns caches compiled regex patterns for better performance
var CompiledPatterns = struct {
	Username *regexp.Regexp
	Slug     *regexp.Regexp
}{
	Username: regexp.MustCompile(UsernamePattern),
	Slug:     regexp.MustCompile(SlugPattern),
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())

	// Report fields under their form names.
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("form"), ",", 2)[0]
		if name == "-" || name == "" {
			return fld.Name
		}
		return name
	})

	_ = v.RegisterValidation("username", func(fl validator.FieldLevel) bool {
		return CompiledPatterns.Username.MatchString(fl.Field().String())
	})
	_ = v.RegisterValidation("slug", func(fl validator.FieldLevel) bool {
		return CompiledPatterns.Slug.MatchString(fl.Field().String())
	})
	return v
}

// Struct validates obj and returns per-field messages. A nil result means
// the value is valid.
func Struct(obj interface{}) dto.FieldErrors {
	err := validate.Struct(obj)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return dto.NewFieldErrors().Add(dto.NonFieldKey, err.Error())
	}

	out := dto.NewFieldErrors()
	for _, fe := range fieldErrs {
		out.Add(fe.Field(), message(fe))
	}
	return out
}

// Var validates a single value against tag.
func Var(value interface{}, tag string) bool {
	return validate.Var(value, tag) == nil
}

func message(e validator.FieldError) string {
	switch e.Tag() {
	case "required":
		return "This field is required."
	case "min":
		return "Ensure this value has at least " + e.Param() + " characters."
	case "max":
		return "Ensure this value has at most " + e.Param() + " characters."
	case "number":
		return "Select a valid choice."
	case "eqfield":
		return "The two password fields didn't match."
	case "username":
		return "Enter a valid username. This value may contain only letters, numbers, and @/./+/-/_ characters."
	case "slug":
		return "Enter a valid slug consisting of letters, numbers, underscores or hyphens."
	default:
		return "Enter a valid value."
	}
}
