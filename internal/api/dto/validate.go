package dto

import (
	"errors"
	"fmt"
	"strings"
	"unicode"

	"github.com/go-playground/validator/v10"
)

// inputValidator checks the same binding tags gin checks on request bodies, for
// inputs that do not arrive as JSON (multipart forms) and for service callers.
var inputValidator = func() *validator.Validate {
	v := validator.New()
	v.SetTagName("binding")
	return v
}()

// FieldErrors runs the binding tags of in and returns one message per failing
// field, keyed by Go field name. It returns nil when in is valid.
func FieldErrors(in any) map[string]string {
	var verrs validator.ValidationErrors
	if !errors.As(inputValidator.Struct(in), &verrs) {
		return nil
	}
	out := make(map[string]string, len(verrs))
	for _, fe := range verrs {
		out[fe.StructField()] = fieldMessage(fe)
	}
	return out
}

// ValidationMessages turns a gin binding error into field messages. ok is false
// when err is not a tag failure, e.g. a malformed body.
func ValidationMessages(err error) (msgs []string, ok bool) {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return nil, false
	}
	for _, fe := range verrs {
		msgs = append(msgs, fieldMessage(fe))
	}
	return msgs, true
}

func fieldMessage(fe validator.FieldError) string {
	label := humanize(fe.StructField())
	switch fe.Tag() {
	case "required":
		return label + " can't be blank"
	case "min":
		return fmt.Sprintf("%s is too short (minimum is %s characters)", label, fe.Param())
	case "max":
		return fmt.Sprintf("%s is too long (maximum is %s characters)", label, fe.Param())
	case "oneof":
		return label + " is not included in the list"
	case "latitude":
		return label + " must be between -90 and 90"
	case "longitude":
		return label + " must be between -180 and 180"
	default:
		return label + " is invalid"
	}
}

// humanize turns PasswordConfirmation into "Password confirmation".
func humanize(field string) string {
	var b strings.Builder
	prev := rune(0)
	for _, r := range field {
		if unicode.IsUpper(r) && unicode.IsLower(prev) {
			b.WriteByte(' ')
			b.WriteRune(unicode.ToLower(r))
		} else {
			b.WriteRune(r)
		}
		prev = r
	}
	return b.String()
}
