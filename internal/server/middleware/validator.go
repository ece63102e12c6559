package middleware

import (
	"errors"
	"fmt"
	"net/http"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

type Validator struct {
	validate *validator.Validate
}

func NewValidator() *Validator {
	validate := validator.New(validator.WithRequiredStructEnabled())

	commonTags := []string{
		"json",
		"param",
		"query",
		"header",
	}

	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		for _, tag := range commonTags {
			name := strings.SplitN(fld.Tag.Get(tag), ",", 2)[0]
			if name != "" && name != "-" {
				return name
			}
		}
		return ""
	})

	return &Validator{
		validate: validate,
	}
}

// Validate returns a 400 *ResponseError listing every failed field. The first
// failure doubles as the top-level message.
func (v *Validator) Validate(i interface{}) error {
	err := v.validate.Struct(i)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}

	structType := reflect.Indirect(reflect.ValueOf(i)).Type()
	fields := make([]FieldError, 0, len(verrs))
	for _, fe := range verrs {
		fields = append(fields, FieldError{
			Field:   fe.Field(),
			Message: fieldMessage(structType, fe),
		})
	}

	return &ResponseError{
		Status:  http.StatusBadRequest,
		Err:     err,
		Message: fields[0].Message,
		Errors:  fields,
	}
}

// fieldMessage renders a human message for a failed rule. The field's `label`
// tag names it; the json name is the fallback.
func fieldMessage(structType reflect.Type, fe validator.FieldError) string {
	label := fe.Field()
	rules := ""
	if sf, ok := structType.FieldByName(fe.StructField()); ok {
		if l := sf.Tag.Get("label"); l != "" {
			label = l
		}
		rules = sf.Tag.Get("validate")
	}

	switch fe.Tag() {
	case "required":
		return label + " is required"
	case "email":
		return "Please provide a valid email"
	case "min", "max":
		min, hasMin := ruleParam(rules, "min")
		max, hasMax := ruleParam(rules, "max")
		switch {
		case hasMin && hasMax:
			return fmt.Sprintf("%s must be between %s and %s characters", label, min, max)
		case fe.Tag() == "min":
			return fmt.Sprintf("%s must be at least %s characters long", label, fe.Param())
		default:
			return fmt.Sprintf("%s must be at most %s characters long", label, fe.Param())
		}
	}
	return fmt.Sprintf("%s is invalid", label)
}

func ruleParam(rules, name string) (string, bool) {
	for _, rule := range strings.Split(rules, ",") {
		key, value, found := strings.Cut(rule, "=")
		if found && key == name {
			return value, true
		}
	}
	return "", false
}
