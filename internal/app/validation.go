package app

import (
	"errors"
	"reflect"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"

	"github.com/hylla/agenda/internal/domain"
)

// custom validation tags
const (
	notBlankTag     = "notblank"
	activityTypeTag = "activity_type"
	timeOfDayTag    = "time_of_day"
)

var validate = sync.OnceValue(newValidator)

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	// Use JSON tag names so field errors line up with form and wire names.
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	_ = v.RegisterValidation(notBlankTag, func(fl validator.FieldLevel) bool {
		return strings.TrimSpace(fl.Field().String()) != ""
	})
	_ = v.RegisterValidation(activityTypeTag, func(fl validator.FieldLevel) bool {
		_, ok := domain.NormalizeActivityType(fl.Field().String())
		return ok
	})
	_ = v.RegisterValidation(timeOfDayTag, func(fl validator.FieldLevel) bool {
		_, err := domain.ParseTimeOfDay(fl.Field().String())
		return err == nil
	})
	return v
}

// ValidateStruct validates s and converts failures into a *FormError.
func ValidateStruct(s any) error {
	err := validate().Struct(s)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	form := &FormError{}
	for _, fe := range verrs {
		form.Fields = append(form.Fields, FieldError{Field: fe.Field(), Message: fieldMessage(fe)})
	}
	return form
}

func fieldMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required", notBlankTag:
		return "is required"
	case activityTypeTag:
		return "must be one of session, presentation, break, activity, workshop, group_work, assessment, feedback"
	case timeOfDayTag:
		return "must be a time like 09:30"
	default:
		return "is invalid"
	}
}
