package validator

import (
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

// Validator instance
var validate *validator.Validate

func init() {
	validate = validator.New()

	// Use JSON tag names in error messages
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	// Register custom validations
	registerCustomValidations()
}

func registerCustomValidations() {
	// Task type validation
	validate.RegisterValidation("task_type", func(fl validator.FieldLevel) bool {
		taskType := fl.Field().String()
		validTypes := []string{"subscribe", "view", "reaction"}
		for _, t := range validTypes {
			if taskType == t {
				return true
			}
		}
		return false
	})

	// Review verdict validation
	validate.RegisterValidation("verdict", func(fl validator.FieldLevel) bool {
		verdict := fl.Field().String()
		validVerdicts := []string{"approve", "reject", "needs_work"}
		for _, v := range validVerdicts {
			if verdict == v {
				return true
			}
		}
		return false
	})

	// Withdrawal kind validation
	validate.RegisterValidation("withdraw_kind", func(fl validator.FieldLevel) bool {
		kind := fl.Field().String()
		validKinds := []string{"card", "premium", "other"}
		for _, k := range validKinds {
			if kind == k {
				return true
			}
		}
		return false
	})
}

// Validate validates a struct and returns a map of field errors
func Validate(s interface{}) map[string]string {
	err := validate.Struct(s)
	if err == nil {
		return nil
	}

	errors := make(map[string]string)
	for _, err := range err.(validator.ValidationErrors) {
		field := err.Field()
		switch err.Tag() {
		case "required":
			errors[field] = "This field is required"
		case "min":
			errors[field] = "Value is too short (min: " + err.Param() + ")"
		case "max":
			errors[field] = "Value is too long (max: " + err.Param() + ")"
		case "gt":
			errors[field] = "Value must be greater than " + err.Param()
		case "gte":
			errors[field] = "Value must be at least " + err.Param()
		case "lte":
			errors[field] = "Value must be at most " + err.Param()
		case "url":
			errors[field] = "Invalid URL format"
		case "task_type":
			errors[field] = "Invalid task type. Must be: subscribe, view, or reaction"
		case "verdict":
			errors[field] = "Invalid verdict. Must be: approve, reject, or needs_work"
		case "withdraw_kind":
			errors[field] = "Invalid kind. Must be: card, premium, or other"
		default:
			errors[field] = "Invalid value"
		}
	}

	return errors
}

// ValidateVar validates a single variable
func ValidateVar(field interface{}, tag string) error {
	return validate.Var(field, tag)
}
