package validators

import (
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"strings"
	"time"

	"caravanshare/internal/models"
	"caravanshare/internal/utils"

	"github.com/go-playground/validator/v10"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

var validate *validator.Validate

var phoneRegex = regexp.MustCompile(`^\+?\d{8,15}$`)

func init() {
	validate = validator.New()

	// Report fields by their JSON name so clients see the keys they sent.
	validate.RegisterTagNameFunc(func(field reflect.StructField) string {
		name := strings.SplitN(field.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return field.Name
		}
		return name
	})

	validate.RegisterValidation("object_id", validateObjectID)
	validate.RegisterValidation("phone_number", validatePhoneNumber)
	validate.RegisterValidation("rating_value", validateRatingValue)
	validate.RegisterValidation("iso_date", validateISODate)
	validate.RegisterValidation("caravan_status", validateCaravanStatus)
}

var (
	ErrInvalidObjectID = errors.New("invalid object ID format")
	ErrInvalidDate     = errors.New("invalid date")
)

// ValidationError represents a field validation error
type ValidationError struct {
	Field   string `json:"field"`
	Tag     string `json:"tag"`
	Value   string `json:"value"`
	Message string `json:"message"`
}

type ValidationErrors []ValidationError

func (v ValidationErrors) Error() string {
	var messages []string
	for _, err := range v {
		messages = append(messages, fmt.Sprintf("%s: %s", err.Field, err.Message))
	}
	return strings.Join(messages, "; ")
}

// Map keys each message by field, the shape of the error envelope details.
func (v ValidationErrors) Map() map[string]string {
	details := make(map[string]string, len(v))
	for _, err := range v {
		if _, ok := details[err.Field]; !ok {
			details[err.Field] = err.Message
		}
	}
	return details
}

// ValidateStruct validates a struct and returns detailed errors
func ValidateStruct(s interface{}) ValidationErrors {
	var validationErrors ValidationErrors

	err := validate.Struct(s)
	if err != nil {
		var fieldErrors validator.ValidationErrors
		if !errors.As(err, &fieldErrors) {
			return ValidationErrors{{Field: "request", Tag: "struct", Message: err.Error()}}
		}
		for _, err := range fieldErrors {
			validationErrors = append(validationErrors, ValidationError{
				Field:   err.Field(),
				Tag:     err.Tag(),
				Value:   fmt.Sprintf("%v", err.Value()),
				Message: getErrorMessage(err),
			})
		}
	}

	return validationErrors
}

func getErrorMessage(err validator.FieldError) string {
	switch err.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", err.Field())
	case "email":
		return "Invalid email format"
	case "min":
		if isNumeric(err.Kind()) {
			return fmt.Sprintf("%s must be at least %s", err.Field(), err.Param())
		}
		return fmt.Sprintf("%s must be at least %s characters", err.Field(), err.Param())
	case "max":
		if isNumeric(err.Kind()) {
			return fmt.Sprintf("%s must be at most %s", err.Field(), err.Param())
		}
		return fmt.Sprintf("%s must be at most %s characters", err.Field(), err.Param())
	case "object_id":
		return "Invalid ID format"
	case "phone_number":
		return "Invalid phone number format"
	case "rating_value":
		return fmt.Sprintf("Rating must be a whole number between %d and %d", utils.MinRating, utils.MaxRating)
	case "iso_date":
		return "Date must be YYYY-MM-DD or RFC3339"
	case "caravan_status":
		return "Status must be one of available, reserved, maintenance"
	default:
		return fmt.Sprintf("%s is invalid", err.Field())
	}
}

func isNumeric(kind reflect.Kind) bool {
	switch kind {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Float32, reflect.Float64:
		return true
	}
	return false
}

func validateObjectID(fl validator.FieldLevel) bool {
	return IsValidObjectID(fl.Field().String())
}

func validatePhoneNumber(fl validator.FieldLevel) bool {
	phone := strings.NewReplacer("-", "", " ", "").Replace(fl.Field().String())
	return phoneRegex.MatchString(phone)
}

func validateRatingValue(fl validator.FieldLevel) bool {
	rating := fl.Field().Int()
	return rating >= utils.MinRating && rating <= utils.MaxRating
}

func validateISODate(fl validator.FieldLevel) bool {
	_, err := utils.ParseDate(fl.Field().String(), time.UTC)
	return err == nil
}

func validateCaravanStatus(fl validator.FieldLevel) bool {
	return models.CaravanStatus(fl.Field().String()).IsValid()
}

func IsValidObjectID(id string) bool {
	_, err := primitive.ObjectIDFromHex(id)
	return err == nil
}

// ParseObjectID converts a path or body id into an ObjectID, reporting a
// validation error the handlers can pass straight to utils.HandleError.
func ParseObjectID(field, value string) (primitive.ObjectID, error) {
	id, err := primitive.ObjectIDFromHex(value)
	if err != nil {
		return primitive.NilObjectID, utils.NewValidationError(fmt.Sprintf("%s: %s", field, ErrInvalidObjectID))
	}
	return id, nil
}
