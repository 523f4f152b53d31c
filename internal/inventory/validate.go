package inventory

import (
	"errors"
	"math"
	"reflect"
	"sort"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
)

// ValidationError reports bad user input, keyed by field name. It is always
// returned before any gateway call.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+" "+e.Fields[k])
	}
	return "invalid input: " + strings.Join(parts, "; ")
}

// CropInput is the user-supplied part of a crop.
type CropInput struct {
	Name     string  `json:"name" validate:"required"`
	Quantity float64 `json:"quantity" validate:"gt=0"`
	Price    float64 `json:"price" validate:"gt=0"`
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "" || name == "-" {
			return strings.ToLower(f.Name)
		}
		return name
	})
	return v
}

// ValidateCrop trims the name and checks name, quantity and price.
func ValidateCrop(in CropInput) (CropInput, error) {
	in.Name = strings.TrimSpace(in.Name)
	if err := validate.Struct(in); err != nil {
		return in, fromValidator(err)
	}
	return in, nil
}

// ParseCropInput parses form text into a validated CropInput.
func ParseCropInput(name, quantity, price string) (CropInput, error) {
	fields := map[string]string{}
	q, ok := parseAmount(quantity)
	if !ok {
		fields["quantity"] = "must be a number"
	}
	p, ok := parseAmount(price)
	if !ok {
		fields["price"] = "must be a number"
	}

	in, err := ValidateCrop(CropInput{Name: name, Quantity: q, Price: p})
	var ve *ValidationError
	if errors.As(err, &ve) {
		for k, v := range ve.Fields {
			if _, seen := fields[k]; !seen {
				fields[k] = v
			}
		}
	}
	if len(fields) > 0 {
		return in, &ValidationError{Fields: fields}
	}
	return in, nil
}

func parseAmount(s string) (float64, bool) {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false
	}
	return v, true
}

func fromValidator(err error) error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return &ValidationError{Fields: map[string]string{"_": err.Error()}}
	}
	fields := make(map[string]string, len(verrs))
	for _, fe := range verrs {
		fields[fe.Field()] = messageForTag(fe.Tag(), fe.Param())
	}
	return &ValidationError{Fields: fields}
}

func messageForTag(tag, param string) string {
	switch tag {
	case "required":
		return "is required"
	case "gt":
		return "must be greater than " + param
	default:
		return "is invalid"
	}
}
