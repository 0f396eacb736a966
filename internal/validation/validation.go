package validation

import (
	"reflect"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
)

// New creates a validator that understands decimal.Decimal fields, so
// numeric tags like gt=0 apply to prices the same way they do to floats.
func New() *validator.Validate {
	validate := validator.New()
	validate.RegisterCustomTypeFunc(func(field reflect.Value) interface{} {
		if value, ok := field.Interface().(decimal.Decimal); ok {
			f, _ := value.Float64()
			return f
		}
		return nil
	}, decimal.Decimal{})
	return validate
}
