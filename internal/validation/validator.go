package validation

import (
	"errors"
	"reflect"
	"strings"

	validatorv10 "github.com/go-playground/validator/v10"

	"github.com/RodolfoDevApp/eventshop-storefront-go/internal/domain"
)

// New returns a validator that reports fields by their json names and trims
// whitespace-only strings as missing.
func New() *validatorv10.Validate {
	v := validatorv10.New()

	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		if name == "" {
			return f.Name
		}
		return name
	})

	v.RegisterStructValidation(customerStructValidation, domain.Customer{})
	v.RegisterStructValidation(cartEntryStructValidation, domain.CartEntry{})

	return v
}

func customerStructValidation(sl validatorv10.StructLevel) {
	c := sl.Current().Interface().(domain.Customer)
	if c.Name != "" && strings.TrimSpace(c.Name) == "" {
		sl.ReportError(c.Name, "name", "Name", "notblank", "")
	}
	if c.Address != "" && strings.TrimSpace(c.Address) == "" {
		sl.ReportError(c.Address, "address", "Address", "notblank", "")
	}
}

func cartEntryStructValidation(sl validatorv10.StructLevel) {
	e := sl.Current().Interface().(domain.CartEntry)
	if e.ProductName != "" && strings.TrimSpace(e.ProductName) == "" {
		sl.ReportError(e.ProductName, "name", "ProductName", "notblank", "")
	}
}

// Struct validates s and converts failures into a *domain.ValidationError.
func Struct(v *validatorv10.Validate, s interface{}) error {
	err := v.Struct(s)
	if err == nil {
		return nil
	}

	var ve validatorv10.ValidationErrors
	if !errors.As(err, &ve) {
		return &domain.ValidationError{Fields: map[string]string{"error": err.Error()}}
	}

	fields := make(map[string]string, len(ve))
	for _, fe := range ve {
		fields[fieldPath(fe.Namespace())] = message(fe)
	}
	return &domain.ValidationError{Fields: fields}
}

// fieldPath drops the root struct name: "PlaceOrderCommand.cart[0].quantity"
// becomes "cart[0].quantity".
func fieldPath(ns string) string {
	if i := strings.Index(ns, "."); i >= 0 {
		return ns[i+1:]
	}
	return ns
}

func message(fe validatorv10.FieldError) string {
	switch fe.Tag() {
	case "required", "notblank":
		return "is required"
	case "email":
		return "must be a valid email"
	case "min":
		return "must have at least " + fe.Param() + " item(s)"
	case "gt":
		return "must be greater than " + fe.Param()
	default:
		return "failed " + fe.Tag() + " check"
	}
}
