package http

import (
	"errors"
	"fmt"
	"net/http"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
)

// requestValidator implements echo.Validator with struct tags.
type requestValidator struct {
	validate *validator.Validate
}

func newRequestValidator() *requestValidator {
	v := validator.New(validator.WithRequiredStructEnabled())
	// Report fields by their form or JSON names.
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		tag := f.Tag.Get("form")
		if tag == "" {
			tag = f.Tag.Get("json")
		}
		name := strings.SplitN(tag, ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return &requestValidator{validate: v}
}

// Validate returns a 400 naming the first invalid field.
func (rv *requestValidator) Validate(i any) error {
	err := rv.validate.Struct(i)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		fe := verrs[0]
		if fe.Tag() == "required" {
			return echo.NewHTTPError(http.StatusBadRequest, fmt.Sprintf("%s field is required", fe.Field()))
		}
		return echo.NewHTTPError(http.StatusBadRequest, fmt.Sprintf("%s field is invalid", fe.Field()))
	}
	return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
}
