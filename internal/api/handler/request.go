package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/bcnelson/netguard/internal/validation"
)

var validate = validator.New()

func init() {
	validate.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	validate.RegisterValidation("bundleid", func(fl validator.FieldLevel) bool {
		return validation.ValidateBundleID(fl.Field().String()) == nil
	})
	validate.RegisterValidation("domainname", func(fl validator.FieldLevel) bool {
		return validation.ValidateDomain(fl.Field().String()) == nil
	})
}

// decode reads a JSON body into v and validates its struct tags.
func decode(r *http.Request, v any) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return fmt.Errorf("invalid JSON: %w", err)
	}
	if err := validate.Struct(v); err != nil {
		return fmt.Errorf("validation error: %w", err)
	}
	return nil
}

// respondDecodeError reports a decode failure, listing each field that
// failed struct validation.
func respondDecodeError(w http.ResponseWriter, err error) {
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		respondValidationError(w, "body", "", err.Error())
		return
	}

	var errs validation.ValidationErrors
	for _, fe := range fieldErrs {
		field := strings.TrimPrefix(fe.Namespace(), namespaceRoot(fe.Namespace()))
		errs.Add(field, fmt.Sprint(fe.Value()), fmt.Sprintf("failed %q validation", fe.Tag()))
	}
	respondValidationErrors(w, errs)
}

// namespaceRoot returns the "Type." prefix validator puts before field paths.
func namespaceRoot(ns string) string {
	if i := strings.IndexByte(ns, '.'); i >= 0 {
		return ns[:i+1]
	}
	return ""
}
