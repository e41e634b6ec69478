// Package validators holds the request rules shared by the per-area validator middlewares.
package validators

import (
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"strconv"
	"strings"

	"educa/middleware"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

var (
	validate = validator.New()
	slugRe   = regexp.MustCompile(`^[a-z0-9_]+(?:-[a-z0-9_]+)*$`)
)

func init() {
	// report fields by their json name
	validate.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		if name == "" {
			return f.Name
		}
		return name
	})
	_ = validate.RegisterValidation("slug", func(fl validator.FieldLevel) bool {
		return slugRe.MatchString(fl.Field().String())
	})
}

// Struct validates v and returns a field to message map, empty when v is valid.
func Struct(v interface{}) map[string]string {
	errs := make(map[string]string)
	err := validate.Struct(v)
	if err == nil {
		return errs
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		errs["request"] = "Invalid request!"
		return errs
	}
	for _, fe := range fieldErrs {
		key := fieldKey(fe)
		if _, seen := errs[key]; !seen {
			errs[key] = message(fe)
		}
	}
	return errs
}

// fieldKey is the dotted json path without the root struct, e.g. "modules[0].title".
func fieldKey(fe validator.FieldError) string {
	ns := fe.Namespace()
	if i := strings.Index(ns, "."); i >= 0 {
		return ns[i+1:]
	}
	return fe.Field()
}

func message(fe validator.FieldError) string {
	label := humanize(fe.Field())
	switch fe.Tag() {
	case "required":
		return label + " is required!"
	case "min":
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("%s must be at least %s characters long!", label, fe.Param())
		}
		return fmt.Sprintf("%s must be at least %s!", label, fe.Param())
	case "max":
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("%s must be at most %s characters long!", label, fe.Param())
		}
		return fmt.Sprintf("%s must be at most %s!", label, fe.Param())
	case "gt", "gte":
		return label + " must be a positive number!"
	case "email":
		return "Invalid email!"
	case "url", "http_url":
		return "Invalid URL!"
	case "slug":
		return label + " may only contain lowercase letters, digits, underscores and hyphens!"
	default:
		return label + " is invalid!"
	}
}

func humanize(field string) string {
	s := strings.ReplaceAll(field, "_", " ")
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

// ParamID parses the route parameter name as a positive id.
func ParamID(c *fiber.Ctx, name string) (uint, bool) {
	id, err := strconv.ParseUint(strings.TrimSpace(c.Params(name)), 10, 64)
	if err != nil || id == 0 {
		return 0, false
	}
	return uint(id), true
}

// ID returns a middleware that parses route parameter name into the local key.
func ID(name, key, label string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, ok := ParamID(c, name)
		if !ok {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid "+label+"!", nil)
		}
		c.Locals(key, id)
		return c.Next()
	}
}

// Var reports whether a single value satisfies the rule tag.
func Var(value interface{}, tag string) bool {
	return validate.Var(value, tag) == nil
}
