package http

import (
	"errors"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/jhoicas/kardex-admin/internal/application/dto"
	"github.com/shopspring/decimal"
)

// Validator valida los DTOs de entrada y arma el mapa de errores por campo.
type Validator struct {
	v *validator.Validate
}

// NewValidator registra los nombres json de los campos y decimal.Decimal como número.
func NewValidator() *Validator {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "" {
			name = strings.SplitN(f.Tag.Get("query"), ",", 2)[0]
		}
		if name == "-" || name == "" {
			return f.Name
		}
		return name
	})
	v.RegisterCustomTypeFunc(func(field reflect.Value) interface{} {
		if d, ok := field.Interface().(decimal.Decimal); ok {
			return d.InexactFloat64()
		}
		return nil
	}, decimal.Decimal{})
	return &Validator{v: v}
}

// Struct devuelve nil o el mapa campo → mensaje.
func (val *Validator) Struct(s any) map[string]string {
	err := val.v.Struct(s)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	fields := make(map[string]string)
	if !errors.As(err, &verrs) {
		fields["_"] = err.Error()
		return fields
	}
	for _, e := range verrs {
		fields[e.Field()] = fieldMessage(e)
	}
	return fields
}

func fieldMessage(e validator.FieldError) string {
	switch e.Tag() {
	case "required":
		return "es obligatorio"
	case "email":
		return "debe ser un email válido"
	case "min":
		return "debe tener al menos " + e.Param() + " caracteres"
	case "max":
		return "debe tener como máximo " + e.Param() + " caracteres"
	case "gt":
		return "debe ser mayor que " + e.Param()
	case "gte":
		return "debe ser mayor o igual que " + e.Param()
	case "oneof":
		return "debe ser uno de: " + e.Param()
	case "eqfield":
		return "no coincide"
	case "hexcolor":
		return "debe ser un color hexadecimal"
	default:
		return "no es válido (" + e.Tag() + ")"
	}
}

// validationFailed responde 400 VALIDATION_ERROR con el detalle por campo.
func validationFailed(c *fiber.Ctx, fields map[string]string) error {
	return c.Status(fiber.StatusBadRequest).JSON(dto.ValidationErrorResponse{
		Code:    "VALIDATION_ERROR",
		Message: "datos inválidos",
		Fields:  fields,
	})
}

// bindJSON parsea el body y lo valida. Si devuelve false la respuesta ya fue escrita.
func bindJSON(c *fiber.Ctx, val *Validator, out any) (bool, error) {
	if err := c.BodyParser(out); err != nil {
		return false, badBody(c)
	}
	if fields := val.Struct(out); fields != nil {
		return false, validationFailed(c, fields)
	}
	return true, nil
}

// bindQuery parsea la query string y la valida.
func bindQuery(c *fiber.Ctx, val *Validator, out any) (bool, error) {
	if err := c.QueryParser(out); err != nil {
		return false, badQuery(c)
	}
	if fields := val.Struct(out); fields != nil {
		return false, validationFailed(c, fields)
	}
	return true, nil
}
