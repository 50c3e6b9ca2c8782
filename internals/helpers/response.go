package helper

import (
	"errors"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"okrku_backend/internals/configs"
)

// Validator bersama untuk seluruh controller.
var Validate = validator.New()

// ValidationError mengubah validator.ValidationErrors jadi response 422.
func ValidationError(c *fiber.Ctx, err error) error {
	var ve validator.ValidationErrors
	if !errors.As(err, &ve) {
		return JsonError(c, fiber.StatusBadRequest, "Input tidak valid")
	}

	fields := make(map[string][]string, len(ve))
	for _, fe := range ve {
		fields[fe.Field()] = append(fields[fe.Field()], validationMessage(fe))
	}
	return JsonValidationError(c, fields)
}

func validationMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return fe.Field() + " wajib diisi"
	case "email":
		return "format email tidak valid"
	case "min":
		return fe.Field() + " minimal " + fe.Param()
	case "max":
		return fe.Field() + " maksimal " + fe.Param()
	case "oneof":
		return fe.Field() + " harus salah satu dari: " + fe.Param()
	case "uuid", "uuid4":
		return fe.Field() + " harus UUID"
	default:
		return "format tidak valid (" + fe.Tag() + ")"
	}
}

// BindAndValidate parse body lalu validasi struct. Error sudah berupa response JSON.
func BindAndValidate[T any](c *fiber.Ctx, dst *T) (bool, error) {
	if err := c.BodyParser(dst); err != nil {
		return false, JsonError(c, fiber.StatusBadRequest, "Payload tidak valid")
	}
	if err := Validate.Struct(dst); err != nil {
		return false, ValidationError(c, err)
	}
	return true, nil
}

// DBError memetakan error GORM/Postgres ke status HTTP yang masuk akal.
func DBError(c *fiber.Ctx, err error, notFoundMsg, failMsg string) error {
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return JsonError(c, fiber.StatusNotFound, notFoundMsg)
	case IsUniqueViolation(err):
		return JsonError(c, fiber.StatusConflict, "Data sudah ada (duplikat)")
	default:
		return JsonError(c, fiber.StatusInternalServerError, failMsg)
	}
}

// ServiceError: *fiber.Error dari service diteruskan apa adanya,
// sisanya lewat DBError (404/409/500). Error 500 dicatat ke log.
func ServiceError(c *fiber.Ctx, err error, notFoundMsg, failMsg string) error {
	var fe *fiber.Error
	if errors.As(err, &fe) {
		return JsonError(c, fe.Code, fe.Message)
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) && !IsUniqueViolation(err) {
		configs.L().Errorf("[ERROR] %s: %v", failMsg, err)
	}
	return DBError(c, err, notFoundMsg, failMsg)
}
