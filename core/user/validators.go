package user

import (
	"github.com/go-playground/validator/v10"

	"github.com/trezcool/rollbook/core"
)

var (
	roleTag  = "role"
	roleText = "{0} must be one of student, instructor or admin"
)

// register custom validators
func init() {
	_ = core.Validate.RegisterValidation(roleTag, roleValidation)
	core.RegisterCustomTranslation(roleTag, roleText)
}

// Custom Validators

// roleValidation checks that the provided role is one of AllRoles
func roleValidation(fl validator.FieldLevel) bool {
	return Role(fl.Field().String()).IsValid()
}
