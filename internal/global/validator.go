package global

import (
	"regexp"

	"github.com/go-playground/validator/v10"
)

// archiveKeyRegex giới hạn account/group/app key: chữ thường, số, gạch dưới, gạch ngang.
// Key được ghép thành tên collection "{account}_{group}" nên không được chứa ký tự
// MongoDB cấm trong namespace ($, khoảng trắng, dấu chấm).
var archiveKeyRegex = regexp.MustCompile(`^[a-z0-9_-]+$`)

// InitValidator khởi tạo và đăng ký các custom validator
func InitValidator() {
	Validate = validator.New()

	_ = Validate.RegisterValidation("archive_key", validateArchiveKey)
}

// validateArchiveKey kiểm tra định dạng của account/group/app key
func validateArchiveKey(fl validator.FieldLevel) bool {
	value := fl.Field().String()
	if value == "" {
		return false
	}
	return archiveKeyRegex.MatchString(value)
}
