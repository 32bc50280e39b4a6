package global

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

// TestValidateArchiveKey kiểm tra custom validator cho account/group/app key
func TestValidateArchiveKey(t *testing.T) {
	InitValidator()

	type params struct {
		Account string `validate:"required,archive_key"`
	}

	t.Run("Key hợp lệ", func(t *testing.T) {
		for _, key := range []string{"acme", "acme-news", "acme_news", "a1b2"} {
			assert.NoError(t, Validate.Struct(params{Account: key}), key)
		}
	})

	t.Run("Key không hợp lệ", func(t *testing.T) {
		// Key được ghép vào namespace MongoDB nên cấm $, dấu chấm, khoảng trắng, chữ hoa
		for _, key := range []string{"", "Acme", "acme.news", "acme news", "acme$news", "ácme"} {
			assert.Error(t, Validate.Struct(params{Account: key}), key)
		}
	})
}
