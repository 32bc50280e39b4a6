package common

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/mongo"
)

// TestIsIndexConflictError kiểm tra nhận diện lỗi xung đột cấu hình index
func TestIsIndexConflictError(t *testing.T) {
	t.Run("IndexOptionsConflict code 85", func(t *testing.T) {
		err := mongo.CommandError{Code: 85, Name: "IndexOptionsConflict"}
		assert.True(t, IsIndexConflictError(err))
	})

	t.Run("IndexKeySpecsConflict code 86", func(t *testing.T) {
		err := mongo.CommandError{Code: 86, Name: "IndexKeySpecsConflict"}
		assert.True(t, IsIndexConflictError(err))
	})

	t.Run("Lỗi wrap vẫn được nhận diện", func(t *testing.T) {
		err := fmt.Errorf("create index: %w", mongo.CommandError{Code: 85})
		assert.True(t, IsIndexConflictError(err))
	})

	t.Run("Command error khác không phải conflict", func(t *testing.T) {
		assert.False(t, IsIndexConflictError(mongo.CommandError{Code: 11000}))
		assert.False(t, IsIndexConflictError(errors.New("already exists")))
		assert.False(t, IsIndexConflictError(nil))
	})
}

// TestConvertMongoError kiểm tra mapping lỗi MongoDB sang lỗi hệ thống
func TestConvertMongoError(t *testing.T) {
	t.Run("Nil giữ nguyên nil", func(t *testing.T) {
		assert.NoError(t, ConvertMongoError(nil))
	})

	t.Run("ErrNoDocuments thành ErrNotFound", func(t *testing.T) {
		got := ConvertMongoError(mongo.ErrNoDocuments)
		assert.True(t, errors.Is(got, ErrNotFound))
	})

	t.Run("Xung đột index thành ErrMongoIndexConflict", func(t *testing.T) {
		got := ConvertMongoError(mongo.CommandError{Code: 85})
		assert.True(t, errors.Is(got, ErrMongoIndexConflict))
	})

	t.Run("Lỗi hệ thống không bị convert lại", func(t *testing.T) {
		got := ConvertMongoError(ErrMongoTimeout)
		assert.Equal(t, ErrMongoTimeout, got)
	})

	t.Run("Command error khác thành ErrMongoQuery", func(t *testing.T) {
		got := ConvertMongoError(mongo.CommandError{Code: 59, Name: "CommandNotFound"})
		assert.True(t, errors.Is(got, ErrMongoQuery))
	})

	t.Run("Lỗi không xác định vẫn mang status 500", func(t *testing.T) {
		got := ConvertMongoError(errors.New("boom"))
		var appErr *Error
		require.True(t, errors.As(got, &appErr))
		assert.Equal(t, StatusInternalServerError, appErr.StatusCode)
	})
}

// TestErrorIs kiểm tra so sánh lỗi qua errors.Is
func TestErrorIs(t *testing.T) {
	t.Run("Lỗi wrap match sentinel", func(t *testing.T) {
		err := fmt.Errorf("parse: %w", ErrInvalidInput)
		assert.True(t, errors.Is(err, ErrInvalidInput))
	})

	t.Run("Hai lỗi cùng code cùng message là một", func(t *testing.T) {
		a := NewError(ErrCodeValidationInput, "Dữ liệu đầu vào không hợp lệ", StatusBadRequest, nil)
		assert.True(t, errors.Is(a, ErrInvalidInput))
	})

	t.Run("Khác code không match", func(t *testing.T) {
		assert.False(t, errors.Is(ErrNotFound, ErrInvalidInput))
	})
}
