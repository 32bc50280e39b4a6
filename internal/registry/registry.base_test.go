package registry

import (
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestRegistry kiểm tra các thao tác cơ bản của registry
func TestRegistry(t *testing.T) {
	t.Run("Register và Get", func(t *testing.T) {
		r := NewRegistry[int]()

		isNew, err := r.Register("a", 1)
		require.NoError(t, err)
		assert.True(t, isNew)

		got, exists := r.Get("a")
		assert.True(t, exists)
		assert.Equal(t, 1, got)

		_, exists = r.Get("missing")
		assert.False(t, exists)
	})

	t.Run("Register trùng tên ghi đè", func(t *testing.T) {
		r := NewRegistry[int]()
		r.Register("a", 1)

		isNew, err := r.Register("a", 2)
		require.NoError(t, err)
		assert.False(t, isNew)

		got, _ := r.Get("a")
		assert.Equal(t, 2, got)
	})

	t.Run("Register tên rỗng trả lỗi", func(t *testing.T) {
		r := NewRegistry[int]()
		_, err := r.Register("", 1)
		assert.Error(t, err)
	})

	t.Run("GetOrCreate chỉ gọi creator một lần", func(t *testing.T) {
		r := NewRegistry[int]()
		calls := 0
		creator := func() (int, error) {
			calls++
			return 42, nil
		}

		got, err := r.GetOrCreate("a", creator)
		require.NoError(t, err)
		assert.Equal(t, 42, got)

		got, err = r.GetOrCreate("a", creator)
		require.NoError(t, err)
		assert.Equal(t, 42, got)
		assert.Equal(t, 1, calls)
	})

	t.Run("GetOrCreate propagate lỗi của creator", func(t *testing.T) {
		r := NewRegistry[int]()
		_, err := r.GetOrCreate("a", func() (int, error) {
			return 0, errors.New("boom")
		})
		require.Error(t, err)
		assert.Equal(t, 0, r.Len())
	})

	t.Run("Truy cập đồng thời an toàn", func(t *testing.T) {
		r := NewRegistry[int]()
		var wg sync.WaitGroup
		for i := 0; i < 50; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				r.GetOrCreate("shared", func() (int, error) { return 7, nil })
				r.Get("shared")
			}()
		}
		wg.Wait()

		got, exists := r.Get("shared")
		assert.True(t, exists)
		assert.Equal(t, 7, got)
		assert.Equal(t, 1, r.Len())
	})
}
