package shared

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFilter_Offset(t *testing.T) {
	tests := []struct {
		name   string
		filter Filter
		want   int
	}{
		{"first page", Filter{Page: 1, PageSize: 20}, 0},
		{"third page", Filter{Page: 3, PageSize: 25}, 50},
		{"unset paging", Filter{}, 0},
		{"negative page", Filter{Page: -2, PageSize: 10}, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.filter.Offset())
		})
	}
}

func TestFilter_Normalized(t *testing.T) {
	f := Filter{OrderBy: "number"}.Normalized()

	assert.Equal(t, DefaultPage, f.Page)
	assert.Equal(t, DefaultPageSize, f.PageSize)
	assert.Equal(t, "number", f.OrderBy)
}

func TestDefaultFilter(t *testing.T) {
	f := DefaultFilter()

	assert.Equal(t, 1, f.Page)
	assert.Equal(t, 20, f.PageSize)
	assert.Equal(t, "created_at", f.OrderBy)
	assert.Equal(t, "desc", f.OrderDir)
	assert.NotNil(t, f.Filters)
}

func TestNewPaginated(t *testing.T) {
	t.Run("partial last page", func(t *testing.T) {
		p := NewPaginated([]string{"a", "b"}, 45, 3, 20)
		assert.Equal(t, 3, p.TotalPages)
		assert.Len(t, p.Items, 2)
	})

	t.Run("exact pages", func(t *testing.T) {
		assert.Equal(t, 2, NewPaginated([]int{}, 40, 1, 20).TotalPages)
	})

	t.Run("empty result keeps a non-nil slice", func(t *testing.T) {
		p := NewPaginated[int](nil, 0, 1, 20)
		assert.NotNil(t, p.Items)
		assert.Equal(t, 0, p.TotalPages)
	})

	t.Run("zero page size", func(t *testing.T) {
		assert.Equal(t, 0, NewPaginated([]int{1}, 1, 1, 0).TotalPages)
	})
}
