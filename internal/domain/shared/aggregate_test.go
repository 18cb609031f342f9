package shared

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestBaseAggregateRoot_StoredVersion(t *testing.T) {
	t.Run("new aggregate was never stored", func(t *testing.T) {
		a := NewBaseAggregateRoot()
		assert.Equal(t, 1, a.GetVersion())
		assert.Equal(t, 0, a.StoredVersion())

		a.MarkStored()
		assert.Equal(t, 1, a.StoredVersion())
	})

	t.Run("restored aggregate starts at its stored version", func(t *testing.T) {
		a := RestoreBaseAggregateRoot(BaseEntity{ID: uuid.New()}, 4)
		assert.Equal(t, 4, a.GetVersion())
		assert.Equal(t, 4, a.StoredVersion())

		a.IncrementVersion()
		a.IncrementVersion()
		assert.Equal(t, 6, a.GetVersion())
		assert.Equal(t, 4, a.StoredVersion())

		a.MarkStored()
		assert.Equal(t, 6, a.StoredVersion())
	})
}
