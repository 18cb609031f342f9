package company

import (
	"testing"

	"github.com/invoicing/backend/internal/domain/shared/valueobject"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewCompany(t *testing.T) {
	t.Run("starts every counter at one", func(t *testing.T) {
		c, err := NewCompany("Acme Billing Ltd", valueobject.EUR)

		require.NoError(t, err)
		assert.Equal(t, NewCounters(), c.Counters)
		assert.Equal(t, int64(1), c.Counters.NextCreditNoteNumber)
		assert.Equal(t, c.ID, c.TenantID())
		assert.Equal(t, valueobject.EUR, c.DefaultCurrency)
	})

	t.Run("rejects empty name", func(t *testing.T) {
		_, err := NewCompany(" ", valueobject.USD)
		assert.Error(t, err)
	})

	t.Run("rejects unknown currency", func(t *testing.T) {
		_, err := NewCompany("Acme", "ABC")
		assert.Error(t, err)
	})
}
