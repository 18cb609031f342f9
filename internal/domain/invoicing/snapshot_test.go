package invoicing

import (
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type einValidator struct{}

var einPattern = regexp.MustCompile(`^\d{2}-\d{7}$`)

func (einValidator) ValidateTaxIDFormat(country, field, value string) bool {
	return country == "US" && field == "ein" && einPattern.MatchString(value)
}

func TestCompareSnapshots(t *testing.T) {
	t.Run("identical snapshots", func(t *testing.T) {
		changes := CompareSnapshots(testSnapshot(), testSnapshot())
		assert.NotNil(t, changes)
		assert.Empty(t, changes)
	})

	t.Run("nil and empty tax ids are equal", func(t *testing.T) {
		a, b := testSnapshot(), testSnapshot()
		a.TaxIDs = nil
		b.TaxIDs = map[string]string{}
		assert.Empty(t, CompareSnapshots(a, b))
	})

	t.Run("field changes", func(t *testing.T) {
		updated := testSnapshot()
		updated.Email = "ap@acme.test"
		updated.Address.City = "Chicago"

		changes := CompareSnapshots(testSnapshot(), updated)
		assert.Equal(t, []SnapshotChange{
			{Field: "email", OldValue: "billing@acme.test", NewValue: "ap@acme.test"},
			{Field: "address.city", OldValue: "Springfield", NewValue: "Chicago"},
		}, changes)
	})

	t.Run("tax id added changed and removed", func(t *testing.T) {
		old := testSnapshot()
		old.TaxIDs = map[string]string{"ein": "12-3456789", "vat": "GB123"}
		updated := testSnapshot()
		updated.TaxIDs = map[string]string{"ein": "98-7654321", "duns": "150483782"}

		changes := CompareSnapshots(old, updated)
		assert.Equal(t, []SnapshotChange{
			{Field: "taxIds.duns", OldValue: "", NewValue: "150483782"},
			{Field: "taxIds.ein", OldValue: "12-3456789", NewValue: "98-7654321"},
			{Field: "taxIds.vat", OldValue: "GB123", NewValue: ""},
		}, changes)
	})
}

func TestAnnotateTaxIDChanges(t *testing.T) {
	changes := []SnapshotChange{
		{Field: "name", OldValue: "a", NewValue: "b"},
		{Field: "taxIds.ein", OldValue: "", NewValue: "12-3456789"},
		{Field: "taxIds.vat", OldValue: "GB123", NewValue: ""},
		{Field: "taxIds.duns", OldValue: "", NewValue: "x"},
	}

	AnnotateTaxIDChanges(changes, "US", einValidator{})

	assert.Nil(t, changes[0].FormatValid)
	require.NotNil(t, changes[1].FormatValid)
	assert.True(t, *changes[1].FormatValid)
	assert.Nil(t, changes[2].FormatValid, "removed ids are not validated")
	require.NotNil(t, changes[3].FormatValid)
	assert.False(t, *changes[3].FormatValid)

	t.Run("nil validator leaves changes alone", func(t *testing.T) {
		c := []SnapshotChange{{Field: "taxIds.ein", NewValue: "1"}}
		AnnotateTaxIDChanges(c, "US", nil)
		assert.Nil(t, c[0].FormatValid)
	})
}

func TestSyncSnapshot(t *testing.T) {
	t.Run("unchanged", func(t *testing.T) {
		inv := createTestInvoice(t, "10")
		entry, err := SyncSnapshot(&inv.Document, testSnapshot(), ReasonCustomerUpdate, "alice", nil)
		require.NoError(t, err)
		assert.Nil(t, entry)
		assert.Equal(t, 1, inv.Version)
	})

	t.Run("rewrites draft and returns audit entry", func(t *testing.T) {
		inv := createTestInvoice(t, "10")
		current := testSnapshot()
		current.Name = "Acme Holdings"
		current.TaxIDs["ein"] = "bad"

		entry, err := SyncSnapshot(&inv.Document, current, ReasonCustomerUpdate, "alice", einValidator{})
		require.NoError(t, err)
		require.NotNil(t, entry)

		assert.Equal(t, "Acme Holdings", inv.Customer.Name)
		assert.Equal(t, 2, inv.Version)

		assert.Equal(t, inv.ID, entry.DocumentID)
		assert.Equal(t, DocumentTypeInvoice, entry.DocumentType)
		assert.Equal(t, "INV-0001", entry.DocumentNumber)
		assert.Equal(t, inv.TenantID, entry.TenantID)
		assert.Equal(t, ReasonCustomerUpdate, entry.Reason)
		assert.Equal(t, "alice", entry.UpdatedBy)
		assert.Equal(t, "Acme Corp", entry.OldSnapshot.Name)
		assert.Equal(t, "Acme Holdings", entry.NewSnapshot.Name)
		require.Len(t, entry.Changes, 2)
		assert.Equal(t, "name", entry.Changes[0].Field)
		require.NotNil(t, entry.Changes[1].FormatValid)
		assert.False(t, *entry.Changes[1].FormatValid)

		// the stored snapshot does not alias the caller's map
		current.TaxIDs["ein"] = "other"
		assert.Equal(t, "bad", inv.Customer.TaxIDs["ein"])
		assert.Equal(t, "bad", entry.NewSnapshot.TaxIDs["ein"])
	})

	t.Run("sent documents are frozen", func(t *testing.T) {
		inv := createTestInvoice(t, "10")
		require.NoError(t, inv.Send())
		current := testSnapshot()
		current.Name = "Other"

		entry, err := SyncSnapshot(&inv.Document, current, ReasonManualRefresh, "alice", nil)
		assert.ErrorIs(t, err, ErrDocumentNotDraft)
		assert.Nil(t, entry)
		assert.Equal(t, "Acme Corp", inv.Customer.Name)
	})
}
