package invoicestore_test

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AntonStoeckl/storefront-orders/storefront/invoicestore"
)

func Test_LocalStorage_Store_WritesPDFAndReturnsURL(t *testing.T) {
	// arrange
	dir := t.TempDir()
	storage, err := invoicestore.NewLocalStorage(dir, "https://cdn.example.dz/factures/")
	require.NoError(t, err)

	// act
	url, err := storage.Store(context.Background(), "0190-abc", strings.NewReader("%PDF-1.7 invoice body"))

	// assert
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(url, "https://cdn.example.dz/factures/facture-0190-abc-"))
	assert.True(t, strings.HasSuffix(url, ".pdf"))

	content, err := os.ReadFile(filepath.Join(dir, filepath.Base(url)))
	require.NoError(t, err)
	assert.Equal(t, "%PDF-1.7 invoice body", string(content))
}

func Test_LocalStorage_Store_RejectsInvalidDocuments(t *testing.T) {
	dir := t.TempDir()
	storage, err := invoicestore.NewLocalStorage(dir, "/factures", invoicestore.WithMaxBytes(16))
	require.NoError(t, err)

	_, err = storage.Store(context.Background(), "o1", strings.NewReader("<html>"))
	assert.ErrorIs(t, err, invoicestore.ErrNotAPDF)

	_, err = storage.Store(context.Background(), "o1", strings.NewReader("%PDF-"+strings.Repeat("x", 32)))
	assert.ErrorIs(t, err, invoicestore.ErrInvoiceTooLarge)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries, "rejected uploads leave no files behind")
}

func Test_LocalStorage_Store_SanitizesOrderID(t *testing.T) {
	dir := t.TempDir()
	storage, err := invoicestore.NewLocalStorage(dir, "/factures")
	require.NoError(t, err)

	url, err := storage.Store(context.Background(), "../../etc", strings.NewReader("%PDF-1.4"))

	require.NoError(t, err)
	assert.NotContains(t, strings.TrimPrefix(url, "/factures/"), "/")
}
