package invoicestore

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"github.com/AntonStoeckl/storefront-orders/orderstore"
)

var (
	ErrNotAPDF              = errors.New("invoice is not a PDF document")
	ErrInvoiceTooLarge      = errors.New("invoice exceeds the size limit")
	ErrStoringInvoiceFailed = errors.New("storing invoice failed")
)

var pdfMagic = []byte("%PDF-")

const defaultMaxBytes int64 = 10 << 20

// FileStorage stores one invoice document for an order and returns its public URL.
type FileStorage interface {
	Store(ctx context.Context, orderID string, content io.Reader) (string, error)
}

// LocalStorage writes invoices into a directory served under a public base URL.
type LocalStorage struct {
	dir      string
	baseURL  string
	maxBytes int64
	logger   orderstore.Logger
}

type Option func(*LocalStorage)

// WithMaxBytes limits the accepted document size.
func WithMaxBytes(n int64) Option {
	return func(s *LocalStorage) {
		if n > 0 {
			s.maxBytes = n
		}
	}
}

func WithLogger(l orderstore.Logger) Option {
	return func(s *LocalStorage) {
		s.logger = l
	}
}

// NewLocalStorage creates dir if needed.
func NewLocalStorage(dir, baseURL string, opts ...Option) (*LocalStorage, error) {
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return nil, fmt.Errorf("creating invoice directory: %w", err)
	}

	s := &LocalStorage{
		dir:      dir,
		baseURL:  strings.TrimRight(baseURL, "/"),
		maxBytes: defaultMaxBytes,
	}

	for _, opt := range opts {
		opt(s)
	}

	return s, nil
}

// Store checks the PDF signature, writes the document to a temporary file, and renames it into
// place so a reader never sees a partial file. The name is facture-<orderID>-<random>.pdf.
func (s *LocalStorage) Store(ctx context.Context, orderID string, content io.Reader) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", errors.Join(ErrStoringInvoiceFailed, err)
	}

	buffered := bufio.NewReader(content)

	head, err := buffered.Peek(len(pdfMagic))
	if err != nil || !bytes.Equal(head, pdfMagic) {
		return "", ErrNotAPDF
	}

	tmp, err := os.CreateTemp(s.dir, ".upload-*")
	if err != nil {
		return "", errors.Join(ErrStoringInvoiceFailed, err)
	}

	cleanup := func() {
		_ = tmp.Close()
		_ = os.Remove(tmp.Name())
	}

	written, err := io.Copy(tmp, io.LimitReader(buffered, s.maxBytes+1))
	if err != nil {
		cleanup()
		return "", errors.Join(ErrStoringInvoiceFailed, err)
	}

	if written > s.maxBytes {
		cleanup()
		return "", ErrInvoiceTooLarge
	}

	if err = tmp.Close(); err != nil {
		_ = os.Remove(tmp.Name())
		return "", errors.Join(ErrStoringInvoiceFailed, err)
	}

	name := fmt.Sprintf("facture-%s-%s.pdf", sanitize(orderID), uuid.NewString()[:8])

	if err = os.Rename(tmp.Name(), filepath.Join(s.dir, name)); err != nil {
		_ = os.Remove(tmp.Name())
		return "", errors.Join(ErrStoringInvoiceFailed, err)
	}

	if s.logger != nil {
		s.logger.Info("invoice stored", "order_id", orderID, "file", name, "bytes", written)
	}

	return s.baseURL + "/" + name, nil
}

// Dir is the directory the HTTP layer serves under the public base URL.
func (s *LocalStorage) Dir() string {
	return s.dir
}

func sanitize(id string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-':
			return r
		default:
			return '_'
		}
	}, id)
}
