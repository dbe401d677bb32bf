// Package invoicestore stores invoice PDFs and returns the URL under which they are served.
package invoicestore
