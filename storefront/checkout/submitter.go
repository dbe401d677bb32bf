package checkout

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"
	"time"

	jsoniter "github.com/json-iterator/go"
)

const (
	ordersPath        = "/api/commandes"
	invoiceField      = "facture"
	defaultHTTPTimeout = 30 * time.Second
	maxResponseBytes  = 1 << 20
)

var (
	// ErrSubmittingOrderFailed is returned when the order API could not be reached or answered garbage.
	ErrSubmittingOrderFailed = errors.New("submitting the order failed")

	// ErrSubmissionRejected is returned when the order API answered with an error envelope.
	ErrSubmissionRejected = errors.New("order submission was rejected")
)

// SubmitResult is the part of the created order the checkout needs to show a confirmation.
type SubmitResult struct {
	OrderID    string `json:"id"`
	Status     string `json:"statut"`
	Total      int64  `json:"total"`
	InvoiceURL string `json:"facture_url"`
}

// RejectionError carries the error envelope of a rejected submission.
type RejectionError struct {
	StatusCode int
	Message    string
	Fields     map[string]string
}

func (e *RejectionError) Error() string {
	return fmt.Sprintf("%s: %d %s", ErrSubmissionRejected.Error(), e.StatusCode, e.Message)
}

func (e *RejectionError) Is(target error) bool {
	return target == ErrSubmissionRejected
}

type responseEnvelope struct {
	Success bool              `json:"success"`
	Message string            `json:"message"`
	Data    SubmitResult      `json:"data"`
	Errors  map[string]string `json:"erreurs"`
}

// Submitter posts submissions as multipart forms to the order API.
type Submitter struct {
	baseURL string
	client  *http.Client
}

// SubmitterOption configures a Submitter.
type SubmitterOption func(*Submitter)

// WithHTTPClient replaces the default client with a 30s timeout.
func WithHTTPClient(client *http.Client) SubmitterOption {
	return func(s *Submitter) {
		s.client = client
	}
}

// NewSubmitter creates a Submitter for the API at baseURL, e.g. "https://boutique.example.dz".
func NewSubmitter(baseURL string, opts ...SubmitterOption) Submitter {
	s := Submitter{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: defaultHTTPTimeout},
	}

	for _, opt := range opts {
		opt(&s)
	}

	return s
}

// Submit sends the submission. An empty bearerToken submits as a guest.
func (s Submitter) Submit(ctx context.Context, submission Submission, bearerToken string) (SubmitResult, error) {
	body, contentType, err := encodeMultipart(submission)
	if err != nil {
		return SubmitResult{}, errors.Join(ErrSubmittingOrderFailed, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.baseURL+ordersPath, body)
	if err != nil {
		return SubmitResult{}, errors.Join(ErrSubmittingOrderFailed, err)
	}

	req.Header.Set("Content-Type", contentType)
	req.Header.Set("Accept", "application/json")

	if bearerToken != "" {
		req.Header.Set("Authorization", "Bearer "+bearerToken)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return SubmitResult{}, errors.Join(ErrSubmittingOrderFailed, err)
	}
	defer func() { _ = resp.Body.Close() }()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return SubmitResult{}, errors.Join(ErrSubmittingOrderFailed, err)
	}

	var envelope responseEnvelope
	if err = jsoniter.ConfigFastest.Unmarshal(raw, &envelope); err != nil {
		return SubmitResult{}, errors.Join(ErrSubmittingOrderFailed, fmt.Errorf("status %d: %w", resp.StatusCode, err))
	}

	if resp.StatusCode >= http.StatusBadRequest || !envelope.Success {
		return SubmitResult{}, &RejectionError{
			StatusCode: resp.StatusCode,
			Message:    envelope.Message,
			Fields:     envelope.Errors,
		}
	}

	return envelope.Data, nil
}

func encodeMultipart(submission Submission) (io.Reader, string, error) {
	buf := &bytes.Buffer{}
	w := multipart.NewWriter(buf)

	articles, err := jsoniter.ConfigFastest.Marshal(submission.Lines)
	if err != nil {
		return nil, "", err
	}

	fields := [][2]string{
		{"nom_complet", submission.Customer.FullName},
		{"email", submission.Customer.Email},
		{"telephone", submission.Customer.Phone},
		{"adresse", submission.Customer.Address},
		{"ville", submission.Customer.City},
		{"wilaya", submission.Region},
		{"methode_livraison", string(submission.Method)},
		{"vitesse_livraison", string(submission.Speed)},
		{"sous_total", strconv.FormatInt(submission.Subtotal, 10)},
		{"frais_livraison", strconv.FormatInt(submission.DeliveryFee, 10)},
		{"total", strconv.FormatInt(submission.Total, 10)},
		{"articles", string(articles)},
	}

	if submission.Customer.Notes != nil {
		fields = append(fields, [2]string{"notes", *submission.Customer.Notes})
	}

	for _, f := range fields {
		if err = w.WriteField(f[0], f[1]); err != nil {
			return nil, "", err
		}
	}

	if submission.Invoice != nil {
		part, partErr := w.CreateFormFile(invoiceField, submission.Invoice.FileName)
		if partErr != nil {
			return nil, "", partErr
		}

		if _, err = part.Write(submission.Invoice.Content); err != nil {
			return nil, "", err
		}
	}

	if err = w.Close(); err != nil {
		return nil, "", err
	}

	return buf, w.FormDataContentType(), nil
}
