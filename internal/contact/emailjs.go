package contact

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"inserview.studio/web/internal/config"
)

const defaultTimeout = 8 * time.Second

// EmailJS sends template emails through the EmailJS REST API.
type EmailJS struct {
	baseURL    string
	serviceID  string
	templateID string
	publicKey  string
	privateKey string
	http       *http.Client
}

// EmailJSOption customises the client.
type EmailJSOption func(*EmailJS)

// WithHTTPClient swaps the HTTP client used for delivery.
func WithHTTPClient(c *http.Client) EmailJSOption {
	return func(e *EmailJS) {
		if c != nil {
			e.http = c
		}
	}
}

// NewEmailJS builds a client from the contact configuration.
func NewEmailJS(cfg config.ContactConfig, opts ...EmailJSOption) *EmailJS {
	e := &EmailJS{
		baseURL:    strings.TrimRight(strings.TrimSpace(cfg.EmailJSBaseURL), "/"),
		serviceID:  strings.TrimSpace(cfg.ServiceID),
		templateID: strings.TrimSpace(cfg.TemplateID),
		publicKey:  strings.TrimSpace(cfg.PublicKey),
		privateKey: strings.TrimSpace(cfg.PrivateKey),
		http:       &http.Client{Timeout: defaultTimeout},
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Configured reports whether the service, template and public key are set.
func (e *EmailJS) Configured() bool {
	return e != nil && e.baseURL != "" && e.serviceID != "" && e.templateID != "" && e.publicKey != ""
}

type sendRequest struct {
	ServiceID      string         `json:"service_id"`
	TemplateID     string         `json:"template_id"`
	UserID         string         `json:"user_id"`
	AccessToken    string         `json:"accessToken,omitempty"`
	TemplateParams TemplateParams `json:"template_params"`
}

// Send delivers one message.
func (e *EmailJS) Send(ctx context.Context, params TemplateParams) error {
	if !e.Configured() {
		return ErrNotConfigured
	}
	endpoint, err := url.JoinPath(e.baseURL, "api", "v1.0", "email", "send")
	if err != nil {
		return err
	}
	payload, err := json.Marshal(sendRequest{
		ServiceID:      e.serviceID,
		TemplateID:     e.templateID,
		UserID:         e.publicKey,
		AccessToken:    e.privateKey,
		TemplateParams: params,
	})
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := e.http.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrDelivery, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 400 {
		return fmt.Errorf("%w: status %d: %s", ErrDelivery, resp.StatusCode, drainError(resp.Body))
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	return nil
}

func drainError(r io.Reader) string {
	if r == nil {
		return ""
	}
	b, _ := io.ReadAll(io.LimitReader(r, 256))
	return strings.TrimSpace(string(b))
}
