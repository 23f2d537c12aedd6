package otp

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"
)

const (
	DefaultWhatsAppURL = "https://superfast.akst.in/api/v1.0"
	otpTemplate        = "otpforcustomer"
)

// WhatsAppSender delivers codes through a WhatsApp Business messages endpoint
// using the "otpforcustomer" template. The code fills both the body parameter
// and the copy-code URL button.
type WhatsAppSender struct {
	APIURL        string
	APIKey        string
	CountryCode   string
	// PhoneNumberID selects the sending number on Cloud API style gateways,
	// which expect {APIURL}/{PhoneNumberID}/messages.
	PhoneNumberID string
	HTTPClient    *http.Client
}

func NewWhatsAppSender(apiURL, apiKey, countryCode string) *WhatsAppSender {
	if apiURL == "" {
		apiURL = DefaultWhatsAppURL
	}
	return &WhatsAppSender{
		APIURL:      strings.TrimRight(apiURL, "/"),
		APIKey:      apiKey,
		CountryCode: strings.TrimPrefix(countryCode, "+"),
		HTTPClient:  &http.Client{Timeout: 10 * time.Second},
	}
}

type templateParam struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

type templateComponent struct {
	Type       string          `json:"type"`
	SubType    string          `json:"sub_type,omitempty"`
	Index      string          `json:"index,omitempty"`
	Parameters []templateParam `json:"parameters"`
}

type whatsAppMessage struct {
	MessagingProduct string `json:"messaging_product"`
	RecipientType    string `json:"recipient_type"`
	To               string `json:"to"`
	Type             string `json:"type"`
	Template         struct {
		Name     string `json:"name"`
		Language struct {
			Code string `json:"code"`
		} `json:"language"`
		Components []templateComponent `json:"components"`
	} `json:"template"`
}

func (w *WhatsAppSender) Send(ctx context.Context, phone, code string) error {
	if w.APIKey == "" {
		return fmt.Errorf("whatsapp API credentials not configured")
	}

	msg := whatsAppMessage{
		MessagingProduct: "whatsapp",
		RecipientType:    "individual",
		To:               w.CountryCode + strings.TrimPrefix(phone, "+"),
		Type:             "template",
	}
	msg.Template.Name = otpTemplate
	msg.Template.Language.Code = "en"
	msg.Template.Components = []templateComponent{
		{Type: "body", Parameters: []templateParam{{Type: "text", Text: code}}},
		{Type: "button", SubType: "url", Index: "0", Parameters: []templateParam{{Type: "text", Text: code}}},
	}

	body, err := json.Marshal(msg)
	if err != nil {
		return err
	}

	endpoint := w.APIURL + "/messages"
	if w.PhoneNumberID != "" {
		endpoint = w.APIURL + "/" + w.PhoneNumberID + "/messages"
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+w.APIKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := w.HTTPClient.Do(req)
	if err != nil {
		return fmt.Errorf("whatsapp request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		text, _ := io.ReadAll(io.LimitReader(resp.Body, 4<<10))
		return fmt.Errorf("failed to send WhatsApp message: %d %s", resp.StatusCode, strings.TrimSpace(string(text)))
	}
	return nil
}

// LogSender writes the code to the log instead of sending it. Development only.
type LogSender struct {
	Logger *zap.Logger
}

func (l LogSender) Send(ctx context.Context, phone, code string) error {
	l.Logger.Info("otp code (not sent)", zap.String("phone", phone), zap.String("code", code))
	return nil
}
