// Package twilio sends WhatsApp messages through the Twilio REST API and
// renders TwiML replies for the inbound webhook.
package twilio

import (
	"context"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	twilio "github.com/twilio/twilio-go"
	openapi "github.com/twilio/twilio-go/rest/api/v2010"
)

var (
	// ErrClientNotInitialised is returned when credentials were not configured.
	ErrClientNotInitialised = errors.New("twilio client not initialised")
	// ErrInvalidRecipient is returned for an empty recipient number.
	ErrInvalidRecipient = errors.New("recipient number missing or invalid")
)

// messageCreator is the subset of the Twilio REST API used by Client.
type messageCreator interface {
	CreateMessage(params *openapi.CreateMessageParams) (*openapi.ApiV2010Message, error)
}

// Client wraps Twilio messaging bound to one WhatsApp sender number.
type Client struct {
	api          messageCreator
	fromWhatsApp string
}

// New creates a Twilio client bound to the configured WhatsApp sender number.
// Without credentials the client is inert and every send fails.
func New(accountSID, authToken, fromWhatsApp string) *Client {
	if accountSID == "" || authToken == "" {
		return &Client{fromWhatsApp: fromWhatsApp}
	}
	rest := twilio.NewRestClientWithParams(twilio.ClientParams{Username: accountSID, Password: authToken})
	return &Client{api: rest.Api, fromWhatsApp: fromWhatsApp}
}

// SendWhatsAppMessage sends body to the given number and returns the message SID.
func (c *Client) SendWhatsAppMessage(ctx context.Context, to, body string) (string, error) {
	if c.api == nil {
		return "", ErrClientNotInitialised
	}

	sender := NormalizeWhatsAppAddress(c.fromWhatsApp)
	if sender == "" {
		return "", errors.New("twilio sender WhatsApp number is not configured")
	}
	recipient := NormalizeWhatsAppAddress(to)
	if recipient == "" {
		return "", ErrInvalidRecipient
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}

	params := &openapi.CreateMessageParams{}
	params.SetTo(recipient)
	params.SetFrom(sender)
	params.SetBody(body)

	resp, err := c.api.CreateMessage(params)
	if err != nil {
		return "", fmt.Errorf("twilio send message: %w", err)
	}

	var sid string
	if resp != nil && resp.Sid != nil {
		sid = *resp.Sid
	}
	slog.DebugContext(ctx, "twilio message sent", "to", recipient, "sid", sid)
	return sid, nil
}

// NormalizeWhatsAppAddress prefixes a phone number with the whatsapp: scheme.
func NormalizeWhatsAppAddress(number string) string {
	trimmed := strings.TrimSpace(number)
	if trimmed == "" {
		return ""
	}
	if strings.HasPrefix(trimmed, "whatsapp:") {
		return trimmed
	}
	if strings.HasPrefix(trimmed, "+") {
		return "whatsapp:" + trimmed
	}
	return "whatsapp:+" + trimmed
}

// SanitizeWhatsAppNumber strips the whatsapp: scheme Twilio puts on inbound numbers.
func SanitizeWhatsAppNumber(from string) string {
	return strings.TrimPrefix(strings.TrimSpace(from), "whatsapp:")
}

type twimlResponse struct {
	XMLName xml.Name `xml:"Response"`
	Message string   `xml:"Message"`
}

// WriteTwiML encodes message as a TwiML reply.
func WriteTwiML(w io.Writer, message string) error {
	if _, err := io.WriteString(w, xml.Header); err != nil {
		return err
	}
	if err := xml.NewEncoder(w).Encode(twimlResponse{Message: message}); err != nil {
		return fmt.Errorf("encode twiml: %w", err)
	}
	return nil
}
