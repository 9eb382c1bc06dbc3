package twilio

import (
	"fmt"
	"strings"
	"time"

	twilio "github.com/twilio/twilio-go"
	openapi "github.com/twilio/twilio-go/rest/api/v2010"
)

// Client wraps Twilio SMS sending for reminder alerts.
type Client struct {
	client     *twilio.RestClient
	fromNumber string
}

// New creates a Twilio client bound to the configured sender number. A short
// request timeout keeps an unreachable provider from stalling a scheduler
// worker.
func New(accountSID, authToken, fromNumber string) *Client {
	rest := twilio.NewRestClientWithParams(twilio.ClientParams{Username: accountSID, Password: authToken})
	rest.SetTimeout(10 * time.Second)
	return &Client{
		client:     rest,
		fromNumber: fromNumber,
	}
}

// SendSMS sends a text message via Twilio's API.
func (c *Client) SendSMS(to, body string) error {
	if c.client == nil {
		return fmt.Errorf("twilio client not initialised")
	}

	sender := normalizeNumber(c.fromNumber)
	if sender == "" {
		return fmt.Errorf("twilio sender number is not configured")
	}

	recipient := normalizeNumber(to)
	if recipient == "" {
		return fmt.Errorf("recipient number missing or invalid")
	}

	params := &openapi.CreateMessageParams{}
	params.SetTo(recipient)
	params.SetFrom(sender)
	params.SetBody(body)

	if _, err := c.client.Api.CreateMessage(params); err != nil {
		return fmt.Errorf("twilio send message error: %w", err)
	}
	return nil
}

func normalizeNumber(number string) string {
	trimmed := strings.TrimSpace(number)
	if trimmed == "" {
		return ""
	}
	if strings.HasPrefix(trimmed, "+") {
		return trimmed
	}
	return "+" + trimmed
}
