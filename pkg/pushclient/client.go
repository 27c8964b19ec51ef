/**
 * @description
 * This package provides a client for the push gateway used to deliver device
 * notifications. It encapsulates the logic for making authenticated HTTP
 * requests, building the message payload, and parsing error responses.
 *
 * @dependencies
 * - bytes, context, encoding/json, fmt, net/http, time: Standard Go libraries.
 */
package pushclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// Client is a client for the push gateway API.
type Client struct {
	BaseURL    string
	APIKey     string
	HTTPClient *http.Client
}

// NewClient creates a new push gateway client.
func NewClient(baseURL, apiKey string) *Client {
	return &Client{
		BaseURL: baseURL,
		APIKey:  apiKey,
		HTTPClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

// Message is the payload sent to the push gateway.
type Message struct {
	Token        string       `json:"token"`
	Notification Notification `json:"notification"`
	Webpush      *Webpush     `json:"webpush,omitempty"`
}

// Notification carries the visible title and body of a push message.
type Notification struct {
	Title string `json:"title"`
	Body  string `json:"body"`
}

// Webpush carries web-delivery options, currently just the deep link opened
// when the notification is tapped.
type Webpush struct {
	FCMOptions FCMOptions `json:"fcm_options"`
}

type FCMOptions struct {
	Link string `json:"link"`
}

// SendResponse is the gateway's acknowledgement of an accepted message.
type SendResponse struct {
	Name string `json:"name"`
}

// ErrorResponse represents an error from the push gateway.
type ErrorResponse struct {
	StatusCode int `json:"-"`
	ErrorBody  struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
		Status  string `json:"status"`
	} `json:"error"`
}

func (e *ErrorResponse) Error() string {
	if e.ErrorBody.Message != "" {
		return fmt.Sprintf("push gateway error: %s - %s", e.ErrorBody.Status, e.ErrorBody.Message)
	}
	return fmt.Sprintf("push gateway error: status %d", e.StatusCode)
}

// Send delivers one push message to a device token. The deepLink may be
// empty, in which case no web options are attached.
func (c *Client) Send(ctx context.Context, token, title, body, deepLink string) error {
	msg := Message{
		Token: token,
		Notification: Notification{
			Title: title,
			Body:  body,
		},
	}
	if deepLink != "" {
		msg.Webpush = &Webpush{FCMOptions: FCMOptions{Link: deepLink}}
	}

	payload, err := json.Marshal(struct {
		Message Message `json:"message"`
	}{Message: msg})
	if err != nil {
		return fmt.Errorf("failed to marshal push message: %w", err)
	}

	url := fmt.Sprintf("%s/v1/messages:send", c.BaseURL)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewBuffer(payload))
	if err != nil {
		return fmt.Errorf("failed to build push request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.APIKey)

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return fmt.Errorf("push request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		var ack SendResponse
		// A malformed ack body is not worth failing a delivered push over.
		_ = json.NewDecoder(resp.Body).Decode(&ack)
		return nil
	}

	respBody, _ := io.ReadAll(resp.Body)
	errResp := &ErrorResponse{StatusCode: resp.StatusCode}
	if err := json.Unmarshal(respBody, errResp); err != nil {
		return fmt.Errorf("push gateway returned status %d: %s", resp.StatusCode, string(respBody))
	}
	return errResp
}
