// Package discord is a minimal Discord webhook client.
package discord

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/hashicorp/go-retryablehttp"

	log "github.com/sirupsen/logrus"
)

// Client posts messages to a single configured webhook. Rate-limit backoff is
// handled by the retrying HTTP transport, not here.
type Client struct {
	webhookURL string
	HTTPClient *retryablehttp.Client
}

func NewClient(webhookURL string) *Client {
	httpClient := retryablehttp.NewClient()
	httpClient.RetryMax = 3
	httpClient.Logger = log.StandardLogger()

	return &Client{
		webhookURL: webhookURL,
		HTTPClient: httpClient,
	}
}

// Execute delivers the message to the webhook, fire-and-forget from the
// caller's perspective.
func (c Client) Execute(message Message) error {
	reqBody, err := json.Marshal(message)
	if err != nil {
		return err
	}

	req, err := retryablehttp.NewRequest(http.MethodPost, c.webhookURL, reqBody)
	if err != nil {
		return err
	}
	req.Header.Add("Content-Type", "application/json")

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		respBody, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("webhook returned %s: %s", resp.Status, respBody)
	}

	return nil
}
