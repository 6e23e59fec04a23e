package notify

import "net/http"

// Option applies a configuration option to the Client.
type Option func(*Client)

// WithNotificationURL sets the notification-service endpoint. Empty
// disables the sink.
func WithNotificationURL(url string) Option {
	return func(c *Client) {
		c.notificationURL = url
	}
}

// WithReadinessURL sets the readiness analytics endpoint. Empty disables
// the sink.
func WithReadinessURL(url string) Option {
	return func(c *Client) {
		c.readinessURL = url
	}
}

// WithHTTPClient overrides the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.httpClient = hc
		}
	}
}
