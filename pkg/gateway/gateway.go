// SPDX-License-Identifier: LGPL-3.0-or-later

// Package gateway notifies the external desktop gateway when a VM becomes
// usable. Unlike a delivery manager with retries, this is a fire-once,
// swallow-on-failure client: the gateway is assumed idempotent and a missed
// notification is never the operator's problem to retry.
package gateway

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"cyberdesk-operator/daemon/metrics"
	"cyberdesk-operator/logger"
)

// Client issues readiness notifications to the gateway.
type Client struct {
	baseURL string
	http    *http.Client
	log     logger.Logger
}

// New creates a gateway client. An empty baseURL is valid: NotifyReady then
// logs a warning and does nothing, matching the out-of-cluster "unset gateway
// URL" behavior.
func New(baseURL string, log logger.Logger) *Client {
	return &Client{
		baseURL: baseURL,
		http:    &http.Client{},
		log:     log,
	}
}

// NotifyReady posts the readiness event for instanceID with the given timeout.
// Failures are logged only; they never feed back into the
// reconciler or the caller's control flow.
func (c *Client) NotifyReady(ctx context.Context, instanceID string, timeout time.Duration) {
	if c.baseURL == "" {
		c.log.Warn("gateway base URL unset, skipping readiness notification", "instance", instanceID)
		metrics.RecordGatewayNotification("skipped")
		return
	}

	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	url := fmt.Sprintf("%s/cyberdesk/%s/ready", c.baseURL, instanceID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, nil)
	if err != nil {
		c.log.Error("failed to build readiness notification request", "instance", instanceID, "error", err)
		metrics.RecordGatewayNotification("request_error")
		return
	}

	resp, err := c.http.Do(req)
	if err != nil {
		c.log.Warn("readiness notification failed", "instance", instanceID, "url", url, "error", err)
		metrics.RecordGatewayNotification("failed")
		return
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		c.log.Warn("readiness notification rejected", "instance", instanceID, "status", resp.StatusCode)
		metrics.RecordGatewayNotification("rejected")
		return
	}

	c.log.Info("readiness notification delivered", "instance", instanceID)
	metrics.RecordGatewayNotification("sent")
}
