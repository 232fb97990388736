// SPDX-License-Identifier: LGPL-3.0-or-later

// Package operator wires the reconciler and its watchers against explicit
// dependencies instead of package-level singletons for the Kubernetes client
// and external-store client.
package operator

import (
	"sigs.k8s.io/controller-runtime/pkg/client"

	"cyberdesk-operator/logger"
	"cyberdesk-operator/pkg/config"
	"cyberdesk-operator/pkg/gateway"
	"cyberdesk-operator/pkg/store"
)

// Context bundles everything a handler needs to do its job: the Kubernetes
// client, the external status store, the gateway notifier, resolved
// configuration, and a logger. It is constructed once in main and passed by
// reference to every controller at setup time; nothing here is global.
type Context struct {
	Client client.Client
	Store  store.Store
	Gateway *gateway.Client
	Config *config.Config
	Log     logger.Logger
}

// Close tears down the resources the context owns. Called once at shutdown.
func (c *Context) Close() {
	if c.Store != nil {
		c.Store.Close()
	}
}
