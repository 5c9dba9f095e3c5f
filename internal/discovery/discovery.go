// Package discovery advertises a running pipeline host on the local
// network via mDNS/DNS-SD, so control software (a Python notebook, a lab
// dashboard) can find the right machine without a hardcoded address.
// Purely ambient infrastructure: it has no bearing on filter/detector/
// trigger semantics.
package discovery

import (
	"context"
	"fmt"

	"github.com/brutella/dnssd"
)

// Advertisement holds the running responder for a single announced
// instance; call Stop to withdraw it.
type Advertisement struct {
	cancel context.CancelFunc
}

// Announce publishes a _dnbcore._tcp service named instanceName on port,
// so hosts on the LAN can discover this processor's control endpoint.
func Announce(instanceName string, port int) (*Advertisement, error) {
	cfg := dnssd.Config{
		Name:   instanceName,
		Type:   "_dnbcore._tcp",
		Domain: "local",
		Port:   port,
	}

	service, err := dnssd.NewService(cfg)
	if err != nil {
		return nil, fmt.Errorf("discovery: new service: %w", err)
	}

	responder, err := dnssd.NewResponder()
	if err != nil {
		return nil, fmt.Errorf("discovery: new responder: %w", err)
	}
	if _, err := responder.Add(service); err != nil {
		return nil, fmt.Errorf("discovery: add service: %w", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		_ = responder.Respond(ctx)
	}()

	return &Advertisement{cancel: cancel}, nil
}

// Stop withdraws the advertisement.
func (a *Advertisement) Stop() {
	a.cancel()
}
