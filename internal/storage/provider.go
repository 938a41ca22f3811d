// Package storage defines the interface for mirroring the finished team
// snapshot to blob storage. Concrete providers live in the local and gcs
// sub-packages so the scraper does not depend on a specific backend.
package storage

import (
	"context"
	"errors"
	"fmt"
)

// Provider uploads a complete object, replacing any previous version.
type Provider interface {
	Save(ctx context.Context, objectName string, data []byte) error
}

// NoOpProvider discards everything. It is used when no mirror is configured.
type NoOpProvider struct{}

// Save for NoOpProvider does nothing and always returns nil.
func (NoOpProvider) Save(_ context.Context, _ string, _ []byte) error {
	return nil
}

// Multi fans a single Save out to several providers. Every provider is
// attempted; failures are joined.
type Multi []Provider

// Save writes data to each provider in order.
func (m Multi) Save(ctx context.Context, objectName string, data []byte) error {
	var errs []error
	for _, p := range m {
		if err := p.Save(ctx, objectName, data); err != nil {
			errs = append(errs, fmt.Errorf("mirror %T: %w", p, err))
		}
	}
	return errors.Join(errs...)
}
