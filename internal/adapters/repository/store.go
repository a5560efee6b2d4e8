// Package repository loads the read-only catalog and provider snapshots.
package repository

import (
	"context"

	"github.com/okian/woke/internal/domain/model"
)

// ProviderSource yields the provider snapshot used by the matcher.
type ProviderSource interface {
	LoadProviders(ctx context.Context) ([]model.Provider, error)
}

// Snapshot is everything the domain needs at startup.
type Snapshot struct {
	Services        []model.ServiceCategory
	Providers       []model.Provider
	DefaultLocation model.Location
}

// Load reads the catalog file and, when providers is non-nil, replaces the
// file's provider list with the one from providers.
func Load(ctx context.Context, file *FileCatalog, providers ProviderSource) (Snapshot, error) {
	snap, err := file.Load(ctx)
	if err != nil {
		return Snapshot{}, err
	}
	if providers == nil {
		return snap, nil
	}
	list, err := providers.LoadProviders(ctx)
	if err != nil {
		return Snapshot{}, err
	}
	snap.Providers = list
	return snap, nil
}
