package importer

import (
	"context"

	"github.com/Yaro-bit/SimpleSalesman/internal/model"
)

// Store is the persistence contract of the import pipeline. Batch saves
// assign generated identifiers back onto the passed entities.
type Store interface {
	FindAllRegions(ctx context.Context) ([]model.Region, error)
	SaveRegion(ctx context.Context, region *model.Region) error
	FindAllAddressTexts(ctx context.Context) ([]string, error)
	SaveAddressBatch(ctx context.Context, addresses []*model.Address) error
	SaveProjectBatch(ctx context.Context, projects []*model.Project) error
}

// TxFunc runs fn inside a unit of work: committed when fn returns nil,
// rolled back otherwise.
type TxFunc func(ctx context.Context, fn func(ctx context.Context, s Store) error) error

// Transactor is a Store that can open transactions.
type Transactor interface {
	Store
	InTx(ctx context.Context, fn func(ctx context.Context, s Store) error) error
}

// within returns a TxFunc that reuses an already open transaction.
func within(s Store) TxFunc {
	return func(ctx context.Context, fn func(ctx context.Context, s Store) error) error {
		return fn(ctx, s)
	}
}
