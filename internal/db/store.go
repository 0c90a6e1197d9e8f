package db

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/Yaro-bit/SimpleSalesman/internal/importer"
	"github.com/Yaro-bit/SimpleSalesman/internal/model"
)

const (
	insertAddressQuery = `INSERT INTO addresses (address_text, region_id) VALUES (:address_text, :region_id)`

	insertProjectQuery = `INSERT INTO projects (
		address_id, status, operator, construction_company, planned_construction_end,
		construction_completed, sales_start, sales_end, number_of_homes, contract_present,
		commission_category, kg_number, product_price, outdoor_fee_present
	) VALUES (
		:address_id, :status, :operator, :construction_company, :planned_construction_end,
		:construction_completed, :sales_start, :sales_end, :number_of_homes, :contract_present,
		:commission_category, :kg_number, :product_price, :outdoor_fee_present
	)`
)

// ProjectStore is the MySQL implementation of importer.Transactor.
type ProjectStore struct {
	db *sqlx.DB
	q  sqlx.ExtContext
}

func NewProjectStore(db *sqlx.DB) *ProjectStore {
	return &ProjectStore{db: db, q: db}
}

var _ importer.Transactor = (*ProjectStore)(nil)

func (s *ProjectStore) InTx(ctx context.Context, fn func(ctx context.Context, s importer.Store) error) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	if err := fn(ctx, &ProjectStore{db: s.db, q: tx}); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

func (s *ProjectStore) FindAllRegions(ctx context.Context) ([]model.Region, error) {
	var regions []model.Region
	if err := sqlx.SelectContext(ctx, s.q, &regions, `SELECT id, name FROM regions`); err != nil {
		return nil, fmt.Errorf("select regions: %w", err)
	}
	return regions, nil
}

func (s *ProjectStore) SaveRegion(ctx context.Context, region *model.Region) error {
	res, err := s.q.ExecContext(ctx, `INSERT INTO regions (name) VALUES (?)`, region.Name)
	if err != nil {
		return fmt.Errorf("insert region %q: %w", region.Name, err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("region id: %w", err)
	}
	region.ID = id
	return nil
}

func (s *ProjectStore) FindAllAddressTexts(ctx context.Context) ([]string, error) {
	var texts []string
	if err := sqlx.SelectContext(ctx, s.q, &texts, `SELECT address_text FROM addresses`); err != nil {
		return nil, fmt.Errorf("select address texts: %w", err)
	}
	return texts, nil
}

func (s *ProjectStore) SaveAddressBatch(ctx context.Context, addresses []*model.Address) error {
	if len(addresses) == 0 {
		return nil
	}
	ids, err := s.insertBatch(ctx, insertAddressQuery, addresses, len(addresses))
	if err != nil {
		return fmt.Errorf("insert addresses: %w", err)
	}
	for i, a := range addresses {
		a.ID = ids + int64(i)
	}
	return nil
}

func (s *ProjectStore) SaveProjectBatch(ctx context.Context, projects []*model.Project) error {
	if len(projects) == 0 {
		return nil
	}
	ids, err := s.insertBatch(ctx, insertProjectQuery, projects, len(projects))
	if err != nil {
		return fmt.Errorf("insert projects: %w", err)
	}
	for i, p := range projects {
		p.ID = ids + int64(i)
	}
	return nil
}

// insertBatch expands a named single-row INSERT into one multi-row statement
// and returns the first generated id. InnoDB hands out consecutive ids for a
// single multi-row insert, so row i received first+i.
func (s *ProjectStore) insertBatch(ctx context.Context, query string, rows any, n int) (int64, error) {
	expanded, args, err := sqlx.Named(query, rows)
	if err != nil {
		return 0, err
	}

	res, err := s.q.ExecContext(ctx, s.q.Rebind(expanded), args...)
	if err != nil {
		return 0, err
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return 0, err
	}
	if affected != int64(n) {
		return 0, fmt.Errorf("inserted %d of %d rows", affected, n)
	}

	first, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	return first, nil
}
