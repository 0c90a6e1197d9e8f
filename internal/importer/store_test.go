package importer

import (
	"context"
	"fmt"
	"slices"
	"sync"

	"github.com/Yaro-bit/SimpleSalesman/internal/model"
)

var errInjected = fmt.Errorf("injected store failure")

// memStore is an in-memory Transactor with unique constraints on region
// names and address texts and foreign key checks on saves.
type memStore struct {
	mu        sync.Mutex
	regions   []model.Region
	addresses []model.Address
	projects  []model.Project
	nextID    int64

	calls  map[string]int
	failAt map[string]int
	txs    int
}

func newMemStore() *memStore {
	return &memStore{calls: make(map[string]int), failAt: make(map[string]int)}
}

// failOn makes the n-th call (1-based) of op fail.
func (m *memStore) failOn(op string, n int) *memStore {
	m.failAt[op] = n
	return m
}

func (m *memStore) hit(op string) error {
	m.calls[op]++
	if n, ok := m.failAt[op]; ok && n == m.calls[op] {
		return errInjected
	}
	return nil
}

func (m *memStore) id() int64 {
	m.nextID++
	return m.nextID
}

func (m *memStore) InTx(ctx context.Context, fn func(ctx context.Context, s Store) error) error {
	m.mu.Lock()
	m.txs++
	regions := slices.Clone(m.regions)
	addresses := slices.Clone(m.addresses)
	projects := slices.Clone(m.projects)
	m.mu.Unlock()

	if err := fn(ctx, m); err != nil {
		m.mu.Lock()
		m.regions, m.addresses, m.projects = regions, addresses, projects
		m.mu.Unlock()
		return err
	}
	return nil
}

func (m *memStore) FindAllRegions(ctx context.Context) ([]model.Region, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.hit("FindAllRegions"); err != nil {
		return nil, err
	}
	return slices.Clone(m.regions), nil
}

func (m *memStore) SaveRegion(ctx context.Context, region *model.Region) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.hit("SaveRegion"); err != nil {
		return err
	}
	for _, r := range m.regions {
		if r.Name == region.Name {
			return fmt.Errorf("duplicate region %q", region.Name)
		}
	}
	region.ID = m.id()
	m.regions = append(m.regions, *region)
	return nil
}

func (m *memStore) FindAllAddressTexts(ctx context.Context) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.hit("FindAllAddressTexts"); err != nil {
		return nil, err
	}
	texts := make([]string, 0, len(m.addresses))
	for _, a := range m.addresses {
		texts = append(texts, a.AddressText)
	}
	return texts, nil
}

func (m *memStore) SaveAddressBatch(ctx context.Context, addresses []*model.Address) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.hit("SaveAddressBatch"); err != nil {
		return err
	}
	for _, a := range addresses {
		if !m.hasRegion(a.RegionID) {
			return fmt.Errorf("address %q references unknown region %d", a.AddressText, a.RegionID)
		}
		for _, existing := range m.addresses {
			if existing.AddressText == a.AddressText {
				return fmt.Errorf("duplicate address %q", a.AddressText)
			}
		}
		a.ID = m.id()
		m.addresses = append(m.addresses, *a)
	}
	return nil
}

func (m *memStore) SaveProjectBatch(ctx context.Context, projects []*model.Project) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.hit("SaveProjectBatch"); err != nil {
		return err
	}
	for _, p := range projects {
		if !m.hasAddress(p.AddressID) {
			return fmt.Errorf("project references unknown address %d", p.AddressID)
		}
		p.ID = m.id()
		m.projects = append(m.projects, *p)
	}
	return nil
}

func (m *memStore) hasRegion(id int64) bool {
	return slices.ContainsFunc(m.regions, func(r model.Region) bool { return r.ID == id })
}

func (m *memStore) hasAddress(id int64) bool {
	return slices.ContainsFunc(m.addresses, func(a model.Address) bool { return a.ID == id })
}

func (m *memStore) regionNames() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	names := make([]string, 0, len(m.regions))
	for _, r := range m.regions {
		names = append(names, r.Name)
	}
	return names
}

func (m *memStore) addressTexts() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	texts := make([]string, 0, len(m.addresses))
	for _, a := range m.addresses {
		texts = append(texts, a.AddressText)
	}
	return texts
}

func (m *memStore) projectCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.projects)
}

var _ Transactor = (*memStore)(nil)

func projectRow(row int, region, address string) model.ProjectRow {
	return model.ProjectRow{
		Row: row,
		Project: &model.Project{
			Address: &model.Address{
				AddressText: address,
				Region:      &model.Region{Name: region},
			},
		},
	}
}
