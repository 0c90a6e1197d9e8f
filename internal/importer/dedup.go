package importer

import (
	"fmt"
	"strings"

	"github.com/Yaro-bit/SimpleSalesman/internal/model"
)

// DuplicateFilter skips rows whose address text already exists in the store
// or appeared earlier in the same import.
type DuplicateFilter struct {
	known map[string]struct{}
}

func NewDuplicateFilter(existing []string) *DuplicateFilter {
	f := &DuplicateFilter{known: make(map[string]struct{}, len(existing))}
	for _, text := range existing {
		f.known[strings.TrimSpace(text)] = struct{}{}
	}
	return f
}

// Partition keeps the first occurrence of every unknown address text and
// returns one warning per skipped row.
func (f *DuplicateFilter) Partition(rows []model.ProjectRow) ([]model.ProjectRow, []string) {
	proceed := make([]model.ProjectRow, 0, len(rows))
	var warnings []string
	for _, row := range rows {
		key := strings.TrimSpace(row.Project.Address.AddressText)
		if _, dup := f.known[key]; dup {
			warnings = append(warnings, fmt.Sprintf("row %d: duplicate address skipped: %s", row.Row, key))
			continue
		}
		f.known[key] = struct{}{}
		proceed = append(proceed, row)
	}
	return proceed, warnings
}

func (f *DuplicateFilter) Contains(text string) bool {
	_, ok := f.known[strings.TrimSpace(text)]
	return ok
}
