package importer

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/Yaro-bit/SimpleSalesman/internal/logger"
	"github.com/Yaro-bit/SimpleSalesman/internal/model"
	"github.com/Yaro-bit/SimpleSalesman/pkg/errors"
)

// RegionCache maps region names to persisted regions for the duration of
// one import.
type RegionCache struct {
	byName map[string]*model.Region
	log    zerolog.Logger
}

// LoadRegionCache reads every persisted region once.
func LoadRegionCache(ctx context.Context, store Store) (*RegionCache, error) {
	regions, err := store.FindAllRegions(ctx)
	if err != nil {
		return nil, errors.NewPersistenceError("load regions", err)
	}

	c := &RegionCache{
		byName: make(map[string]*model.Region, len(regions)),
		log:    logger.Component("region_cache"),
	}
	for i := range regions {
		r := regions[i]
		if _, dup := c.byName[r.Name]; dup {
			continue
		}
		c.byName[r.Name] = &r
	}
	c.log.Debug().Int("regions", len(c.byName)).Msg("Region cache loaded")
	return c, nil
}

func (c *RegionCache) Get(name string) (*model.Region, bool) {
	r, ok := c.byName[name]
	return r, ok
}

func (c *RegionCache) Len() int {
	return len(c.byName)
}

// Missing lists the region names referenced by rows that are not cached,
// each name once, in order of first appearance.
func (c *RegionCache) Missing(rows []model.ProjectRow) []string {
	seen := make(map[string]struct{})
	var names []string
	for _, row := range rows {
		name := regionName(row)
		if name == "" {
			continue
		}
		if _, ok := c.byName[name]; ok {
			continue
		}
		if _, ok := seen[name]; ok {
			continue
		}
		seen[name] = struct{}{}
		names = append(names, name)
	}
	return names
}

// CreateMissing persists each name once and merges the results into the
// cache. With failFast the first store failure aborts and is returned;
// otherwise failures are collected per name and the remaining names are
// still created.
func (c *RegionCache) CreateMissing(ctx context.Context, store Store, names []string, failFast bool) (map[string]error, error) {
	failed := make(map[string]error)
	for _, name := range names {
		if _, ok := c.byName[name]; ok {
			continue
		}

		region := &model.Region{Name: name}
		if err := store.SaveRegion(ctx, region); err != nil {
			if failFast {
				return nil, errors.NewPersistenceError("save region "+name, err)
			}
			c.log.Warn().Err(err).Str("region", name).Msg("Failed to create region")
			failed[name] = err
			continue
		}
		c.byName[name] = region
	}

	if created := len(names) - len(failed); created > 0 {
		c.log.Info().Int("created", created).Msg("Created new regions")
	}
	return failed, nil
}

func regionName(row model.ProjectRow) string {
	if row.Project == nil || row.Project.Address == nil || row.Project.Address.Region == nil {
		return ""
	}
	return row.Project.Address.Region.Name
}
