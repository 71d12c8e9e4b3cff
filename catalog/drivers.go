// catalog/drivers.go
package catalog

import (
	"fmt"
	"log"
	"os"
	"sort"
	"sync"

	gocache "github.com/patrickmn/go-cache"

	"github.com/Gustavo2020/GestUnifServ/models"
)

// DriverCatalog is the mutable registry of company drivers, backed by a CSV
// file. Unlike the risk catalog it accepts writes at runtime: Upsert runs
// the whole mutate -> persist cycle under an exclusive lock so concurrent
// upserts cannot interleave between the in-memory cache and the backing
// file.
type DriverCatalog struct {
	mu         sync.Mutex // guards the mutate + persist cycle
	cache      *gocache.Cache
	sourcePath string
}

// NewDriverCatalog loads the registry from the CSV at path. A missing file
// is not an error: the registry starts empty and the file is created on the
// first upsert.
func NewDriverCatalog(path string) (*DriverCatalog, error) {
	d := &DriverCatalog{
		cache:      gocache.New(gocache.NoExpiration, 0),
		sourcePath: path,
	}

	file, err := os.Open(path)
	if os.IsNotExist(err) {
		log.Printf("Catalog: driver registry %s does not exist yet, starting empty\n", path)
		return d, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to open driver registry %s: %w", path, err)
	}
	defer file.Close()

	drivers, err := ParseDriversCsv(file)
	if err != nil {
		return nil, fmt.Errorf("failed to parse driver registry %s: %w", path, err)
	}
	for _, drv := range drivers {
		d.cache.Set(drv.NationalID, drv, gocache.NoExpiration)
	}
	log.Printf("Catalog: loaded %d drivers from %s\n", len(drivers), path)
	return d, nil
}

// Get returns the registered driver for a national id, if any.
func (d *DriverCatalog) Get(nationalID string) (models.Driver, bool) {
	v, ok := d.cache.Get(nationalID)
	if !ok {
		return models.Driver{}, false
	}
	return v.(models.Driver), true
}

// All returns every registered driver, sorted by national id.
func (d *DriverCatalog) All() []models.Driver {
	items := d.cache.Items()
	drivers := make([]models.Driver, 0, len(items))
	for _, item := range items {
		drivers = append(drivers, item.Object.(models.Driver))
	}
	sort.Slice(drivers, func(i, j int) bool { return drivers[i].NationalID < drivers[j].NationalID })
	return drivers
}

// Upsert registers or updates a driver and persists the whole registry back
// to the CSV file before releasing the lock.
func (d *DriverCatalog) Upsert(driver models.Driver) error {
	if driver.NationalID == "" {
		return fmt.Errorf("driver national_id is required")
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	d.cache.Set(driver.NationalID, driver, gocache.NoExpiration)

	data, err := MarshalDriversCsv(d.All())
	if err != nil {
		return err
	}
	if err := os.WriteFile(d.sourcePath, data, 0644); err != nil {
		return fmt.Errorf("failed to persist driver registry to %s: %w", d.sourcePath, err)
	}
	log.Printf("Catalog: upserted driver %s and persisted registry (%d drivers)\n", driver.NationalID, d.cache.ItemCount())
	return nil
}
