package memory

import (
	"context"
	"fmt"
	"os"
	"sort"
	"sync"

	"github.com/aretw0/courier/pkg/domain"
	"gopkg.in/yaml.v3"
)

// Directory implements ports.PackageDirectory using an in-memory map.
type Directory struct {
	mu       sync.RWMutex
	packages map[string]domain.PackageStatus
}

// NewDirectory creates a directory holding a copy of packages.
func NewDirectory(packages map[string]domain.PackageStatus) *Directory {
	d := &Directory{packages: make(map[string]domain.PackageStatus, len(packages))}
	for tn, st := range packages {
		d.packages[tn] = st
	}
	return d
}

// NewSeededDirectory creates a directory with the built-in tracking table.
func NewSeededDirectory() *Directory {
	return NewDirectory(domain.SeedPackages())
}

// directoryFile is the on-disk shape of a package table.
//
//	packages:
//	  AB123456789: in_transit
//	  CD555666777: lost
type directoryFile struct {
	Packages map[string]string `yaml:"packages"`
}

// LoadDirectory reads a YAML package table from path.
func LoadDirectory(path string) (*Directory, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read package table: %w", err)
	}
	return ParseDirectory(data)
}

// ParseDirectory decodes a YAML package table, validating every entry.
func ParseDirectory(data []byte) (*Directory, error) {
	var file directoryFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse package table: %w", err)
	}

	packages := make(map[string]domain.PackageStatus, len(file.Packages))
	for tn, raw := range file.Packages {
		if !domain.ValidTrackingNumber(tn) {
			return nil, fmt.Errorf("invalid tracking number %q in package table", tn)
		}
		st, err := domain.ParsePackageStatus(raw)
		if err != nil {
			return nil, fmt.Errorf("package %s: %w", tn, err)
		}
		packages[tn] = st
	}
	return NewDirectory(packages), nil
}

// Status returns the status of trackingNumber.
func (d *Directory) Status(ctx context.Context, trackingNumber string) (domain.PackageStatus, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	st, ok := d.packages[trackingNumber]
	if !ok {
		return "", domain.ErrNotFound
	}
	return st, nil
}

// Set changes the status of a package, e.g. when a carrier update arrives.
func (d *Directory) Set(trackingNumber string, status domain.PackageStatus) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.packages[trackingNumber] = status
}

// List returns every package sorted by tracking number.
func (d *Directory) List() []domain.Package {
	d.mu.RLock()
	defer d.mu.RUnlock()

	out := make([]domain.Package, 0, len(d.packages))
	for tn, st := range d.packages {
		out = append(out, domain.Package{TrackingNumber: tn, Status: st})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].TrackingNumber < out[j].TrackingNumber })
	return out
}
