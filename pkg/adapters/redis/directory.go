package redis

import (
	"context"
	"errors"
	"fmt"

	"github.com/aretw0/courier/pkg/domain"
	backend "github.com/redis/go-redis/v9"
)

// Directory implements ports.PackageDirectory on a Redis hash
// (field = tracking number, value = status).
type Directory struct {
	base
}

// NewDirectory creates a directory on an existing client.
func NewDirectory(client *backend.Client, opts ...Option) *Directory {
	return &Directory{base: newBase(client, opts)}
}

func (d *Directory) key() string {
	return d.prefix + "packages"
}

// Seed writes packages into the hash, overwriting existing statuses.
func (d *Directory) Seed(ctx context.Context, packages map[string]domain.PackageStatus) error {
	if len(packages) == 0 {
		return nil
	}
	values := make(map[string]interface{}, len(packages))
	for tn, st := range packages {
		values[tn] = string(st)
	}
	if err := d.client.HSet(ctx, d.key(), values).Err(); err != nil {
		return fmt.Errorf("failed to seed packages: %w", err)
	}
	return nil
}

// Status returns the status of trackingNumber.
func (d *Directory) Status(ctx context.Context, trackingNumber string) (domain.PackageStatus, error) {
	raw, err := d.client.HGet(ctx, d.key(), trackingNumber).Result()
	if err != nil {
		if errors.Is(err, backend.Nil) {
			return "", domain.ErrNotFound
		}
		return "", fmt.Errorf("failed to get package status: %w", err)
	}
	st, err := domain.ParsePackageStatus(raw)
	if err != nil {
		return "", fmt.Errorf("corrupt package entry %s: %w", trackingNumber, err)
	}
	return st, nil
}
