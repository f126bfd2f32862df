package domain

import "fmt"

// PackageStatus is the delivery status reported by the package directory.
type PackageStatus string

const (
	StatusInTransit PackageStatus = "in_transit"
	StatusDelivered PackageStatus = "delivered"
	StatusLost      PackageStatus = "lost"
)

// Package is a tracking number with its status.
type Package struct {
	TrackingNumber string        `json:"tracking_number"`
	Status         PackageStatus `json:"status"`
}

// ParsePackageStatus validates a raw status value.
func ParsePackageStatus(s string) (PackageStatus, error) {
	switch st := PackageStatus(s); st {
	case StatusInTransit, StatusDelivered, StatusLost:
		return st, nil
	}
	return "", fmt.Errorf("unknown package status %q", s)
}

// Claimable reports whether a claim may be filed for a package in this status.
func (s PackageStatus) Claimable() bool {
	return s == StatusLost
}

// SeedPackages returns the built-in tracking table.
func SeedPackages() map[string]PackageStatus {
	return map[string]PackageStatus{
		"AB123456789": StatusInTransit,
		"XY987654321": StatusDelivered,
		"CD555666777": StatusLost,
		"EF111222333": StatusInTransit,
		"GH444555666": StatusLost,
		"IJ777888999": StatusDelivered,
		"KL000111222": StatusInTransit,
		"MN333444555": StatusLost,
	}
}
