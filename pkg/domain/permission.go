package domain

import (
	"time"

	dErrors "vault/pkg/domain-errors"
)

// Permission scopes what a share-grant holder may do with a document.
type Permission string

const (
	PermissionView     Permission = "view"
	PermissionDownload Permission = "download"
	PermissionVerify   Permission = "verify"
)

var validPermissions = map[Permission]bool{
	PermissionView:     true,
	PermissionDownload: true,
	PermissionVerify:   true,
}

// ParsePermissions validates a permission set. The set must be non-empty and
// free of unknown values; duplicates are collapsed preserving first occurrence.
func ParsePermissions(values []string) ([]Permission, error) {
	if len(values) == 0 {
		return nil, dErrors.New(dErrors.CodeNoPermissions, "at least one permission must be selected")
	}
	seen := make(map[Permission]bool, len(values))
	perms := make([]Permission, 0, len(values))
	for _, v := range values {
		p := Permission(v)
		if !validPermissions[p] {
			return nil, dErrors.New(dErrors.CodeInvalidInput, "invalid permission: "+v)
		}
		if seen[p] {
			continue
		}
		seen[p] = true
		perms = append(perms, p)
	}
	return perms, nil
}

func (p Permission) String() string { return string(p) }

// ShareDuration is one of the fixed sharing windows. Arbitrary durations are
// deliberately unsupported; the allowed buckets are the product contract.
type ShareDuration string

const (
	ShareDuration1Hour   ShareDuration = "1h"
	ShareDuration24Hours ShareDuration = "24h"
	ShareDuration7Days   ShareDuration = "7d"
)

// ParseShareDuration constructs a ShareDuration from external input.
func ParseShareDuration(s string) (ShareDuration, error) {
	switch ShareDuration(s) {
	case ShareDuration1Hour, ShareDuration24Hours, ShareDuration7Days:
		return ShareDuration(s), nil
	}
	return "", dErrors.New(dErrors.CodeInvalidInput, "invalid share duration: "+s)
}

// Window returns the absolute duration of the sharing bucket.
func (d ShareDuration) Window() time.Duration {
	switch d {
	case ShareDuration1Hour:
		return time.Hour
	case ShareDuration24Hours:
		return 24 * time.Hour
	case ShareDuration7Days:
		return 7 * 24 * time.Hour
	}
	return 0
}

func (d ShareDuration) String() string { return string(d) }
