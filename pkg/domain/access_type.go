package domain

import dErrors "vault/pkg/domain-errors"

// AccessType classifies audit-log entries. The first four mirror share-grant
// permissions plus sharing itself; AccessAdmin covers registry actions such as
// revocation that fall outside the holder-facing set.
type AccessType string

const (
	AccessView     AccessType = "view"
	AccessDownload AccessType = "download"
	AccessVerify   AccessType = "verify"
	AccessShare    AccessType = "share"
	AccessAdmin    AccessType = "admin"
)

var validAccessTypes = map[AccessType]bool{
	AccessView:     true,
	AccessDownload: true,
	AccessVerify:   true,
	AccessShare:    true,
	AccessAdmin:    true,
}

// ParseAccessType constructs an AccessType from external input.
func ParseAccessType(s string) (AccessType, error) {
	t := AccessType(s)
	if !validAccessTypes[t] {
		return "", dErrors.New(dErrors.CodeInvalidInput, "invalid access type: "+s)
	}
	return t, nil
}

func (t AccessType) String() string { return string(t) }

// ForPermission maps a share permission to the audit access type it produces.
func ForPermission(p Permission) AccessType {
	switch p {
	case PermissionView:
		return AccessView
	case PermissionDownload:
		return AccessDownload
	case PermissionVerify:
		return AccessVerify
	}
	return AccessView
}
