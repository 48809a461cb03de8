// Package authority defines the permission tags that can be attached to
// roles, the split between tenant-scoped and global authorities, and the
// static prerequisite table used to validate role definitions.
package authority
