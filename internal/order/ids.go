package order

import "strings"

// RootID identifies the vault root folder.
const RootID = "/"

// Separator splits hierarchy levels inside identifiers.
const Separator = "/"

// ParentID returns the identifier of the folder containing id. Top-level
// items (no separator) belong to RootID.
func ParentID(id string) string {
	i := strings.LastIndex(id, Separator)
	if i < 0 {
		return RootID
	}
	if i == 0 {
		return RootID
	}
	return id[:i]
}

// Name returns the last path component of id.
func Name(id string) string {
	if id == RootID {
		return RootID
	}
	return id[strings.LastIndex(id, Separator)+1:]
}

// IsDescendant reports whether id lives somewhere below ancestor.
func IsDescendant(id, ancestor string) bool {
	if ancestor == RootID {
		return id != RootID
	}
	return strings.HasPrefix(id, ancestor+Separator)
}

// rebase rewrites id when it equals oldPrefix or lives below it.
func rebase(id, oldPrefix, newPrefix string) (string, bool) {
	if id == oldPrefix {
		return newPrefix, true
	}
	if strings.HasPrefix(id, oldPrefix+Separator) {
		return newPrefix + id[len(oldPrefix):], true
	}
	return id, false
}
