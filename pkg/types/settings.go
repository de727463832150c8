package types

import (
	"fmt"
	"strings"
)

// NewItemPosition controls where newly discovered items land in a folder's custom order.
type NewItemPosition string

const (
	// PositionTop prepends new items
	PositionTop NewItemPosition = "top"
	// PositionBottom appends new items
	PositionBottom NewItemPosition = "bottom"
)

// ParseNewItemPosition accepts "top" or "bottom" (case-insensitive).
func ParseNewItemPosition(s string) (NewItemPosition, error) {
	switch NewItemPosition(strings.ToLower(strings.TrimSpace(s))) {
	case PositionTop:
		return PositionTop, nil
	case PositionBottom:
		return PositionBottom, nil
	}
	return "", fmt.Errorf("invalid new item position %q (want top or bottom)", s)
}

// FolderOrder maps a folder identifier to the ordered identifiers of its children.
type FolderOrder map[string][]string

// Settings is the persisted settings blob.
type Settings struct {
	Enabled         bool            `yaml:"enabled" json:"enabled"`
	FoldersFirst    bool            `yaml:"foldersFirst" json:"foldersFirst"`
	NewItemPosition NewItemPosition `yaml:"newItemPosition" json:"newItemPosition"`
	CustomOrder     FolderOrder     `yaml:"customOrder" json:"customOrder"`
}

// DefaultSettings returns the settings used when nothing has been saved yet.
func DefaultSettings() *Settings {
	return &Settings{
		Enabled:         true,
		FoldersFirst:    true,
		NewItemPosition: PositionBottom,
		CustomOrder:     FolderOrder{},
	}
}

// Normalize fills zero values left behind by a partial blob.
func (s *Settings) Normalize() {
	if s.NewItemPosition != PositionTop {
		s.NewItemPosition = PositionBottom
	}
	if s.CustomOrder == nil {
		s.CustomOrder = FolderOrder{}
	}
}

// Clone returns a deep copy of the settings.
func (s *Settings) Clone() *Settings {
	out := *s
	out.CustomOrder = make(FolderOrder, len(s.CustomOrder))
	for k, v := range s.CustomOrder {
		out.CustomOrder[k] = append([]string(nil), v...)
	}
	return &out
}
