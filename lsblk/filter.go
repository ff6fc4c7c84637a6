package lsblk

import (
	"strings"

	"github.com/projecteru2/blkinfo/types"
)

// FilterPredicate defines a predicate for filtering devices.
type FilterPredicate interface {
	Match(device types.Device) bool
}

// Filter holds multiple filters and matches if all contained filters match.
// A nil or empty Filter matches everything.
type Filter struct {
	Filters []FilterPredicate
}

func (f *Filter) Match(device types.Device) bool {
	if f == nil {
		return true
	}
	for _, filter := range f.Filters {
		if !filter.Match(device) {
			return false
		}
	}
	return true
}

// TypeFilter matches devices by type.
type TypeFilter struct {
	Type string
}

func (f *TypeFilter) Match(device types.Device) bool {
	return strings.EqualFold(device.Type, f.Type)
}

// MinSizeFilter matches devices at least Bytes large.
// Devices whose size cannot be parsed never match.
type MinSizeFilter struct {
	Bytes int64
}

func (f *MinSizeFilter) Match(device types.Device) bool {
	size, err := device.SizeBytes()
	return err == nil && size >= f.Bytes
}

// Entry is one row of a filtered listing.
type Entry struct {
	types.Device
	// Depth is 0 for parents and 1 for children.
	Depth int
}

// Select walks parents and their children in lsblk order and returns the
// devices f matches. A child is kept even when its parent is filtered out.
// Records without a string name are never listed.
func Select(list *types.DeviceList, f *Filter) []Entry {
	if list == nil {
		return nil
	}
	var out []Entry
	for _, parent := range list.Devices {
		if parent.Named() && f.Match(parent) {
			out = append(out, Entry{Device: parent})
		}
		for _, child := range parent.Children {
			if child.Named() && f.Match(child) {
				out = append(out, Entry{Device: child, Depth: 1})
			}
		}
	}
	return out
}
