package types

import (
	"bytes"
	"encoding/json"
	"fmt"

	units "github.com/docker/go-units"
)

// Device is one block device record from lsblk -J output.
type Device struct {
	Name       string   `json:"name"`
	Size       string   `json:"size,omitempty"`
	Type       string   `json:"type,omitempty"`
	Mountpoint *string  `json:"mountpoint"`
	Children   []Device `json:"children,omitempty"`

	// raw is the value as lsblk emitted it, nil for records built in code.
	raw json.RawMessage
	// unnamed is set for decoded values that are not objects or whose name is
	// missing or not a string. Such records never match a lookup.
	unnamed bool
}

// DeviceList is the top-level lsblk -J document.
type DeviceList struct {
	Devices []Device `json:"blockdevices"`
}

// deviceFields breaks the MarshalJSON recursion.
type deviceFields Device

// UnmarshalJSON keeps the raw value and decodes the modeled columns leniently:
// a column of an unexpected type is left empty, children are decoded only when
// they form an array, and a value that is not an object decodes to an unnamed
// record. It fails only on input that is not JSON at all.
func (d *Device) UnmarshalJSON(data []byte) error {
	var buf bytes.Buffer
	if err := json.Compact(&buf, data); err != nil {
		return err
	}
	*d = Device{raw: buf.Bytes(), unnamed: true}

	var obj map[string]json.RawMessage
	if err := json.Unmarshal(data, &obj); err != nil || obj == nil {
		return nil
	}
	d.unnamed = !decodeString(obj["name"], &d.Name)
	decodeString(obj["type"], &d.Type)
	if !decodeString(obj["size"], &d.Size) {
		// lsblk -b reports sizes as numbers.
		var n json.Number
		if json.Unmarshal(obj["size"], &n) == nil {
			d.Size = n.String()
		}
	}
	var mountpoint string
	if decodeString(obj["mountpoint"], &mountpoint) {
		d.Mountpoint = &mountpoint
	}
	if json.Unmarshal(obj["children"], &d.Children) != nil {
		d.Children = nil
	}
	return nil
}

// decodeString stores raw into dst when raw is a JSON string.
func decodeString(raw json.RawMessage, dst *string) bool {
	if len(raw) == 0 || raw[0] != '"' {
		return false
	}
	return json.Unmarshal(raw, dst) == nil
}

// MarshalJSON re-emits the original value for decoded records.
func (d Device) MarshalJSON() ([]byte, error) {
	if d.raw != nil {
		return d.raw, nil
	}
	return json.Marshal(deviceFields(d))
}

// Named reports whether the record carries a string name.
func (d *Device) Named() bool {
	return !d.unnamed
}

// SizeBytes parses the human-readable SIZE column (e.g. "931.5G") into bytes.
func (d *Device) SizeBytes() (int64, error) {
	n, err := units.RAMInBytes(d.Size)
	if err != nil {
		return 0, fmt.Errorf("parse size %q of %s: %w", d.Size, d.Name, err)
	}
	return n, nil
}

// MountpointOrEmpty returns the mountpoint, or "" when lsblk reported null.
func (d *Device) MountpointOrEmpty() string {
	if d.Mountpoint == nil {
		return ""
	}
	return *d.Mountpoint
}
