package lsblk

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/projecteru2/core/log"

	"github.com/projecteru2/blkinfo/executor"
	"github.com/projecteru2/blkinfo/types"
)

// DefaultCommand lists every block device with the columns blkinfo reports.
const DefaultCommand = "lsblk -J -o NAME,SIZE,TYPE,MOUNTPOINT"

var (
	// ErrDeviceNotFound is returned when no parent or child has the requested name.
	ErrDeviceNotFound = errors.New("device not found")
	// ErrNoBlockDevices is returned when the output lacks a "blockdevices" array.
	ErrNoBlockDevices = errors.New(`lsblk output has no "blockdevices" array`)
)

// Interface defines the block device queries.
type Interface interface {
	GetDevices(ctx context.Context) (*types.DeviceList, error)
	Lookup(ctx context.Context, name string) (*types.Device, error)
}

type lsblk struct {
	runner  executor.Runner
	command string
}

var _ Interface = &lsblk{}

// New returns an Interface that runs command through runner.
// An empty command falls back to DefaultCommand.
func New(runner executor.Runner, command string) Interface {
	if command == "" {
		command = DefaultCommand
	}
	return &lsblk{runner: runner, command: command}
}

// GetDevices runs the lsblk command and parses its output.
func (l *lsblk) GetDevices(ctx context.Context) (*types.DeviceList, error) {
	output, err := l.runner.Run(ctx, l.command)
	if err != nil {
		return nil, err
	}
	return Parse([]byte(output))
}

// Lookup returns the first device named name, see Find.
func (l *lsblk) Lookup(ctx context.Context, name string) (*types.Device, error) {
	devices, err := l.GetDevices(ctx)
	if err != nil {
		return nil, err
	}
	dev, err := Find(devices, name)
	if err != nil {
		return nil, err
	}
	log.WithFunc("lsblk.Lookup").Debugf(ctx, "found %s (type %s, size %s)", dev.Name, dev.Type, dev.Size)
	return dev, nil
}

// Parse decodes lsblk -J output.
func Parse(output []byte) (*types.DeviceList, error) {
	var doc struct {
		Devices json.RawMessage `json:"blockdevices"`
	}
	if err := json.Unmarshal(output, &doc); err != nil {
		return nil, fmt.Errorf("parse lsblk output: %w", err)
	}
	if len(doc.Devices) == 0 || string(doc.Devices) == "null" {
		return nil, ErrNoBlockDevices
	}
	var list types.DeviceList
	if err := json.Unmarshal(doc.Devices, &list.Devices); err != nil {
		return nil, fmt.Errorf("parse lsblk blockdevices: %w", err)
	}
	return &list, nil
}

// Find returns the first device named name. Each parent is checked before its
// own children, and parents are visited in order. Only one level of children
// is searched. Records without a string name are skipped.
func Find(list *types.DeviceList, name string) (*types.Device, error) {
	if list != nil {
		for i := range list.Devices {
			parent := &list.Devices[i]
			if matches(parent, name) {
				return parent, nil
			}
			for j := range parent.Children {
				if matches(&parent.Children[j], name) {
					return &parent.Children[j], nil
				}
			}
		}
	}
	return nil, fmt.Errorf("%w: %s", ErrDeviceNotFound, name)
}

func matches(dev *types.Device, name string) bool {
	return dev.Named() && dev.Name == name
}
