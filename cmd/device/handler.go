package device

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"text/tabwriter"

	units "github.com/docker/go-units"
	"github.com/projecteru2/core/log"
	"github.com/spf13/cobra"

	cmdcore "github.com/projecteru2/blkinfo/cmd/core"
	"github.com/projecteru2/blkinfo/lsblk"
)

// ErrEmptyDeviceName is returned when DEVICE is given as an empty string.
var ErrEmptyDeviceName = errors.New("device name is empty")

type Handler struct {
	cmdcore.BaseHandler
}

// Query prints the record of args[0] as a single JSON line.
func (h Handler) Query(cmd *cobra.Command, args []string) error {
	name := args[0]
	if name == "" {
		return ErrEmptyDeviceName
	}
	ctx, conf, err := h.Init(cmd)
	if err != nil {
		return err
	}

	dev, err := h.InitLsblk(conf).Lookup(ctx, name)
	if err != nil {
		return err
	}
	data, err := json.Marshal(dev)
	if err != nil {
		return fmt.Errorf("marshal %s: %w", name, err)
	}
	log.WithFunc("cmd.query").Debugf(ctx, "printing %d bytes for %s", len(data), name)
	_, err = fmt.Fprintln(cmd.OutOrStdout(), string(data))
	return err
}

func (h Handler) List(cmd *cobra.Command, _ []string) error {
	ctx, conf, err := h.Init(cmd)
	if err != nil {
		return err
	}
	filter, err := filterFromFlags(cmd)
	if err != nil {
		return err
	}

	devices, err := h.InitLsblk(conf).GetDevices(ctx)
	if err != nil {
		return err
	}
	entries := lsblk.Select(devices, filter)
	out := cmd.OutOrStdout()
	if len(entries) == 0 {
		_, err = fmt.Fprintln(out, "No devices found.")
		return err
	}

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "NAME\tTYPE\tSIZE\tMOUNTPOINT")
	for _, e := range entries {
		_, _ = fmt.Fprintf(w, "%s%s\t%s\t%s\t%s\n",
			strings.Repeat("  ", e.Depth),
			e.Name,
			e.Type,
			e.Size,
			e.MountpointOrEmpty(),
		)
	}
	return w.Flush()
}

// filterFromFlags builds the list filter from --type and --min-size.
func filterFromFlags(cmd *cobra.Command) (*lsblk.Filter, error) {
	typ, _ := cmd.Flags().GetString("type")
	minSize, _ := cmd.Flags().GetString("min-size")

	filter := &lsblk.Filter{}
	if typ != "" {
		filter.Filters = append(filter.Filters, &lsblk.TypeFilter{Type: typ})
	}
	if minSize != "" {
		n, err := units.RAMInBytes(minSize)
		if err != nil {
			return nil, fmt.Errorf("invalid --min-size %q: %w", minSize, err)
		}
		filter.Filters = append(filter.Filters, &lsblk.MinSizeFilter{Bytes: n})
	}
	return filter, nil
}
