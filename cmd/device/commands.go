package device

import "github.com/spf13/cobra"

// Actions defines block device queries.
type Actions interface {
	Query(cmd *cobra.Command, args []string) error
	List(cmd *cobra.Command, args []string) error
}

// Commands builds device command set (query, list).
func Commands(h Actions) []*cobra.Command {
	listCmd := &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List block devices and their partitions",
		Args:    cobra.NoArgs,
		RunE:    h.List,
	}
	listCmd.Flags().String("type", "", "only show devices of this type (disk, part, rom, ...)")
	listCmd.Flags().String("min-size", "", "only show devices at least this large (e.g. 10G)")

	return []*cobra.Command{
		{
			Use:   "query DEVICE",
			Short: "Print the lsblk record of DEVICE as JSON",
			Args:  cobra.ExactArgs(1),
			RunE:  h.Query,
		},
		listCmd,
	}
}
