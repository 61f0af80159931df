package cli

import (
	"context"
	"fmt"
	"text/tabwriter"

	"github.com/justestif/spotify-history-warehouse/internal/db"
)

// Execute implements the go-flags Commander interface for TablesCommand.
func (c *TablesCommand) Execute(args []string) error {
	ctx := context.Background()
	_, sink, err := c.globals.setup(ctx)
	if err != nil {
		return err
	}
	defer sink.Close()

	counts, err := db.NewWarehouse(sink).Counts(ctx)
	if err != nil {
		return err
	}
	if c.globals.JSON {
		return writeJSON(c.out, counts)
	}

	tw := tabwriter.NewWriter(c.out, 0, 4, 2, ' ', 0)
	fmt.Fprintf(tw, "TABLE\tROWS\n")
	for _, tc := range counts {
		if !tc.Present {
			fmt.Fprintf(tw, "%s\t-\n", tc.Name)
			continue
		}
		fmt.Fprintf(tw, "%s\t%d\n", tc.Name, tc.Rows)
	}
	return tw.Flush()
}
