package cmd

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/sarchlab/rebalance/datarecording"
	"github.com/spf13/cobra"
)

func newTraceCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "trace <file.sqlite3>",
		Short: "Summarize a recorded run.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return summarizeTrace(cmd, args[0])
		},
	}
}

func summarizeTrace(cmd *cobra.Command, path string) error {
	if _, err := os.Stat(path); err != nil {
		return err
	}

	reader, err := datarecording.NewReader(path)
	if err != nil {
		return err
	}
	defer reader.Close()

	ctx := cmd.Context()
	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)

	execs, err := reader.Exec(ctx)
	if err != nil {
		return err
	}

	for _, info := range execs {
		fmt.Fprintf(w, "%s\t%s\n", info.Property, info.Value)
	}

	counts, err := reader.EventCounts(ctx)
	if err != nil {
		return err
	}

	fmt.Fprintf(w, "\nEVENT\tCOUNT\n")

	total := 0

	for _, c := range counts {
		fmt.Fprintf(w, "%s\t%d\n", c.Key(), c.Count)
		total += c.Count
	}

	failures, err := reader.Events(ctx, datarecording.EventFilter{Failed: true})
	if err != nil {
		return err
	}

	spawns, err := reader.Spawns(ctx, "")
	if err != nil {
		return err
	}

	fmt.Fprintf(w, "\nevents\t%d\nfailures\t%d\nspawns\t%d\n",
		total, len(failures), len(spawns))

	return w.Flush()
}
