package main

import (
	"fmt"
	"io"
	"os"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"playtrack/internal/service"
)

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Check stored category records against their play data.",
	Long: `Recompute graph data and developmental age for every stored category record
and report records whose stored values disagree. With --repair, drifted records
are rewritten from their play data. Exits non-zero while drift remains.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		childID, _ := cmd.Flags().GetString("child")
		repair, _ := cmd.Flags().GetBool("repair")

		a, err := openApp(cmd, repair)
		if err != nil {
			return err
		}
		defer a.Close()

		summary, err := service.NewCheckService(a.records, a.progress, a.settings).Run(childID, repair)
		if err != nil {
			return err
		}

		printSummary(os.Stdout, summary)
		if n := summary.Unresolved(); n > 0 {
			return fmt.Errorf("%d record(s) unresolved", n)
		}
		return nil
	},
}

var lastCheckCmd = &cobra.Command{
	Use:   "last-check",
	Short: "Show when the consistency check last ran.",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := openApp(cmd, false)
		if err != nil {
			return err
		}
		defer a.Close()

		run, err := a.settings.LastConsistencyRun()
		if err != nil {
			return err
		}
		if run == nil {
			fmt.Println("No consistency check has run yet.")
			return nil
		}
		fmt.Printf("Last check: %s (%d drifted)\n", run.At.Format(time.RFC3339), run.DriftCount)
		return nil
	},
}

// printSummary writes one row per problem record followed by the totals
func printSummary(out io.Writer, summary *service.CheckSummary) {
	w := tabwriter.NewWriter(out, 0, 0, 3, ' ', 0)
	fmt.Fprintln(w, "CHILD\tCATEGORY\tSTATUS\tSTORED AGE\tPLAY DATA AGE\t")
	for _, r := range summary.Results {
		var status string
		switch {
		case r.Err != "":
			status = "error: " + r.Err
		case r.Repaired:
			status = "repaired"
		case r.Drifted:
			status = "drift"
		default:
			continue
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%.2f\t%.2f\t\n", r.Key.ChildID, r.Key.Category, status,
			r.Report.StoredAge, r.Report.PlayDataAge)
	}
	fmt.Fprintln(w, " \t \t \t \t \t")
	fmt.Fprintf(w, "CHECKED %d\tDRIFTED %d\tREPAIRED %d\tFAILED %d\t \t\n",
		summary.Checked, summary.Drifted, summary.Repaired, summary.Failed)
	w.Flush()
}

func init() {
	checkCmd.Flags().String("child", "", "Only check this child's records")
	checkCmd.Flags().Bool("repair", false, "Rewrite drifted records from their play data")

	rootCmd.AddCommand(checkCmd)
	rootCmd.AddCommand(lastCheckCmd)
}
