// cmd/collabquest/workers.go
package main

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"collabquest/pkg/registry"
)

var workersCmd = &cobra.Command{
	Use:   "workers",
	Short: "List the Camunda task types this service can work on",
	RunE: func(cmd *cobra.Command, args []string) error {
		path, _ := cmd.Flags().GetString("registry")
		reg, err := registry.LoadRegistry(path)
		if err != nil {
			return err
		}

		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "TASK TYPE\tCATEGORY\tTIMEOUT\tRETRIES\tERROR CODES")
		for _, a := range reg.Activities {
			fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%s\n", a.TaskType, a.Category, a.Timeout, a.Retries, strings.Join(a.ErrorCodes, ","))
		}
		return w.Flush()
	},
}

func init() {
	workersCmd.Flags().String("registry", "configs/activities.json", "Path to the activity registry")
}
