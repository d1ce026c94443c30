package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/koscakluka/ema-chat/core/backend"
)

func newSchemaCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "schema [name]",
		Short: "Print the JSON Schemas of the backend wire bodies",
		Long: `Print the JSON Schemas of every request and response body exchanged
with the backend. Pass a name to print a single schema.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			encoder := json.NewEncoder(out)
			encoder.SetIndent("", "  ")

			found := false
			for _, schema := range backend.Schemas() {
				if len(args) == 1 && args[0] != schema.Name {
					continue
				}
				found = true
				if len(args) == 0 {
					fmt.Fprintf(out, "# %s\n", schema.Name)
				}
				if err := encoder.Encode(schema.Schema); err != nil {
					return fmt.Errorf("failed to encode schema %s: %w", schema.Name, err)
				}
			}
			if !found {
				return fmt.Errorf("unknown schema %q", args[0])
			}
			return nil
		},
	}
}
