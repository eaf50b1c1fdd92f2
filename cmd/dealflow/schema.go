package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Veraticus/dealflow/internal/inference"
)

func schemaCmd() *cobra.Command {
	return &cobra.Command{
		Use:       "schema [dashboard|transcript]",
		Short:     "Print the response schema sent to the model",
		Args:      cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		ValidArgs: []string{inference.DashboardSchemaName, inference.TranscriptSchemaName},
		RunE: func(cmd *cobra.Command, args []string) error {
			schema, ok := inference.SchemaFor(args[0])
			if !ok {
				return fmt.Errorf("unknown schema %q", args[0])
			}

			encoder := json.NewEncoder(cmd.OutOrStdout())
			encoder.SetIndent("", "  ")
			return encoder.Encode(schema)
		},
	}
}
