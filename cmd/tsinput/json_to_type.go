package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/tsinput/tsinput/internal/batch"
)

func newJSONToTypeCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "json-to-type <source>",
		Short: "Render one schema file as a type declaration",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			text, err := batch.New(appLogger).EmitSchemaFile(args[0])
			if err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), text)
			return nil
		},
	}
	return cmd
}
