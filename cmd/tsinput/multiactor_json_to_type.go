package main

import (
	"github.com/spf13/cobra"

	"github.com/tsinput/tsinput/internal/batch"
)

func newMultiactorJSONToTypeCommand() *cobra.Command {
	var writeFile string

	cmd := &cobra.Command{
		Use:   "multiactor-json-to-type <actorsFolder>",
		Short: "Emit one named declaration per actor directory",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return batch.New(appLogger).ReverseAll(batch.ReverseOptions{
				ActorsDir: args[0],
				WriteFile: writeFile,
				Out:       cmd.OutOrStdout(),
			})
		},
	}

	cmd.Flags().StringVar(&writeFile, "write", "", "destination file; empty prints to stdout")

	return cmd
}
