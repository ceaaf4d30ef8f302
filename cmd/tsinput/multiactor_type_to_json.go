package main

import (
	"fmt"
	"regexp"

	"github.com/spf13/cobra"

	"github.com/tsinput/tsinput/internal/batch"
)

func newMultiactorTypeToJSONCommand() *cobra.Command {
	var (
		inputFile  string
		typeRegex  string
		ignoreType string
		writeDir   string
	)

	cmd := &cobra.Command{
		Use:   "multiactor-type-to-json <source>",
		Short: "Convert every matching declaration in one source file to one schema each",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if inputFile == "" {
				inputFile = appConfig.InputFileName
			}
			if typeRegex == "" {
				typeRegex = appConfig.TypeRegex
			}
			if ignoreType == "" {
				ignoreType = appConfig.IgnoreType
			}
			re, err := regexp.Compile(typeRegex)
			if err != nil {
				return fmt.Errorf("invalid type regex %q: %w", typeRegex, err)
			}
			source, err := resolveSource(args[0], inputFile)
			if err != nil {
				return err
			}

			return batch.New(appLogger).ForwardAll(batch.ForwardOptions{
				Source:     source,
				TypeRegex:  re,
				IgnoreType: ignoreType,
				WriteDir:   writeDir,
				Out:        cmd.OutOrStdout(),
			})
		},
	}

	cmd.Flags().StringVar(&inputFile, "input-file", "", "source file inside the given directory (default main.ts)")
	cmd.Flags().StringVar(&typeRegex, "type-regex", "", "declaration name pattern (default .*Input$)")
	cmd.Flags().StringVar(&ignoreType, "ignore-type", "", "declaration name to skip")
	cmd.Flags().StringVar(&writeDir, "write", "", "destination folder; empty prints to stdout")

	return cmd
}
