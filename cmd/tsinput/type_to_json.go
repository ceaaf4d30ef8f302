package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/davecgh/go-spew/spew"
	"github.com/spf13/cobra"

	"github.com/tsinput/tsinput/internal/batch"
	"github.com/tsinput/tsinput/internal/schema"
)

func newTypeToJSONCommand() *cobra.Command {
	var (
		typeName      string
		inputFileName string
		dumpGraph     bool
	)

	cmd := &cobra.Command{
		Use:   "type-to-json <source>",
		Short: "Convert one named declaration in a source file to a canonical schema",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if typeName == "" {
				typeName = appConfig.TypeName
			}
			if inputFileName == "" {
				inputFileName = appConfig.InputFileName
			}
			source, err := resolveSource(args[0], inputFileName)
			if err != nil {
				return err
			}

			orch := batch.New(appLogger)
			if dumpGraph {
				file, err := orch.ParseSource(source)
				if err != nil {
					return err
				}
				fmt.Fprint(cmd.ErrOrStderr(), spew.Sdump(file))
			}

			prop, err := orch.ConvertType(source, typeName)
			if err != nil {
				return err
			}
			data, err := schema.MarshalCanonical(prop)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), string(data))
			return nil
		},
	}

	cmd.Flags().StringVar(&typeName, "type-name", "", "declaration to convert (default Input)")
	cmd.Flags().StringVar(&inputFileName, "input-file-name", "", "source file inside an actor directory (default main.ts)")
	cmd.Flags().BoolVar(&dumpGraph, "dump-graph", false, "dump the parsed type graph to stderr")

	return cmd
}

// resolveSource accepts either the source file itself or a directory
// containing it under the configured file name.
func resolveSource(source, inputFileName string) (string, error) {
	info, err := os.Stat(source)
	if err != nil {
		return "", fmt.Errorf("source %s: %w", source, err)
	}
	if info.IsDir() {
		return filepath.Join(source, inputFileName), nil
	}
	return source, nil
}
