// shape decodes JSON or YAML documents into typed DAFNI records.
//
// Usage:
//
//	shape [--json] [--metrics] [--max-list N] <command> [flags]
//
// Commands:
//
//	decode  Parse a document with a registered schema
//	types   List the registered record types
package main

import (
	"fmt"
	"os"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	shape "github.com/SimonDaKappa/go-shape"
	"github.com/SimonDaKappa/go-shape/dafni"
	"github.com/SimonDaKappa/go-shape/internal/cli"
)

// version is set with ldflags at build time.
var version = "dev"

func main() {
	var jsonOutput bool
	var withMetrics bool
	var maxList int

	rootCmd := &cobra.Command{
		Use:           "shape",
		Short:         "shape turns JSON and YAML documents into typed records",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "Output in JSON format")
	rootCmd.PersistentFlags().BoolVar(&withMetrics, "metrics", false, "Print parse metrics to stderr when done")
	rootCmd.PersistentFlags().IntVar(&maxList, "max-list", 0, "Reject arrays longer than this (0 means no limit)")

	logger := cli.NewLogger(os.Stderr)
	promReg := prometheus.NewRegistry()

	var schemas *shape.SchemaRegistry
	registryFn := func() (*shape.SchemaRegistry, error) {
		if schemas != nil {
			return schemas, nil
		}

		var m *shape.Metrics
		if withMetrics {
			var err error
			m, err = shape.NewMetrics(promReg)
			if err != nil {
				return nil, err
			}
		}

		d := shape.NewDeserializer(shape.DeserializerOpts{
			Logger:        cli.LogrFrom(logger),
			Metrics:       m,
			MaxListLength: maxList,
		})
		reg, err := dafni.NewRegistry(d)
		if err != nil {
			return nil, fmt.Errorf("failed to build schema registry: %w", err)
		}
		schemas = reg
		return schemas, nil
	}
	outputFn := func() *cli.Output { return cli.NewOutput(jsonOutput) }

	env := &cli.Env{Registry: registryFn, Output: outputFn}
	rootCmd.AddCommand(
		cli.NewDecodeCmd(env),
		cli.NewTypesCmd(env),
	)

	err := rootCmd.Execute()
	if withMetrics {
		if merr := outputFn().Metrics(promReg); merr != nil {
			logger.Error("metrics", "error", merr)
		}
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
