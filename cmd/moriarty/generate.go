// Copyright (c) 2026 The Moriarty Project Authors
//
// Use of this software is governed by the MIT license included
// in the LICENSE file.

package main

import (
	"bufio"
	"fmt"
	"os"
	"time"

	"github.com/dsnet/golib/unitconv"
	"github.com/rs/zerolog"
	"github.com/urfave/cli/v2"

	"github.com/moriarty-project/moriarty"
	"github.com/moriarty-project/moriarty/engine"
)

var GenerateCmd = cli.Command{
	Action:    doGenerate,
	Name:      "generate",
	Usage:     "Generate test cases from a variable spec",
	ArgsUsage: "<spec.yaml>",
	Flags: []cli.Flag{
		&cli.Int64SliceFlag{
			Name:  "seed",
			Usage: "seed sequence for the random engine (overrides the spec)",
		},
		&cli.IntFlag{
			Name:  "count",
			Usage: "number of test cases to generate",
			Value: 1,
		},
		&cli.Int64Flag{
			Name:  "soft-limit",
			Usage: "approximate upper bound on the total generated size (overrides the spec)",
			Value: -1,
		},
		&cli.BoolFlag{
			Name:  "verbose",
			Usage: "enable debug logging",
		},
	},
}

func doGenerate(context *cli.Context) error {
	if context.Args().Len() < 1 {
		return fmt.Errorf("missing spec file, usage: moriarty generate <spec.yaml>")
	}

	level := zerolog.InfoLevel
	if context.Bool("verbose") {
		level = zerolog.DebugLevel
	}
	log := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).
		Level(level).
		With().Timestamp().Logger()

	spec, err := LoadSpec(context.Args().Get(0))
	if err != nil {
		return err
	}

	seed := spec.Seed
	if flagSeed := context.Int64Slice("seed"); len(flagSeed) > 0 {
		seed = flagSeed
	}
	softLimit := spec.SoftLimit
	if limit := context.Int64("soft-limit"); limit >= 0 {
		softLimit = &limit
	}
	count := context.Int("count")

	variables, err := spec.BuildVariableSet()
	if err != nil {
		return err
	}
	order := spec.PrintOrder(variables)

	out := bufio.NewWriter(os.Stdout)
	defer out.Flush()

	start := time.Now()
	totalSize := int64(0)

	for testCase := 0; testCase < count; testCase++ {
		// Every test case gets its own stream: the case index extends the
		// seed sequence, so cases are independent yet reproducible.
		caseSeed := append(append([]int64(nil), seed...), int64(testCase))

		values, err := engine.GenerateAllValues(variables, nil, engine.GenerationOptions{
			Random:              moriarty.NewRandomEngine(caseSeed...),
			SoftGenerationLimit: softLimit,
			Logger:              &log,
		})
		if err != nil {
			return fmt.Errorf("test case %d: %w", testCase, err)
		}
		totalSize += values.ApproximateSize()

		io := engine.NewStreamIO(nil, out)
		universe := engine.NewUniverse().
			SetConstVariableSet(variables).
			SetConstValueSet(values).
			SetIO(io)
		for _, name := range order {
			if err := universe.PrintValueOf(name); err != nil {
				return fmt.Errorf("test case %d: printing %q: %w", testCase, name, err)
			}
			if err := io.PrintWhitespace(engine.Newline); err != nil {
				return err
			}
		}
	}

	elapsed := time.Since(start)
	rate := float64(count) / elapsed.Seconds()
	log.Info().
		Int("cases", count).
		Str("rate", unitconv.FormatPrefix(rate, unitconv.SI, 0)+"cases/s").
		Str("size", unitconv.FormatPrefix(float64(totalSize), unitconv.SI, 1)+"units").
		Msg("generation complete")
	return nil
}
