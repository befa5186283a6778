// Copyright (c) 2026 The Moriarty Project Authors
//
// Use of this software is governed by the MIT license included
// in the LICENSE file.

package main

import (
	"fmt"
	"os"

	"github.com/urfave/cli/v2"
)

func main() {
	app := &cli.App{
		Name:      "moriarty",
		Usage:     "Generate test-case data from declarative variable specs",
		Copyright: "(c) 2026 The Moriarty Project Authors",
		Flags:     []cli.Flag{},
		Commands: []*cli.Command{
			&GenerateCmd,
		},
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
