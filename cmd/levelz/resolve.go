package main

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v3"
)

func resolveCmd() *cli.Command {
	var explicitPath string

	return &cli.Command{
		Name:      "resolve",
		Usage:     "Resolve a kernel name to its binary and show the source tier",
		ArgsUsage: "<kernel>",
		Flags: append(commonFlags(), append(kernelFlags(),
			&cli.StringFlag{
				Name:        "spirv",
				Usage:       "explicit path to a .spv binary",
				Destination: &explicitPath,
			})...),
		Action: func(ctx context.Context, cmd *cli.Command) error {
			if cmd.Args().Len() != 1 {
				return fmt.Errorf("usage: levelz resolve <kernel>")
			}
			kernel := cmd.Args().First()

			applyCommonConfig(cmd, LoadConfig())
			log := newLogger()
			det := newDetector(openAPI(log), log)
			cat := newCatalog(det, log)

			res, err := cat.Resolve(kernel, explicitPath)
			if err != nil {
				return err
			}
			fmt.Printf("kernel: %s\n", kernel)
			fmt.Printf("tier:   %s\n", res.Tier)
			fmt.Printf("path:   %s\n", res.Path)
			fmt.Printf("size:   %d bytes\n", len(res.Data))
			return nil
		},
	}
}
