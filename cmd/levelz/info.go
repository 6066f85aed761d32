package main

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v3"

	"github.com/samcharles93/levelz/internal/version"
	"github.com/samcharles93/levelz/pkg/driver"
	"github.com/samcharles93/levelz/pkg/hwdetect"
)

func infoCmd() *cli.Command {
	return &cli.Command{
		Name:  "info",
		Usage: "Show runtime, driver, and device information",
		Flags: append(commonFlags(), kernelFlags()...),
		Action: func(ctx context.Context, cmd *cli.Command) error {
			applyCommonConfig(cmd, LoadConfig())
			log := newLogger()
			api := openAPI(log)
			det := newDetector(api, log)

			fmt.Printf("levelz %s\n", version.String())
			fmt.Printf("native driver compiled in: %t\n", driver.Available())

			snap := det.LoadOrDetect()
			fmt.Printf("device:       %s\n", snap.DeviceName)
			fmt.Printf("target:       %s\n", snap.DeviceTarget)
			fmt.Printf("architecture: %s\n", snap.Architecture)
			fmt.Printf("detected at:  %s\n", snap.DetectedAt.Format("2006-01-02 15:04:05 MST"))

			fmt.Println("known architecture levels:")
			for _, l := range hwdetect.Levels() {
				marker := "  "
				if l.Target == snap.DeviceTarget {
					marker = "* "
				}
				fmt.Printf("%s%d  %-8s %-8s %s\n", marker, l.Rank, l.Target, l.Family, l.Label)
			}
			return nil
		},
	}
}
