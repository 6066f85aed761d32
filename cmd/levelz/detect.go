package main

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v3"
)

func detectCmd() *cli.Command {
	var save bool

	return &cli.Command{
		Name:  "detect",
		Usage: "Probe the driver and classify the device",
		Flags: append(commonFlags(), append(kernelFlags(),
			&cli.BoolFlag{
				Name:        "save",
				Usage:       "persist the snapshot next to the executable",
				Destination: &save,
			})...),
		Action: func(ctx context.Context, cmd *cli.Command) error {
			applyCommonConfig(cmd, LoadConfig())
			log := newLogger()
			det := newDetector(openAPI(log), log)

			snap := det.Detect()
			fmt.Printf("device:       %s\n", snap.DeviceName)
			fmt.Printf("target:       %s\n", snap.DeviceTarget)
			fmt.Printf("architecture: %s\n", snap.Architecture)
			fmt.Printf("hardware:     %t\n", snap.HardwarePresent)
			if save {
				if err := det.Save(snap); err != nil {
					return err
				}
				fmt.Println("snapshot saved")
			}
			return nil
		},
	}
}
