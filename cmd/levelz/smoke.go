package main

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v3"

	"github.com/samcharles93/levelz/pkg/compute"
	"github.com/samcharles93/levelz/pkg/driver"
)

// smokeCmd runs the whole pipeline once against real hardware: resolve
// a kernel binary, open a session, compile, bind a buffer, launch, and
// read the results back.
func smokeCmd() *cli.Command {
	var (
		kernel    string
		entry     string
		explicit  string
		elements  int64
		groupSize int64
		deviceIdx int64
	)

	return &cli.Command{
		Name:  "smoke",
		Usage: "Run one end-to-end kernel launch against the device",
		Flags: append(commonFlags(), append(kernelFlags(),
			&cli.StringFlag{
				Name:        "kernel",
				Usage:       "logical kernel name to resolve",
				Value:       "fitness",
				Destination: &kernel,
			},
			&cli.StringFlag{
				Name:        "entry",
				Usage:       "entry point name inside the module",
				Value:       "main",
				Destination: &entry,
			},
			&cli.StringFlag{
				Name:        "spirv",
				Usage:       "explicit path to a .spv binary",
				Destination: &explicit,
			},
			&cli.Int64Flag{
				Name:        "elements",
				Usage:       "number of work items",
				Value:       1024,
				Destination: &elements,
			},
			&cli.Int64Flag{
				Name:        "group-size",
				Usage:       "local work-group size",
				Value:       64,
				Destination: &groupSize,
			},
			&cli.Int64Flag{
				Name:        "device",
				Usage:       "device index",
				Destination: &deviceIdx,
			})...),
		Action: func(ctx context.Context, cmd *cli.Command) error {
			applyCommonConfig(cmd, LoadConfig())
			log := newLogger()

			api, err := driver.Open()
			if err != nil {
				return fmt.Errorf("smoke test needs a native driver: %w", err)
			}
			det := newDetector(api, log)
			cat := newCatalog(det, log)

			res, err := cat.Resolve(kernel, explicit)
			if err != nil {
				return err
			}
			log.Info("kernel resolved", "tier", res.Tier.String(), "path", res.Path)

			session, err := compute.Open(api,
				compute.WithDeviceIndex(int(deviceIdx)),
				compute.WithName("smoke"),
				compute.WithLogger(log),
			)
			if err != nil {
				return err
			}
			defer session.Close()
			log.Info("session opened", "device", session.DeviceName())

			mod, err := session.LoadModule(res.Data)
			if err != nil {
				return err
			}
			defer mod.Close()

			k, err := mod.Kernel(entry)
			if err != nil {
				return err
			}
			defer k.Close()

			n := int(elements)
			buf, err := compute.NewBuffer[float32](session, n)
			if err != nil {
				return err
			}
			defer buf.Free()

			in := make([]float32, n)
			for i := range in {
				in[i] = float32(i)
			}
			if err := buf.Write(in); err != nil {
				return err
			}

			if err := k.SetGroupSize(uint32(groupSize), 1, 1); err != nil {
				return err
			}
			if err := k.SetArgBuffer(0, buf); err != nil {
				return err
			}
			if err := k.SetArgUint32(1, uint32(n)); err != nil {
				return err
			}

			groups := compute.GroupCount(n, int(groupSize))
			if err := session.Launch(k, groups, 1, 1); err != nil {
				return err
			}

			out, err := buf.ToSlice()
			if err != nil {
				return err
			}
			preview := out
			if len(preview) > 8 {
				preview = preview[:8]
			}
			fmt.Printf("launch complete: %d elements, %d groups, first values %v\n", n, groups, preview)
			return nil
		},
	}
}
