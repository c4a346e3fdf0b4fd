package main

import (
	"errors"
	"flag"
	"os"
	"strings"
)

func runDevices(cmdCtx *commandContext, args []string) error {
	fs := flag.NewFlagSet("devices", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	if err := fs.Parse(args); err != nil {
		return err
	}

	return withServices(cmdCtx, func(svc *appServices) error {
		ctx, stop := interruptible(cmdCtx)
		defer stop()

		devices, err := svc.Playback.Devices(ctx)
		if err != nil {
			return err
		}
		selected, _, err := svc.Playback.Device.Get(ctx)
		if err != nil {
			return err
		}
		if len(devices) == 0 {
			return writeln(cmdCtx.Out, "No devices available.")
		}

		tw := newTable(cmdCtx.Out)
		if err := writef(tw, "\tID\tNAME\tTYPE\tACTIVE\n"); err != nil {
			return err
		}
		for _, d := range devices {
			marker := ""
			if d.ID == selected.ID {
				marker = "*"
			}
			if err := writef(tw, "%s\t%s\t%s\t%s\t%t\n", marker, d.ID, d.Name, d.Type, d.Active); err != nil {
				return err
			}
		}
		return tw.Flush()
	})
}

func runSelectDevice(cmdCtx *commandContext, args []string) error {
	fs := flag.NewFlagSet("select-device", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	var deviceID string
	fs.StringVar(&deviceID, "id", "", "ID of the device to use (see devices)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if deviceID = strings.TrimSpace(deviceID); deviceID == "" {
		return errors.New("--id is required")
	}

	return withServices(cmdCtx, func(svc *appServices) error {
		ctx, stop := interruptible(cmdCtx)
		defer stop()

		ref, err := svc.Playback.SelectDevice(ctx, deviceID)
		if err != nil {
			return err
		}
		return writef(cmdCtx.Out, "Selected %s (%s).\n", ref.Name, ref.ID)
	})
}
