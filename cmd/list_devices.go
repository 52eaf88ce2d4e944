package cmd

import (
	"bytes"
	"fmt"

	"github.com/achilleasa/lumen/device"
	"github.com/olekukonko/tablewriter"
	"github.com/urfave/cli"
)

// List available devices.
func ListDevices(ctx *cli.Context) error {
	setupLogging(ctx)

	platforms, err := device.GetPlatformInfo()
	if err != nil {
		return err
	}

	var buf bytes.Buffer
	buf.WriteString(fmt.Sprintf("\nSystem provides %d platform(s):\n\n", len(platforms)))
	for pIdx, platformInfo := range platforms {
		buf.WriteString(fmt.Sprintf(
			"[Platform %02d]\n  Name    %s\n  Vendor  %s\n  Version %s\n  Memory  %d MB\n\n",
			pIdx, platformInfo.Name, platformInfo.Vendor, platformInfo.Version, platformInfo.TotalMemory>>20,
		))

		table := tablewriter.NewWriter(&buf)
		table.SetAutoFormatHeaders(false)
		table.SetAutoWrapText(false)
		table.SetHeader([]string{"Id", "Name", "Type", "Compute units", "Clock (MHz)", "Speed"})
		for _, dev := range platformInfo.Devices {
			table.Append([]string{
				fmt.Sprintf("%d", dev.Id),
				dev.Name,
				dev.Type.String(),
				fmt.Sprintf("%d", dev.ComputeUnits()),
				fmt.Sprintf("%d", dev.ClockSpeed()),
				fmt.Sprintf("%d", dev.Speed),
			})
		}
		table.Render()
		buf.WriteString("\n")
	}

	logger.Notice(buf.String())
	return nil
}
