package main

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/nova-bci/cortex-go/client"
	"github.com/nova-bci/cortex-go/protocol"
)

var headsetsCmd = &cobra.Command{
	Use:   "headsets",
	Short: "List headsets Cortex currently knows about",
	RunE:  runHeadsets,
}

func init() {
	rootCmd.AddCommand(headsetsCmd)
	headsetsCmd.Flags().String("id", "", "Limit the query to a single headset id")
}

func runHeadsets(cmd *cobra.Command, args []string) error {
	id, _ := cmd.Flags().GetString("id")
	q := protocol.QueryHeadsets{}
	if id != "" {
		q.ID = &id
	}

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	var headsets []protocol.Headset
	err := activeClient.Call(ctx, func(raw *client.CortexClient, _ string) error {
		var callErr error
		headsets, callErr = raw.QueryHeadsets(ctx, q)
		return callErr
	})
	if err != nil {
		return fmt.Errorf("querying headsets: %w", err)
	}

	if len(headsets) == 0 {
		fmt.Println("no headsets found")
		return nil
	}
	for _, h := range headsets {
		fmt.Printf("%s\tstatus=%s\tfirmware=%s\tsensors=%v\n", h.ID, h.Status, h.FirmwareVersion, h.Sensors)
	}
	return nil
}
