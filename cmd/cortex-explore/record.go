package main

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/nova-bci/cortex-go/client"
	"github.com/nova-bci/cortex-go/protocol"
)

var recordCmd = &cobra.Command{
	Use:   "record",
	Short: "Start or stop a recording on a session",
}

var recordStartCmd = &cobra.Command{
	Use:   "start",
	Short: "Create a record on a session",
	RunE:  runRecordStart,
}

var recordStopCmd = &cobra.Command{
	Use:   "stop",
	Short: "Stop the active record on a session",
	RunE:  runRecordStop,
}

func init() {
	rootCmd.AddCommand(recordCmd)
	recordCmd.AddCommand(recordStartCmd, recordStopCmd)

	recordStartCmd.Flags().String("session", "", "Session id to record (required)")
	recordStartCmd.Flags().String("title", "", "Record title (required)")
	_ = recordStartCmd.MarkFlagRequired("session")
	_ = recordStartCmd.MarkFlagRequired("title")

	recordStopCmd.Flags().String("session", "", "Session id to stop recording on (required)")
	_ = recordStopCmd.MarkFlagRequired("session")
}

func runRecordStart(cmd *cobra.Command, args []string) error {
	session, _ := cmd.Flags().GetString("session")
	title, _ := cmd.Flags().GetString("title")

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	var record *protocol.Record
	err := activeClient.Call(ctx, func(raw *client.CortexClient, token string) error {
		var callErr error
		record, callErr = raw.CreateRecord(ctx, token, session, title)
		return callErr
	})
	if err != nil {
		return fmt.Errorf("creating record: %w", err)
	}

	fmt.Printf("record %s started: %q\n", record.UUID, record.Title)
	return nil
}

func runRecordStop(cmd *cobra.Command, args []string) error {
	session, _ := cmd.Flags().GetString("session")

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	var record *protocol.Record
	err := activeClient.Call(ctx, func(raw *client.CortexClient, token string) error {
		var callErr error
		record, callErr = raw.StopRecord(ctx, token, session)
		return callErr
	})
	if err != nil {
		return fmt.Errorf("stopping record: %w", err)
	}

	fmt.Printf("record %s stopped: %q\n", record.UUID, record.Title)
	return nil
}
