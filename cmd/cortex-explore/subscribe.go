package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"sync"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/nova-bci/cortex-go/protocol"
	"github.com/nova-bci/cortex-go/resilient"
)

var subscribeCmd = &cobra.Command{
	Use:   "subscribe <streams>",
	Short: "Subscribe to one or more comma-separated streams and print events",
	Long: `subscribe takes a comma-separated list of stream kinds (eeg, mot, pow,
met, com, fac, dev, eq, sys) and prints each event as it arrives until
interrupted with Ctrl-C. It survives reconnects: events keep flowing on the
same channel after a dropped connection is re-established.`,
	Args: cobra.ExactArgs(1),
	RunE: runSubscribe,
}

func init() {
	rootCmd.AddCommand(subscribeCmd)
	subscribeCmd.Flags().String("session", "", "Session id to subscribe on (required)")
	_ = subscribeCmd.MarkFlagRequired("session")
}

func runSubscribe(cmd *cobra.Command, args []string) error {
	session, _ := cmd.Flags().GetString("session")

	kinds, err := parseStreamKinds(args[0])
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	bridges, err := activeClient.Subscribe(ctx, session, kinds)
	if err != nil {
		return fmt.Errorf("subscribing to %v: %w", kinds, err)
	}
	defer func() {
		printCounters(bridges)
		unsubCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = activeClient.Unsubscribe(unsubCtx, session, kinds)
	}()

	fmt.Printf("subscribed to %v on session %s, press Ctrl-C to stop\n", kinds, session)

	cases := make([]chan protocol.StreamEvent, 0, len(bridges))
	for _, b := range bridges {
		ch := make(chan protocol.StreamEvent)
		go forwardBridge(b.Events(), ch)
		cases = append(cases, ch)
	}

	merged := mergeEventChannels(cases)
	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-merged:
			if !ok {
				return nil
			}
			printEvent(ev)
		}
	}
}

func parseStreamKinds(raw string) ([]protocol.StreamKind, error) {
	parts := strings.Split(raw, ",")
	kinds := make([]protocol.StreamKind, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		if !protocol.IsKnownStreamKind(p) {
			return nil, fmt.Errorf("unknown stream kind %q", p)
		}
		kinds = append(kinds, protocol.StreamKind(p))
	}
	if len(kinds) == 0 {
		return nil, errors.New("no stream kinds given")
	}
	return kinds, nil
}

// forwardBridge relays a bridge's events onto a plain channel closed when
// the bridge's own channel closes, so mergeEventChannels can fan multiple
// bridges into one select without reflection.
func forwardBridge(in <-chan protocol.StreamEvent, out chan<- protocol.StreamEvent) {
	defer close(out)
	for ev := range in {
		out <- ev
	}
}

func mergeEventChannels(chans []chan protocol.StreamEvent) <-chan protocol.StreamEvent {
	merged := make(chan protocol.StreamEvent)
	var wg sync.WaitGroup
	wg.Add(len(chans))
	for _, ch := range chans {
		go func(c <-chan protocol.StreamEvent) {
			defer wg.Done()
			for ev := range c {
				merged <- ev
			}
		}(ch)
	}
	go func() {
		wg.Wait()
		close(merged)
	}()
	return merged
}

// printCounters reports each stream's delivered/dropped accounting so an
// operator can tell a lossy subscription from a quiet one (spec.md §5).
func printCounters(bridges map[protocol.StreamKind]*resilient.Bridge) {
	for kind, b := range bridges {
		c := b.Counters()
		fmt.Printf("%s: delivered=%d dropped_full=%d dropped_closed=%d\n",
			kind, c.Delivered, c.DroppedFull, c.DroppedClosed)
	}
}

func printEvent(ev protocol.StreamEvent) {
	fmt.Printf("[%s] t=%.3f %s %+v\n", ev.SessionID, ev.Time, ev.Record.Kind(), ev.Record)
}
