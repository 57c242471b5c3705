package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"sort"
	"syscall"
	"time"

	"study-tracker-be/internal/config"
	"study-tracker-be/pkg/events"

	pktNats "study-tracker-be/pkg/nats"

	"github.com/spf13/cobra"
)

var (
	watchTypes  []string
	watchOutput string
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Stream provisioning and repair events",
	Long: `Stream events published on NATS as studies and assays are created and
their folders repaired. Only events published after the command starts are
shown.`,
	Example: `  # Follow repairs only, as line-delimited JSON
  repair watch --type FOLDER_REPAIRED --output json`,
	RunE: runWatch,
}

func init() {
	watchCmd.Flags().StringSliceVar(&watchTypes, "type",
		[]string{events.TypeStudyCreated, events.TypeAssayCreated, events.TypeFolderRepaired},
		"Event types to follow")
	watchCmd.Flags().StringVarP(&watchOutput, "output", "o", "default", "Output format (default or json)")
	rootCmd.AddCommand(watchCmd)
}

func runWatch(cmd *cobra.Command, args []string) error {
	if watchOutput != "default" && watchOutput != "json" {
		return fmt.Errorf("unknown output format %q (valid: default, json)", watchOutput)
	}
	cfg := config.Load()

	sub, err := pktNats.NewSubscriber(cfg.App.NatsURL)
	if err != nil {
		return err
	}
	defer sub.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	for _, eventType := range watchTypes {
		if err := sub.Subscribe(ctx, eventType, "", printEvent); err != nil {
			return fmt.Errorf("subscribe %s: %w", eventType, err)
		}
	}
	fmt.Fprintf(os.Stderr, "Watching %v (Ctrl+C to stop)\n", watchTypes)
	<-ctx.Done()
	return nil
}

func printEvent(_ context.Context, event events.Event) error {
	if watchOutput == "json" {
		return json.NewEncoder(os.Stdout).Encode(event.Payload())
	}
	data := event.Payload()
	delete(data, "type")
	delete(data, "occurred_at")
	keys := make([]string, 0, len(data))
	for k := range data {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	line := fmt.Sprintf("%s  %-16s", event.Timestamp().Local().Format(time.TimeOnly), event.EventType())
	for _, k := range keys {
		line += fmt.Sprintf(" %s=%v", k, data[k])
	}
	fmt.Println(line)
	return nil
}
