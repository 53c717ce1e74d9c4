package main

import (
	"fmt"
	"io"
	"os"

	"attractions/internal/config"
	"attractions/internal/diagnostics"
	"attractions/internal/env"
	"attractions/internal/logging"
	"attractions/internal/service"
	"attractions/pkg/graceful"
	"attractions/pkg/kafkaclient"

	"github.com/spf13/cobra"
)

var kinds []string

var rootCmd = &cobra.Command{
	Use:   "diagwatch",
	Short: "Print diagnostics events published by the attractions server",
	RunE:  run,
}

func init() {
	rootCmd.Flags().StringSliceVarP(&kinds, "kind", "k", nil, "only print these kinds (record_skipped, render_failed, tile_error, load_failed)")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func run(cmd *cobra.Command, _ []string) error {
	log := logging.New(os.Stderr, "info", "console")
	env.LoadEnv(log)

	cfg, err := config.Load(os.Getenv("ATTRACTIONS_CONFIG_DIR"))
	if err != nil {
		return err
	}
	log = logging.New(os.Stderr, cfg.LogLevel, cfg.LogFormat)

	ctx, cancel := graceful.Context(cmd.Context(), log)
	defer cancel()

	log.Info().
		Str("broker", cfg.Kafka.Broker).
		Str("topic", cfg.Kafka.Topic).
		Str("group", cfg.Kafka.GroupID).
		Msg("Connecting to Kafka")

	consumer := kafkaclient.NewKafkaConsumer(cfg.Kafka.Topic, cfg.Kafka.GroupID, cfg.Kafka.Broker, log)
	consumer.StartConsuming(ctx)
	defer consumer.Stop()

	iterator := service.NewIterator(consumer, diagnostics.DecodeEvent, log)
	watch(iterator.Objects(ctx), cmd.OutOrStdout(), kinds)

	log.Info().Msg("Diagnostics watch finished")
	return nil
}

// watch prints every event whose kind is in only, or every event when only
// is empty, until events is closed.
func watch(events <-chan *service.Decoded[diagnostics.Event], w io.Writer, only []string) {
	allowed := make(map[diagnostics.Kind]bool, len(only))
	for _, k := range only {
		allowed[diagnostics.Kind(k)] = true
	}
	for ev := range events {
		if len(allowed) > 0 && !allowed[ev.Data.Kind] {
			continue
		}
		fmt.Fprintln(w, format(ev.Data))
	}
}

func format(ev diagnostics.Event) string {
	line := fmt.Sprintf("%s %-14s %s", ev.Time.Format("2006-01-02T15:04:05Z07:00"), ev.Kind, ev.Message)
	if ev.AttractionID != nil {
		line += fmt.Sprintf(" (id=%d %s)", *ev.AttractionID, ev.Name)
	}
	return line
}
