package cmd

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/frahmantamala/plant-dashboard/internal/cache"
	"github.com/frahmantamala/plant-dashboard/internal/core/events"
	"github.com/frahmantamala/plant-dashboard/internal/dashboard"
	"github.com/frahmantamala/plant-dashboard/pkg/logger"
	"github.com/spf13/cobra"
)

var eventCmd = &cobra.Command{
	Use:   "event",
	Short: "Event management commands",
	Long:  `Inspect and publish domain events on the in-process event bus`,
}

var listEventTypesCmd = &cobra.Command{
	Use:   "types",
	Short: "List the domain event types",
	Run: func(cmd *cobra.Command, args []string) {
		for _, t := range events.Types() {
			fmt.Fprintln(cmd.OutOrStdout(), t)
		}
	},
}

var publishEventCmd = &cobra.Command{
	Use:   "publish [event-type]",
	Short: "Publish a domain event",
	Long: `Publish a domain event for debugging. When redis is enabled the dashboard
cache of the affected departments is invalidated, exactly as the server does.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		if ctx == nil {
			ctx = context.Background()
		}
		return publishEvent(ctx, args[0])
	},
}

var (
	eventDepartments []int64
	eventSubjectID   int64
	eventActorID     int64
	eventCategory    string
	eventReason      string
	eventFromStatus  string
	eventToStatus    string
)

func buildEvent(eventType string) (events.Event, error) {
	switch eventType {
	case events.EventTypeReportSubmitted, events.EventTypeReportApproved, events.EventTypeReportRejected:
		if len(eventDepartments) != 1 {
			return nil, fmt.Errorf("%s needs exactly one --department", eventType)
		}
		return events.NewReportEvent(eventType, eventSubjectID, eventDepartments[0], eventCategory, eventActorID, eventReason), nil
	case events.EventTypeEquipmentStatusChanged:
		return events.NewEquipmentStatusChangedEvent(eventSubjectID, eventFromStatus, eventToStatus, eventActorID, eventDepartments), nil
	default:
		return nil, fmt.Errorf("unknown event type %q, expected one of %s", eventType, strings.Join(events.Types(), ", "))
	}
}

func publishEvent(ctx context.Context, eventType string) error {
	event, err := buildEvent(eventType)
	if err != nil {
		return err
	}

	lg := logger.LoggerWrapper()
	bus := events.NewEventBus(lg)

	bus.Subscribe(eventType, func(ctx context.Context, event events.Event) error {
		lg.Info("event handled",
			"event_id", event.EventID(),
			"event_type", event.EventType(),
			"payload", event.Payload())
		return nil
	})

	cfg, err := loadConfig(configPath)
	if err != nil {
		lg.Warn("config not loaded, skipping cache invalidation", "error", err)
	} else if cfg.Redis.Enabled {
		client, err := cache.NewRedisClient(ctx, cfg.Redis.Address, cfg.Redis.Password, cfg.Redis.DB)
		if err != nil {
			return fmt.Errorf("failed to connect to redis: %w", err)
		}
		defer client.Close()
		invalidator := dashboard.NewService(nil, nil, nil, nil, nil, lg,
			dashboard.WithCache(cache.NewRedisCache(client, "plant-dashboard"), cfg.Redis.DashboardTTL))
		invalidator.Subscribe(bus)
	}

	lg.Info("publishing event", "event_type", eventType, "event_id", event.EventID())

	pubCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := bus.PublishSync(pubCtx, event); err != nil {
		return fmt.Errorf("failed to publish event: %w", err)
	}

	lg.Info("event published")
	return nil
}

func init() {
	publishEventCmd.Flags().Int64SliceVar(&eventDepartments, "department", nil, "affected department id (repeatable)")
	publishEventCmd.Flags().Int64Var(&eventSubjectID, "id", 0, "report or equipment id")
	publishEventCmd.Flags().Int64Var(&eventActorID, "actor", 0, "acting user id")
	publishEventCmd.Flags().StringVar(&eventCategory, "category", "", "report data category key")
	publishEventCmd.Flags().StringVar(&eventReason, "reason", "", "rejection reason")
	publishEventCmd.Flags().StringVar(&eventFromStatus, "from", "", "previous equipment status")
	publishEventCmd.Flags().StringVar(&eventToStatus, "to", "", "new equipment status")

	eventCmd.AddCommand(listEventTypesCmd)
	eventCmd.AddCommand(publishEventCmd)
}
