// README: suggest command: one-shot suggestions for a single address.
package main

import (
	"context"
	"encoding/json"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"saguaro/internal/ai"
	"saguaro/internal/app"
	"saguaro/internal/config"
	"saguaro/internal/http/handlers"
	"saguaro/internal/logger"
	"saguaro/internal/modules/availability"
	"saguaro/internal/modules/scheduling"
)

func suggestCmd() *cobra.Command {
	var (
		address  string
		city     string
		services int
		avail    string
	)
	cmd := &cobra.Command{
		Use:   "suggest",
		Short: "Print appointment suggestions for a single address",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return runSuggest(ctx, address, city, services, avail)
		},
	}
	cmd.Flags().StringVar(&address, "address", "", "customer address (required)")
	cmd.Flags().StringVar(&city, "city", "", "customer city; derived from the address when empty")
	cmd.Flags().IntVar(&services, "services", 1, "number of services in the appointment")
	cmd.Flags().StringVar(&avail, "availability", "Flexible weekdays 9am-5pm", "customer availability in free text")
	_ = cmd.MarkFlagRequired("address")
	return cmd
}

func runSuggest(ctx context.Context, address, city string, services int, avail string) error {
	log := logger.New("suggest")

	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	a, err := app.New(ctx, cfg)
	if err != nil {
		return err
	}
	defer a.Close()

	var windows []availability.RawWindow
	if a.Parser != nil {
		windows, err = a.Parser.ParseAvailability(ctx, avail)
		if err != nil {
			return err
		}
	} else {
		windows = ai.FallbackWindows(time.Now(), a.Policies.Location)
	}

	existing, err := a.Snapshot(ctx)
	if err != nil {
		log.Warn().Err(err).Msg("appointment snapshot unavailable, scoring against an empty schedule")
		existing = nil
	}

	if city == "" {
		city = handlers.CityFromAddress(address)
	}
	suggestions, err := a.Engine.Suggest(ctx, scheduling.NewRequest{
		Address:  address,
		City:     city,
		Services: services,
		Windows:  windows,
	}, existing)
	if err != nil {
		return err
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(suggestions)
}
