// README: demo command: runs the ten example customers from the original
// requirements against the live schedule.
package main

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"saguaro/internal/app"
	"saguaro/internal/config"
	"saguaro/internal/http/handlers"
	"saguaro/internal/logger"
	"saguaro/internal/modules/scheduling"
)

type demoCustomer struct {
	address      string
	services     int
	availability string
}

var demoCustomers = []demoCustomer{
	{
		address:      "100 W Kesler Ln Chandler, AZ 85225 United States",
		services:     3,
		availability: "Flexible weekday mornings until 11am. Tuesdays only after 5pm. Saturdays client is unavailable. Sundays flexible anytime.",
	},
	{
		address:      "112 W Kesler Ln Chandler, AZ 85225 United States",
		services:     2,
		availability: "Monday, Wednesday, and Friday available after 4pm. Thursday available all day. Weekends flexible mornings only.",
	},
	{
		address:      "19972 E Vallejo St Queen Creek, AZ 85142 United States",
		services:     1,
		availability: "Client prefers appointments only on Mondays and Wednesdays before 2pm. Strict schedule otherwise.",
	},
	{
		address:      "10320 E Catalyst Ave Mesa, AZ 85212 United States",
		services:     4,
		availability: "Flexible most weekdays after 3pm. Saturdays available all day. Sundays unavailable.",
	},
	{
		address:      "4098 E Baseline Rd Mesa, AZ 85206 United States",
		services:     2,
		availability: "Tuesday, Thursday, and Saturday mornings flexible. Friday strictly available between 12-3pm.",
	},
	{
		address:      "1635 W Inverness Dr Tempe, AZ 85282 United States",
		services:     1,
		availability: "Only available Monday through Friday evenings after 6pm. Weekends fully flexible.",
	},
	{
		address:      "17101 N Elko Dr Surprise, AZ 85374 United States",
		services:     3,
		availability: "Tuesday and Thursday mornings only. Saturday afternoons flexible. Client unavailable on Sundays.",
	},
	{
		address:      "17478 W Maui Ln Surprise, AZ 85388 United States",
		services:     2,
		availability: "Monday through Friday available between 9am-12pm. Client is unavailable evenings and weekends.",
	},
	{
		address:      "19730 N 83rd Dr Peoria, AZ 85382 United States",
		services:     1,
		availability: "Flexible most weekdays except Wednesday. Saturday mornings available. Sundays unavailable.",
	},
	{
		address:      "4343 W Sandra Cir Glendale, AZ 85308 United States",
		services:     4,
		availability: "Flexible schedule Monday-Friday. Saturday only available before 10am. Sundays strictly unavailable.",
	},
}

func demoCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "demo",
		Short: "Run the example customers from the requirements document",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return runDemo(ctx)
		},
	}
}

func runDemo(ctx context.Context) error {
	log := logger.New("demo")

	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	a, err := app.New(ctx, cfg)
	if err != nil {
		return err
	}
	defer a.Close()

	if a.Parser == nil {
		return fmt.Errorf("demo requires the availability parser; set ai.gemini_key")
	}

	existing, err := a.Snapshot(ctx)
	if err != nil {
		log.Warn().Err(err).Msg("appointment snapshot unavailable, scoring against an empty schedule")
		existing = nil
	}
	fmt.Printf("Scoring against %d existing appointments\n", len(existing))

	for _, c := range demoCustomers {
		fmt.Printf("\n%s\n", c.address)
		fmt.Printf("  services: %d\n", c.services)
		fmt.Printf("  availability: %s\n", c.availability)

		windows, err := a.Parser.ParseAvailability(ctx, c.availability)
		if err != nil {
			fmt.Printf("  error: %v\n", err)
			continue
		}
		suggestions, err := a.Engine.Suggest(ctx, scheduling.NewRequest{
			Address:  c.address,
			City:     handlers.CityFromAddress(c.address),
			Services: c.services,
			Windows:  windows,
		}, existing)
		if err != nil {
			fmt.Printf("  error: %v\n", err)
			continue
		}
		for i, s := range suggestions {
			fmt.Printf("  %d. %s %s (%s) score %.0f\n", i+1, s.Date, s.Time, s.DayOfWeek, s.Score)
			fmt.Printf("     %s\n", s.Explanation)
			fmt.Printf("     zone %s, %.1f mi, %d min travel, %d min visit, %d in zone, %d that day\n",
				s.Zone, s.DistanceMiles, s.TravelMinutes, s.DurationMinutes, s.AppointmentsInZone, s.TotalAppointmentsThatDay)
		}
		if len(suggestions) == 0 {
			fmt.Println("  no suggestions")
		}
	}
	return nil
}
