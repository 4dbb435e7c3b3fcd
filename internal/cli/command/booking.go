package command

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/yndnr/hyperlocal-go/internal/cli/connection"
	"github.com/yndnr/hyperlocal-go/internal/cli/guard"
	"github.com/yndnr/hyperlocal-go/internal/core/domain"
)

// now is replaced in tests.
var now = time.Now

// BookingCommand returns the booking subcommand group.
func BookingCommand() *cli.Command {
	return &cli.Command{
		Name:    "booking",
		Aliases: []string{"bookings"},
		Usage:   "Manage your bookings",
		Subcommands: []*cli.Command{
			{
				Name:  "list",
				Usage: "List your bookings",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "status", Usage: "Pending, Confirmed, Completed, Cancelled or All"},
					&cli.StringFlag{Name: "search", Aliases: []string{"q"}, Usage: "Match service, provider or booking id"},
				},
				Action: bookingList,
			},
			{
				Name:      "get",
				Usage:     "Show one booking",
				ArgsUsage: "BOOKING_ID",
				Action:    bookingGet,
			},
			{
				Name:  "create",
				Usage: "Book a service provider",
				Flags: []cli.Flag{
					&cli.Int64Flag{Name: "provider", Aliases: []string{"P"}, Usage: "Provider id"},
					&cli.StringFlag{Name: "date", Aliases: []string{"d"}, Usage: "Date (YYYY-MM-DD)"},
					&cli.StringFlag{Name: "time", Aliases: []string{"t"}, Usage: "Start time, a half-hour slot between 08:00 and 20:30"},
					&cli.StringFlag{Name: "notes", Aliases: []string{"n"}, Usage: "Notes for the provider"},
				},
				Action: bookingCreate,
			},
			{
				Name:      "cancel",
				Usage:     "Cancel a pending or confirmed booking",
				ArgsUsage: "BOOKING_ID",
				Flags: []cli.Flag{
					&cli.BoolFlag{Name: "force", Aliases: []string{"f"}, Usage: "Skip the status check"},
				},
				Action: bookingCancel,
			},
			{
				Name:   "slots",
				Usage:  "List bookable time slots",
				Action: bookingSlots,
			},
		},
	}
}

func bookingList(c *cli.Context) error {
	a, err := getApp(c)
	if err != nil {
		return err
	}
	if err := require(c, a, guard.PathBookings); err != nil {
		return err
	}

	var bookings []domain.Booking
	err = withSpinner(c, "Loading bookings", func(ctx context.Context) error {
		var err error
		bookings, err = a.API.Bookings.List(ctx)
		return err
	})
	if err != nil {
		return err
	}

	filtered := domain.FilterBookings(bookings, domain.BookingFilter{
		Status: c.String("status"),
		Query:  c.String("search"),
	})
	if len(filtered) == 0 && isTable(c) {
		if c.IsSet("status") || c.IsSet("search") {
			printf(c, "No bookings match the filter.\n")
		} else {
			printf(c, "No bookings yet. Create one with `booking create`.\n")
		}
		return nil
	}
	return render(c, filtered)
}

func bookingGet(c *cli.Context) error {
	a, err := getApp(c)
	if err != nil {
		return err
	}
	id, err := parseID(c, "booking id")
	if err != nil {
		return err
	}
	if err := require(c, a, guard.PathBookings); err != nil {
		return err
	}

	b, err := a.API.Bookings.Get(c.Context, id)
	if connection.IsNotFound(err) {
		return fmt.Errorf("booking %d not found", id)
	}
	if err != nil {
		return err
	}
	return render(c, b)
}

func bookingCreate(c *cli.Context) error {
	a, err := getApp(c)
	if err != nil {
		return err
	}

	req := domain.BookingRequest{
		ProviderID:  c.Int64("provider"),
		BookingDate: strings.TrimSpace(c.String("date")),
		BookingTime: strings.TrimSpace(c.String("time")),
		Notes:       strings.TrimSpace(c.String("notes")),
		Status:      domain.StatusPending,
	}
	if err := domain.ValidateBookingRequest(req, now()); err != nil {
		return err
	}
	if err := require(c, a, guard.PathNewBooking); err != nil {
		return err
	}

	var created *domain.Booking
	err = withSpinner(c, "Creating booking", func(ctx context.Context) error {
		var err error
		created, err = a.API.Bookings.Create(ctx, req)
		return err
	})
	if err != nil {
		return err
	}

	a.Navigator.Navigate(guard.PathBookings)
	if isTable(c) {
		printf(c, "Booking %d created for %s at %s.\n", created.ID, req.BookingDate, req.BookingTime)
		return nil
	}
	return render(c, created)
}

func bookingCancel(c *cli.Context) error {
	a, err := getApp(c)
	if err != nil {
		return err
	}
	id, err := parseID(c, "booking id")
	if err != nil {
		return err
	}
	if err := require(c, a, guard.PathBookings); err != nil {
		return err
	}

	if !c.Bool("force") {
		b, err := a.API.Bookings.Get(c.Context, id)
		if err != nil {
			return err
		}
		switch domain.NormalizeStatus(b.Status) {
		case domain.StatusPending, domain.StatusConfirmed, "":
		default:
			return domain.ErrInvalidArgument.WithDetails(
				fmt.Sprintf("booking %d is %s and cannot be cancelled", id, domain.NormalizeStatus(b.Status)))
		}
	}

	if err := a.API.Bookings.Cancel(c.Context, id); err != nil {
		return err
	}
	printf(c, "Booking %d cancelled.\n", id)
	return nil
}

func bookingSlots(c *cli.Context) error {
	return render(c, domain.TimeSlots())
}
