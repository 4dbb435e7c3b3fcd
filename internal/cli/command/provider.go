package command

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/urfave/cli/v2"

	"github.com/yndnr/hyperlocal-go/internal/cli/connection"
	"github.com/yndnr/hyperlocal-go/internal/cli/guard"
	"github.com/yndnr/hyperlocal-go/internal/core/domain"
)

// ProviderCommand returns the provider subcommand group.
func ProviderCommand() *cli.Command {
	return &cli.Command{
		Name:    "provider",
		Aliases: []string{"providers"},
		Usage:   "Browse and manage service providers",
		Subcommands: []*cli.Command{
			{
				Name:  "list",
				Usage: "List providers",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "service", Aliases: []string{"s"}, Usage: "Only this service category (All for every category)"},
					&cli.StringFlag{Name: "search", Aliases: []string{"q"}, Usage: "Match name, service or description"},
				},
				Action: providerList,
			},
			{
				Name:      "get",
				Usage:     "Show one provider",
				ArgsUsage: "PROVIDER_ID",
				Action:    providerGet,
			},
			{
				Name:  "create",
				Usage: "Register yourself as a service provider",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "name", Usage: "Business name"},
					&cli.StringFlag{Name: "service", Aliases: []string{"s"}, Usage: "Service category"},
					&cli.StringFlag{Name: "area", Usage: "Area served"},
					&cli.StringFlag{Name: "experience", Usage: "Years of experience"},
					&cli.StringFlag{Name: "price-range", Usage: "Price range, e.g. 500-1500"},
					&cli.StringFlag{Name: "description", Aliases: []string{"d"}, Usage: "Description"},
					&cli.StringFlag{Name: "phone", Usage: "Contact phone"},
					&cli.Float64Flag{Name: "rating", Usage: "Initial rating (0-5)"},
				},
				Action: providerCreate,
			},
			{
				Name:      "delete",
				Usage:     "Delete a provider",
				ArgsUsage: "PROVIDER_ID",
				Action:    providerDelete,
			},
			{
				Name:   "categories",
				Usage:  "List service categories",
				Action: providerCategories,
			},
		},
	}
}

// parseID reads the single positional id argument.
func parseID(c *cli.Context, what string) (int64, error) {
	if c.NArg() != 1 {
		return 0, domain.ErrMissingArgument.WithDetails(what)
	}
	id, err := strconv.ParseInt(c.Args().First(), 10, 64)
	if err != nil || id <= 0 {
		return 0, domain.ErrInvalidArgument.WithDetails(fmt.Sprintf("%s %q", what, c.Args().First()))
	}
	return id, nil
}

func providerList(c *cli.Context) error {
	a, err := getApp(c)
	if err != nil {
		return err
	}
	if err := require(c, a, guard.PathProviders); err != nil {
		return err
	}

	var providers []domain.Provider
	err = withSpinner(c, "Loading providers", func(ctx context.Context) error {
		var err error
		providers, err = a.API.Providers.List(ctx)
		return err
	})
	if err != nil {
		return err
	}

	filtered := domain.FilterProviders(providers, domain.ProviderFilter{
		Service: c.String("service"),
		Query:   c.String("search"),
	})
	if len(filtered) == 0 && isTable(c) {
		printf(c, "No providers found.\n")
		return nil
	}
	return render(c, filtered)
}

func providerGet(c *cli.Context) error {
	a, err := getApp(c)
	if err != nil {
		return err
	}
	id, err := parseID(c, "provider id")
	if err != nil {
		return err
	}
	if err := require(c, a, guard.PathProviders); err != nil {
		return err
	}

	p, err := a.API.Providers.Get(c.Context, id)
	if connection.IsNotFound(err) {
		return fmt.Errorf("provider %d not found", id)
	}
	if err != nil {
		return err
	}
	return render(c, p)
}

func providerCreate(c *cli.Context) error {
	a, err := getApp(c)
	if err != nil {
		return err
	}

	req := domain.ProviderRequest{
		Name:        strings.TrimSpace(c.String("name")),
		ServiceType: strings.TrimSpace(c.String("service")),
		Area:        strings.TrimSpace(c.String("area")),
		Experience:  strings.TrimSpace(c.String("experience")),
		PriceRange:  strings.TrimSpace(c.String("price-range")),
		Description: strings.TrimSpace(c.String("description")),
		Phone:       strings.TrimSpace(c.String("phone")),
		Rating:      c.Float64("rating"),
	}
	if err := domain.ValidateProviderRequest(req); err != nil {
		return err
	}
	if err := require(c, a, guard.PathNewProvider); err != nil {
		return err
	}

	var created *domain.Provider
	err = withSpinner(c, "Registering provider", func(ctx context.Context) error {
		var err error
		created, err = a.API.Providers.Create(ctx, req)
		return err
	})
	if err != nil {
		return err
	}

	if isTable(c) {
		printf(c, "Provider %d created.\n", created.ID)
	}
	a.Navigator.Navigate(guard.PathProviders)
	return render(c, created)
}

func providerDelete(c *cli.Context) error {
	a, err := getApp(c)
	if err != nil {
		return err
	}
	id, err := parseID(c, "provider id")
	if err != nil {
		return err
	}
	if err := require(c, a, guard.PathProviders); err != nil {
		return err
	}

	if err := a.API.Providers.Delete(c.Context, id); err != nil {
		return err
	}
	printf(c, "Provider %d deleted.\n", id)
	return nil
}

func providerCategories(c *cli.Context) error {
	return render(c, domain.ServiceCategories)
}
