package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strconv"

	"github.com/tdhoang/evdealer-client/apiclient"
	apprestock "github.com/tdhoang/evdealer-client/application/restock"
	"github.com/tdhoang/evdealer-client/cmd/config"
	"github.com/tdhoang/evdealer-client/constant"
	"github.com/tdhoang/evdealer-client/model"
	agencyrepo "github.com/tdhoang/evdealer-client/repository/agency"
	restockrepo "github.com/tdhoang/evdealer-client/repository/restock"
	"github.com/tdhoang/evdealer-client/utils/logger"
	"go.uber.org/zap"
)

func main() {
	cfg := config.Load()

	if err := logger.Init(cfg.Environment); err != nil {
		panic(err)
	}
	defer logger.Close()

	if len(os.Args) < 2 {
		usage()
		os.Exit(2)
	}

	client, err := apiclient.New(apiclient.Config{
		BaseURL: cfg.BaseURL,
		Timeout: cfg.RequestTimeout,
		Store:   apiclient.NewFileStore(cfg.TokenFile),
	})
	if err != nil {
		logger.Fatal("init client", zap.Error(err))
	}

	app := apprestock.NewRestockApp(
		cfg.Role,
		restockrepo.NewRestockRepository(client, cfg.Role),
		agencyrepo.NewAgencyRepository(client),
		apprestock.NewDetailCache(),
		nil,
	)

	ctx := context.Background()
	if err := run(ctx, os.Args[1], os.Args[2:], cfg, client, app); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, command string, args []string, cfg *config.Config, client *apiclient.Client, app apprestock.RestockApp) error {
	switch command {
	case "login":
		return runLogin(ctx, args, client)
	case "logout":
		return client.Logout()
	case "list":
		return runList(ctx, args, cfg, app)
	case "detail":
		return runDetail(ctx, args, app)
	case "advance", "cancel", "accept":
		return runTransition(ctx, command, args, app)
	case "delete":
		return runDelete(ctx, args, app)
	case "agencies":
		return runAgencies(ctx, app)
	default:
		usage()
		return fmt.Errorf("unknown command %q", command)
	}
}

func runLogin(ctx context.Context, args []string, client *apiclient.Client) error {
	fs := flag.NewFlagSet("login", flag.ExitOnError)
	email := fs.String("email", os.Getenv("EVDEALER_EMAIL"), "account email")
	password := fs.String("password", os.Getenv("EVDEALER_PASSWORD"), "account password")
	_ = fs.Parse(args)

	user, err := client.Login(ctx, &model.Credentials{Email: *email, Password: *password})
	if err != nil {
		return err
	}
	fmt.Printf("signed in as %s (%s)\n", user.Name, user.Role)
	return nil
}

func runList(ctx context.Context, args []string, cfg *config.Config, app apprestock.RestockApp) error {
	fs := flag.NewFlagSet("list", flag.ExitOnError)
	page := fs.Int("page", 1, "page number")
	limit := fs.Int("limit", 20, "page size")
	status := fs.String("status", "", "status filter")
	keyword := fs.String("search", "", "client-side search keyword")
	refresh := fs.Bool("refresh", false, "clear caches before loading")
	_ = fs.Parse(args)

	params := &model.ListRestockParams{
		Page:     *page,
		Limit:    *limit,
		Status:   constant.RestockStatus(*status),
		AgencyID: cfg.AgencyID,
	}

	var orders []model.RestockOrder
	var pagination *model.PaginationInfo
	var err error
	if *refresh {
		orders, pagination, err = app.Refresh(ctx, params)
	} else {
		_ = app.LoadAgencies(ctx)
		orders, pagination, err = app.LoadOrders(ctx, params)
	}
	if err != nil {
		return err
	}
	app.ResolveNames(ctx, orders)
	orders = app.Search(orders, *keyword)

	for _, o := range orders {
		names, _ := app.CachedNames(o.ID)
		fmt.Printf("#%-6d %-10s %-24s %-20s %-16s qty=%d total=%s VND\n",
			o.ID,
			o.Status.Meta().Label,
			nonEmpty(names.MotorbikeName, "-"),
			nonEmpty(names.WarehouseName, "-"),
			nonEmpty(app.AgencyName(o.AgencyID), "-"),
			o.Quantity,
			o.FinalPrice.StringFixed(0),
		)
	}
	if pagination != nil {
		fmt.Printf("page %d/%d (%d orders)\n", pagination.Page, pagination.TotalPages, pagination.Total)
	}
	return nil
}

func runDetail(ctx context.Context, args []string, app apprestock.RestockApp) error {
	orderID, err := parseOrderID(args)
	if err != nil {
		return err
	}
	order, err := app.LoadOrderDetail(ctx, orderID)
	if err != nil {
		return err
	}
	fmt.Printf("Order #%d\n", order.ID)
	fmt.Printf("  status:    %s\n", order.Status.Meta().Label)
	if order.ElectricMotorbike != nil {
		fmt.Printf("  vehicle:   %s\n", order.ElectricMotorbike.Name)
	}
	if order.Warehouse != nil {
		fmt.Printf("  warehouse: %s (%s)\n", order.Warehouse.Name, order.Warehouse.Location)
	}
	fmt.Printf("  quantity:  %d\n", order.Quantity)
	fmt.Printf("  subtotal:  %s VND\n", order.Subtotal.StringFixed(0))
	fmt.Printf("  total:     %s VND\n", order.FinalPrice.StringFixed(0))
	fmt.Printf("  ordered:   %s\n", order.OrderAt.Format("2006-01-02 15:04"))
	if actions := app.Actions(order); len(actions) > 0 {
		fmt.Printf("  actions:   %v\n", actions)
	}
	return nil
}

func runTransition(ctx context.Context, command string, args []string, app apprestock.RestockApp) error {
	orderID, err := parseOrderID(args)
	if err != nil {
		return err
	}
	order, err := app.LoadOrderDetail(ctx, orderID)
	if err != nil {
		return err
	}

	var updated *model.RestockOrder
	switch command {
	case "advance":
		updated, err = app.Advance(ctx, order)
	case "cancel":
		updated, err = app.Cancel(ctx, order)
	case "accept":
		updated, err = app.Accept(ctx, order)
	}
	if err != nil {
		return err
	}
	fmt.Printf("order #%d is now %s\n", updated.ID, updated.Status.Meta().Label)
	return nil
}

func runDelete(ctx context.Context, args []string, app apprestock.RestockApp) error {
	orderID, err := parseOrderID(args)
	if err != nil {
		return err
	}
	order, err := app.LoadOrderDetail(ctx, orderID)
	if err != nil {
		return err
	}
	if err := app.Delete(ctx, order); err != nil {
		return err
	}
	fmt.Printf("order #%d deleted\n", orderID)
	return nil
}

func runAgencies(ctx context.Context, app apprestock.RestockApp) error {
	if err := app.LoadAgencies(ctx); err != nil {
		return err
	}
	fmt.Println("agency directory loaded")
	return nil
}

func parseOrderID(args []string) (uint64, error) {
	if len(args) < 1 {
		return 0, fmt.Errorf("order id is required")
	}
	orderID, err := strconv.ParseUint(args[0], 10, 64)
	if err != nil || orderID == 0 {
		return 0, fmt.Errorf("invalid order id %q", args[0])
	}
	return orderID, nil
}

func nonEmpty(s, fallback string) string {
	if s == "" {
		return fallback
	}
	return s
}

func usage() {
	fmt.Fprintln(os.Stderr, `usage: evdealer-cli <command> [flags]

commands:
  login     -email -password      sign in and store the session
  logout                          drop the stored session
  list      [-page -limit -status -search -refresh]
  detail    <order-id>
  advance   <order-id>            move the order one step forward
  cancel    <order-id>
  accept    <order-id>            accept a draft order (manager)
  delete    <order-id>            delete a draft order (manager)
  agencies                        load the agency directory`)
}
