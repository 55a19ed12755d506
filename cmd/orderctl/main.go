package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"

	"go.uber.org/zap"

	"github.com/eyewearvn/storefront/internal/backend"
	"github.com/eyewearvn/storefront/internal/config"
	"github.com/eyewearvn/storefront/internal/domain"
	"github.com/eyewearvn/storefront/internal/service"
	"github.com/eyewearvn/storefront/pkg/errors"
)

const usage = `Usage: orderctl <command> [args]

Commands:
  show <order-id>                          Show an order with its status and payment window
  actions <order-id> [customer|admin]      List the actions offered for an order
  act <order-id> <action> [key=value...]   Perform an action (reason=, note=, tracking_number=, carrier=, audience=)
  watch <order-id>                         Follow the payment countdown until it expires
  import <variant:qty>... [--notes=...]    Create and complete an import note
  drafts                                   List import notes left in draft
  complete-draft <note-id>                 Complete a draft import note
  cancel-draft <note-id>                   Cancel a draft import note
  low-stock [threshold]                    List low-stock variants

Environment: API_BASE_URL, API_TOKEN`

func main() {
	if len(os.Args) < 2 {
		fmt.Println(usage)
		os.Exit(1)
	}

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}
	if cfg.Backend.Token == "" {
		fmt.Fprintln(os.Stderr, "⚠️  API_TOKEN is not set, the shop API will likely answer 401")
	}

	// Initialize logger
	logger, _ := zap.NewDevelopment()
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	client := backend.NewClient(cfg.Backend, logger).WithToken(cfg.Backend.Token, func() {
		fmt.Fprintln(os.Stderr, "🔒 API_TOKEN was rejected, log in again to get a new one")
	})
	orders := service.NewOrderGateway(client, service.NewInFlightGuard(), nil, logger)
	inventory := service.NewInventoryService(client, cfg.Shop.LowStockThreshold, logger)

	args := os.Args[2:]
	switch os.Args[1] {
	case "show":
		err = showOrder(ctx, orders, args)
	case "actions":
		err = listActions(ctx, orders, args)
	case "act":
		err = performAction(ctx, orders, args)
	case "watch":
		err = watchOrder(ctx, orders, logger, args)
	case "import":
		err = importStock(ctx, inventory, args)
	case "drafts":
		err = listDrafts(ctx, inventory)
	case "complete-draft":
		err = resolveDraft(ctx, args, inventory.CompleteDraft, "completed")
	case "cancel-draft":
		err = resolveDraft(ctx, args, inventory.CancelDraft, "canceled")
	case "low-stock":
		err = lowStock(ctx, inventory, args)
	default:
		fmt.Println(usage)
		os.Exit(1)
	}

	if err != nil {
		fmt.Fprintf(os.Stderr, "❌ %s\n", errors.UserMessage(err, err.Error()))
		logger.Debug("Command failed", zap.String("command", os.Args[1]), zap.Error(err))
		os.Exit(1)
	}
}

func parseID(args []string, what string) (int64, error) {
	if len(args) < 1 {
		return 0, fmt.Errorf("missing %s", what)
	}
	id, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid %s: %q", what, args[0])
	}
	return id, nil
}

func printView(view *service.OrderView) {
	o := view.Order
	fmt.Printf("📦 Order %s (id %d)\n", o.OrderNumber, o.ID)
	fmt.Printf("Status: %s [%s]\n", view.Display.Label, o.Status)
	fmt.Printf("Payment: %s, %s\n", view.PaymentMethodLabel, view.PaymentStatusLabel)
	fmt.Printf("Total: %s\n", view.TotalText)
	if o.TrackingNumber != "" {
		fmt.Printf("Tracking: %s %s\n", o.Carrier, o.TrackingNumber)
	}
	if view.Countdown.Visible {
		marker := "⏳"
		if view.Countdown.Urgent {
			marker = "⚠️ "
		}
		fmt.Printf("%s %s\n", marker, view.Countdown.Text)
	}
}

func showOrder(ctx context.Context, orders service.OrderGateway, args []string) error {
	id, err := parseID(args, "order id")
	if err != nil {
		return err
	}
	view, err := orders.View(ctx, id, domain.AudienceCustomer)
	if err != nil {
		return err
	}
	printView(view)
	return nil
}

func listActions(ctx context.Context, orders service.OrderGateway, args []string) error {
	id, err := parseID(args, "order id")
	if err != nil {
		return err
	}
	audience := domain.AudienceCustomer
	if len(args) > 1 {
		audience = domain.Audience(args[1])
		if !audience.IsValid() {
			return fmt.Errorf("invalid audience %q", args[1])
		}
	}

	view, err := orders.View(ctx, id, audience)
	if err != nil {
		return err
	}
	printView(view)
	if len(view.Actions.Financial) == 0 && len(view.Actions.Lifecycle) == 0 {
		fmt.Println("\nNo actions available.")
		return nil
	}
	printGroup("Financial", view.Actions.Financial)
	printGroup("Lifecycle", view.Actions.Lifecycle)
	return nil
}

func printGroup(title string, actions []domain.Action) {
	if len(actions) == 0 {
		return
	}
	fmt.Printf("\n%s:\n", title)
	for _, a := range actions {
		label := string(a)
		if spec, ok := domain.SpecFor(a); ok {
			label = spec.Label
		}
		fmt.Printf("  - %s (%s)\n", a, label)
	}
}

func performAction(ctx context.Context, orders service.OrderGateway, args []string) error {
	id, err := parseID(args, "order id")
	if err != nil {
		return err
	}
	if len(args) < 2 {
		return fmt.Errorf("missing action")
	}

	req := service.ActionRequest{OrderID: id, Action: domain.Action(args[1]), Audience: domain.AudienceCustomer}
	if spec, ok := domain.SpecFor(req.Action); ok && spec.Audience != "" {
		req.Audience = spec.Audience
	}
	for _, kv := range args[2:] {
		key, value, ok := strings.Cut(kv, "=")
		if !ok {
			return fmt.Errorf("expected key=value, got %q", kv)
		}
		switch key {
		case "reason":
			req.Input.Reason = value
		case "note":
			req.Input.Note = value
		case "tracking_number":
			req.Input.TrackingNumber = value
		case "carrier":
			req.Input.Carrier = value
		case "audience":
			req.Audience = domain.Audience(value)
		default:
			return fmt.Errorf("unknown field %q", key)
		}
	}

	outcome, err := orders.Perform(ctx, req)
	if err != nil {
		if verr, ok := err.(*errors.ErrValidation); ok {
			for field, msgs := range verr.Fields {
				fmt.Fprintf(os.Stderr, "  %s: %s\n", field, strings.Join(msgs, ", "))
			}
		}
		return err
	}

	if outcome.PaymentURL != "" {
		fmt.Printf("💳 Payment link: %s\n", outcome.PaymentURL)
		return nil
	}
	fmt.Printf("✅ %s done", req.Action)
	if outcome.Message != "" {
		fmt.Printf(": %s", outcome.Message)
	}
	fmt.Println()
	if outcome.Stale {
		fmt.Println("⚠️  Could not reload the order, run `orderctl show` to see its new state")
		return nil
	}
	fmt.Println()
	printView(outcome.Order)
	return nil
}

func watchOrder(ctx context.Context, orders service.OrderGateway, logger *zap.Logger, args []string) error {
	id, err := parseID(args, "order id")
	if err != nil {
		return err
	}
	view, err := orders.View(ctx, id, domain.AudienceCustomer)
	if err != nil {
		return err
	}
	printView(view)

	watcher := service.NewExpirationWatcher(logger)
	expired := watcher.Watch(ctx, view.Order,
		func(cd domain.Countdown) {
			if cd.Visible {
				fmt.Printf("\r%s   ", cd.Text)
			}
		},
		func(ctx context.Context) {
			fmt.Println()
			refreshed, err := orders.View(ctx, id, domain.AudienceCustomer)
			if err != nil {
				fmt.Fprintf(os.Stderr, "❌ Failed to reload order: %s\n", errors.UserMessage(err, err.Error()))
				return
			}
			fmt.Println("⌛ Payment window closed")
			printView(refreshed)
		},
	)
	if !expired && ctx.Err() == nil {
		fmt.Println("No payment window to watch.")
	}
	return nil
}

func importStock(ctx context.Context, inventory service.InventoryService, args []string) error {
	var req domain.ImportRequest
	for _, arg := range args {
		if notes, ok := strings.CutPrefix(arg, "--notes="); ok {
			req.Notes = notes
			continue
		}
		variant, qty, ok := strings.Cut(arg, ":")
		if !ok {
			return fmt.Errorf("expected variant:qty, got %q", arg)
		}
		variantID, err := strconv.ParseInt(variant, 10, 64)
		if err != nil {
			return fmt.Errorf("invalid variant id %q", variant)
		}
		quantity, err := strconv.Atoi(qty)
		if err != nil {
			return fmt.Errorf("invalid quantity %q", qty)
		}
		req.Items = append(req.Items, domain.ImportNoteItem{VariantID: variantID, Quantity: quantity})
	}

	fmt.Printf("📥 Importing %d units across %d variants\n", req.TotalQuantity(), len(req.Items))
	result, err := inventory.Import(ctx, req)
	if err != nil {
		if partial, ok := err.(*errors.ErrPartialImport); ok {
			fmt.Fprintf(os.Stderr, "⚠️  Draft %d was created but not completed.\n", partial.DraftID)
			fmt.Fprintf(os.Stderr, "   Run `orderctl complete-draft %d` or `orderctl cancel-draft %d`.\n", partial.DraftID, partial.DraftID)
		}
		return err
	}
	fmt.Printf("✅ Import note %s completed (draft %d)\n", result.Note.ImportNumber, result.DraftID)
	return nil
}

func listDrafts(ctx context.Context, inventory service.InventoryService) error {
	drafts, err := inventory.ListDrafts(ctx)
	if err != nil {
		return err
	}
	if len(drafts) == 0 {
		fmt.Println("✅ No draft import notes")
		return nil
	}
	fmt.Printf("📝 %d draft import notes:\n", len(drafts))
	for _, d := range drafts {
		fmt.Printf("  #%d %s  %d items, %d units  %s\n",
			d.ID, d.ImportNumber, d.TotalItems, d.TotalQuantity, d.CreatedAt.Format("2006-01-02 15:04"))
	}
	return nil
}

func resolveDraft(ctx context.Context, args []string, op func(context.Context, int64) (*domain.ImportNote, error), verb string) error {
	id, err := parseID(args, "note id")
	if err != nil {
		return err
	}
	note, err := op(ctx, id)
	if err != nil {
		return err
	}
	fmt.Printf("✅ Import note %d %s (%s)\n", id, verb, note.Status)
	return nil
}

func lowStock(ctx context.Context, inventory service.InventoryService, args []string) error {
	threshold := 0
	if len(args) > 0 {
		n, err := strconv.Atoi(args[0])
		if err != nil || n < 1 {
			return fmt.Errorf("invalid threshold %q", args[0])
		}
		threshold = n
	}

	report, err := inventory.LowStock(ctx, threshold, false)
	if err != nil {
		return err
	}
	if len(report.Results) == 0 {
		fmt.Printf("✅ No variants at or below %d units\n", report.Threshold)
		return nil
	}
	fmt.Printf("📉 %d variants at or below %d units:\n", len(report.Results), report.Threshold)
	for _, v := range report.Results {
		fmt.Printf("  %-14s %-28s %3d  %s\n", v.SKU, v.ProductName, v.Stock, v.Level().Label())
	}
	return nil
}
