package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"

	"github.com/cx-tal-miterani/flight-checkout/internal/app"
	"github.com/cx-tal-miterani/flight-checkout/internal/checkout"
	"github.com/cx-tal-miterani/flight-checkout/internal/config"
	"github.com/cx-tal-miterani/flight-checkout/internal/logging"
	"github.com/cx-tal-miterani/flight-checkout/internal/models"
	"github.com/cx-tal-miterani/flight-checkout/internal/payment"
	"github.com/cx-tal-miterani/flight-checkout/internal/render"
)

const usage = `usage: checkout <command> [flags]

commands:
  run        search, book and pay for a flight
  reconcile  report payment attempts left open by a crash
  status     show a payment's status
  refund     refund a payment
`

func main() {
	if len(os.Args) < 2 {
		fmt.Fprint(os.Stderr, usage)
		os.Exit(2)
	}

	cfg := config.Load()
	logger := logging.Init(cfg.LogLevel, cfg.LogFormat)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	closers := app.Closers{}
	defer closers.Close(logger)

	var err error
	switch cmd, args := os.Args[1], os.Args[2:]; cmd {
	case "run":
		err = runCheckout(ctx, cfg, logger, closers, args)
	case "reconcile":
		err = reconcile(ctx, cfg, logger, closers)
	case "status":
		err = status(ctx, cfg, logger, closers, args)
	case "refund":
		err = refund(ctx, cfg, logger, closers, args)
	default:
		fmt.Fprint(os.Stderr, usage)
		os.Exit(2)
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		closers.Close(logger)
		os.Exit(1)
	}
}

// printNotifier echoes controller notifications to the terminal
type printNotifier struct {
	w io.Writer
}

func (p printNotifier) Notify(_ context.Context, _ string, n checkout.Notification) {
	fmt.Fprintf(p.w, "[%s] %s\n", n.Level, n.Message)
}

func newProcessor(ctx context.Context, cfg config.Config, logger *slog.Logger, closers app.Closers) (*payment.Processor, error) {
	j, err := app.OpenJournal(ctx, cfg, closers, logger)
	if err != nil {
		return nil, err
	}
	return payment.NewProcessor(app.NewAPIClient(cfg, logger), j, logger), nil
}

func runCheckout(ctx context.Context, cfg config.Config, logger *slog.Logger, closers app.Closers, args []string) error {
	fs := flag.NewFlagSet("run", flag.ExitOnError)
	var (
		from       = fs.String("from", "", "departure airport code")
		to         = fs.String("to", "", "arrival airport code")
		date       = fs.String("date", "", "departure date (YYYY-MM-DD)")
		passengers = fs.Int("passengers", 1, "number of passengers")
		class      = fs.String("class", string(models.SeatClassEconomy), "seat class")
		pick       = fs.Int("pick", 1, "which search result to book, counting from 1")
		coupon     = fs.String("coupon", "", "coupon code to apply")
		name       = fs.String("name", "", "passenger name")
		email      = fs.String("email", "", "passenger email")
		phone      = fs.String("phone", "", "passenger phone")
		method     = fs.String("method", string(models.PaymentMethodCreditCard), "payment method")
		card       = fs.String("card", "", "card number")
		cardName   = fs.String("card-name", "", "name on card")
		expiry     = fs.String("expiry", "", "card expiry (MM/YY)")
		cvv        = fs.String("cvv", "", "card CVV")
		upi        = fs.String("upi", "", "UPI id")
		bank       = fs.String("bank", "", "netbanking bank code")
		resume     = fs.String("resume", "", "resume from a booking handoff key instead of searching")
	)
	fs.Parse(args)

	seatClass, ok := models.ParseSeatClass(*class)
	if !ok {
		return fmt.Errorf("%w: %s", checkout.ErrInvalidSeatClass, *class)
	}

	processor, err := newProcessor(ctx, cfg, logger, closers)
	if err != nil {
		return err
	}
	executor, err := app.NewPaymentExecutor(cfg, processor, closers, logger)
	if err != nil {
		return err
	}
	handoffs, err := app.OpenHandoffStore(cfg, closers)
	if err != nil {
		return err
	}

	out := os.Stdout
	ctrl := checkout.NewController(
		app.NewAPIClient(cfg, logger),
		executor,
		checkout.WithHandoffStore(handoffs),
		checkout.WithLogger(logger),
		checkout.WithNotifier(printNotifier{w: out}),
	)

	s := checkout.NewSession()
	if err := ctrl.Prefetch(ctx, s); err != nil {
		return err
	}
	fmt.Fprintln(out, render.Coupons(s.Catalog.Coupons, 3))

	if *resume != "" {
		if err := ctrl.Resume(ctx, s, *resume); err != nil {
			return err
		}
	} else {
		flights, err := ctrl.Search(ctx, s, models.SearchQuery{
			DepartureAirport: strings.ToUpper(*from),
			ArrivalAirport:   strings.ToUpper(*to),
			DepartureDate:    *date,
			Passengers:       *passengers,
			SeatClass:        seatClass,
		})
		if err != nil {
			return err
		}
		if len(flights) == 0 {
			return errors.New("no flights found")
		}
		for _, f := range flights {
			fmt.Fprintln(out, render.FlightCard(f, nil))
		}
		if *pick < 1 || *pick > len(flights) {
			return fmt.Errorf("-pick must be between 1 and %d", len(flights))
		}

		sel, err := ctrl.SelectFlight(ctx, s, flights[*pick-1].ID)
		if err != nil {
			return err
		}
		fmt.Fprintln(out, render.PriceDetails(sel.Quote))

		if *coupon != "" {
			if _, err := ctrl.ApplyCoupon(ctx, s, *coupon); err != nil {
				var rejected *checkout.CouponRejectedError
				if !errors.As(err, &rejected) {
					return err
				}
			}
		}
		fmt.Fprintln(out, render.FinalPricing(sel.Quote, sel.Coupon))

		booking, err := ctrl.CreateBooking(ctx, s, models.Passenger{Name: *name, Email: *email, Phone: *phone})
		if err != nil {
			return err
		}
		fmt.Fprintln(out, render.PaymentSummary(*booking, sel.Quote, sel.Coupon))
		fmt.Fprintf(out, "handoff key: %s\n\n", s.HandoffKey)
	}

	fmt.Fprintln(out, render.PaymentMethods(s.Catalog.PaymentMethods))
	chosen := models.PaymentMethodID(*method)
	if err := ctrl.ChoosePaymentMethod(ctx, s, chosen); err != nil {
		return err
	}
	if chosen == models.PaymentMethodEMI {
		fmt.Fprintln(out, render.EMI(s.EMIPlan()))
	}

	details := models.PaymentDetails{
		Card: models.CardDetails{
			CardNumber: checkout.FormatCardNumber(*card),
			CardName:   *cardName,
			CardExpiry: checkout.FormatCardExpiry(*expiry),
			CardCVV:    checkout.FormatCardCVV(*cvv),
		},
		UPI:        models.UPIDetails{UPIID: *upi},
		Netbanking: models.NetbankingDetails{BankCode: *bank},
	}
	if _, err := ctrl.SubmitPayment(ctx, s, details); err != nil {
		if key := s.PendingPaymentKey(); key != "" {
			fmt.Fprintf(out, "payment %s is unresolved; run `checkout reconcile` before retrying\n", key)
		}
		return err
	}

	if confirmed, ok := s.State.(*checkout.Confirmed); ok {
		fmt.Fprintln(out, render.Confirmation(confirmed.Booking))
	}
	fmt.Fprintln(out, render.Session(s.View()))
	return nil
}

func reconcile(ctx context.Context, cfg config.Config, logger *slog.Logger, closers app.Closers) error {
	processor, err := newProcessor(ctx, cfg, logger, closers)
	if err != nil {
		return err
	}

	report, err := processor.Reconcile(ctx)
	if err != nil {
		return err
	}

	fmt.Printf("settled: %d  pending: %d  unknown: %d  failed: %d\n",
		len(report.Settled), len(report.Pending), len(report.Unknown), len(report.Failed))
	for _, a := range report.Settled {
		fmt.Printf("  settled  %s  payment=%s  %s\n", a.Key, a.PaymentID, a.Status)
	}
	for _, a := range report.Pending {
		fmt.Printf("  pending  %s  payment=%s  booking=%s\n", a.Key, a.PaymentID, a.BookingID)
	}
	for _, a := range report.Unknown {
		fmt.Printf("  unknown  %s  booking=%s\n", a.Key, a.BookingID)
	}
	for key, err := range report.Failed {
		fmt.Printf("  failed   %s  %v\n", key, err)
	}
	return nil
}

func status(ctx context.Context, cfg config.Config, logger *slog.Logger, closers app.Closers, args []string) error {
	fs := flag.NewFlagSet("status", flag.ExitOnError)
	id := fs.String("payment", "", "payment id")
	fs.Parse(args)
	if *id == "" {
		return errors.New("-payment is required")
	}

	processor, err := newProcessor(ctx, cfg, logger, closers)
	if err != nil {
		return err
	}
	st, err := processor.Status(ctx, *id)
	if err != nil {
		return err
	}
	return printJSON(st)
}

func refund(ctx context.Context, cfg config.Config, logger *slog.Logger, closers app.Closers, args []string) error {
	fs := flag.NewFlagSet("refund", flag.ExitOnError)
	var (
		id     = fs.String("payment", "", "payment id")
		amount = fs.Float64("amount", 0, "amount to refund")
		reason = fs.String("reason", "customer request", "refund reason")
	)
	fs.Parse(args)
	if *id == "" || *amount <= 0 {
		return errors.New("-payment and a positive -amount are required")
	}

	processor, err := newProcessor(ctx, cfg, logger, closers)
	if err != nil {
		return err
	}
	r, err := processor.Refund(ctx, *id, *amount, *reason)
	if err != nil {
		return err
	}
	return printJSON(r)
}

func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
