// Command travelctl is a terminal client for the Pine Hotel API.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"

	"pine_hotel/internal/adapters/marketplace"
	"pine_hotel/internal/adapters/observability"
	"pine_hotel/internal/shared"
	"pine_hotel/internal/session"
)

const usage = `usage: travelctl <command> [flags] [args]

commands:
  login -email E -password P [-base URL]   sign in and remember the session
  logout                                   forget the session
  whoami                                   show the signed-in user
  hotels [-q TEXT] [-city C] [-owner ID] [-limit N] [-cursor ID]
  hotel <id>                               hotel with its rooms
  rooms [-in DATE -out DATE] <hotelID>     rooms, with availability for a stay
  cars [-city C] [-driver]
  tours [-location L]
  book-room -room ID -in DATE -out DATE [-units N]
  book-car -car ID -from DATE -to DATE [-driver]
  book-tour -tour ID [-people N]
  bookings [-kind K] [-status S] [-hotel ID]
  cancel <id> | confirm <id> | complete <id>
  summary [-from DATE] [-to DATE]          revenue dashboard (default: this month)
  report <months>                          monthly revenue for the last N months
`

type cli struct {
	cfg   shared.Config
	store *session.Store
	out   io.Writer
	now   func() time.Time
}

func main() {
	_ = godotenv.Load()
	cfg := shared.Load()
	log.Logger = observability.NewCLILogger(cfg.AppEnv)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	c := &cli{cfg: cfg, store: session.NewStore(cfg.SessionFile), out: os.Stdout, now: time.Now}
	if err := c.run(ctx, os.Args[1:]); err != nil {
		if errors.Is(err, errUsage) {
			if err != errUsage {
				fmt.Fprintln(os.Stderr, "error:", err)
			}
			fmt.Fprint(os.Stderr, usage)
			os.Exit(2)
		}
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

var errUsage = errors.New("usage")

func (c *cli) run(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return errUsage
	}
	cmd, rest := args[0], args[1:]
	switch cmd {
	case "login":
		return c.login(ctx, rest)
	case "logout":
		return c.logout()
	case "whoami":
		return c.whoami(ctx)
	case "hotels":
		return c.hotels(ctx, rest)
	case "hotel":
		return c.hotel(ctx, rest)
	case "rooms":
		return c.rooms(ctx, rest)
	case "cars":
		return c.cars(ctx, rest)
	case "tours":
		return c.tours(ctx, rest)
	case "book-room":
		return c.bookRoom(ctx, rest)
	case "book-car":
		return c.bookCar(ctx, rest)
	case "book-tour":
		return c.bookTour(ctx, rest)
	case "bookings":
		return c.bookings(ctx, rest)
	case "cancel", "confirm", "complete":
		return c.move(ctx, cmd, rest)
	case "summary":
		return c.summary(ctx, rest)
	case "report":
		return c.report(ctx, rest)
	case "help", "-h", "--help":
		fmt.Fprint(c.out, usage)
		return nil
	}
	return fmt.Errorf("unknown command %q: %w", cmd, errUsage)
}

// client builds an API client from the saved session, falling back to API_BASE_URL.
func (c *cli) client() (*marketplace.Client, session.Session, error) {
	sess, err := c.store.Load()
	if err != nil {
		return nil, sess, err
	}
	base := c.cfg.APIBaseURL
	if sess.BaseURL != "" {
		base = sess.BaseURL
	}
	cl, err := marketplace.New(base, c.cfg.ClientRPS)
	if err != nil {
		return nil, sess, err
	}
	if sess.Valid(c.now()) {
		cl = cl.WithToken(sess.Token)
	} else if sess.Token != "" {
		log.Warn().Time("expired_at", sess.ExpiresAt).Msg("session expired, run travelctl login")
	}
	return cl, sess, nil
}
