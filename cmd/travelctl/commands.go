package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	"pine_hotel/internal/adapters/marketplace"
	"pine_hotel/internal/domain"
	"pine_hotel/internal/session"
)

func newFlags(name string) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	return fs
}

func parse(fs *flag.FlagSet, args []string) error {
	if err := fs.Parse(args); err != nil {
		return fmt.Errorf("%s: %v: %w", fs.Name(), err, errUsage)
	}
	return nil
}

// argID reads the single positional id of commands like "hotel 12".
func argID(fs *flag.FlagSet, what string) (int64, error) {
	if fs.NArg() != 1 {
		return 0, fmt.Errorf("%s: expected one %s: %w", fs.Name(), what, errUsage)
	}
	id, err := strconv.ParseInt(fs.Arg(0), 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("%s: %s must be a positive number", fs.Name(), what)
	}
	return id, nil
}

func money(cents int64) string {
	sign := ""
	if cents < 0 {
		sign, cents = "-", -cents
	}
	return fmt.Sprintf("%s%d.%02d", sign, cents/100, cents%100)
}

func table(out io.Writer, header string, rows func(w io.Writer)) error {
	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, header)
	rows(tw)
	return tw.Flush()
}

// ---- session ----

func (c *cli) login(ctx context.Context, args []string) error {
	fs := newFlags("login")
	email := fs.String("email", "", "account email")
	password := fs.String("password", "", "account password")
	base := fs.String("base", "", "API base URL (default API_BASE_URL)")
	if err := parse(fs, args); err != nil {
		return err
	}
	if *email == "" || *password == "" {
		return fmt.Errorf("login: -email and -password are required: %w", errUsage)
	}
	if *base == "" {
		*base = c.cfg.APIBaseURL
	}
	cl, err := marketplace.New(*base, c.cfg.ClientRPS)
	if err != nil {
		return err
	}
	s, err := cl.Login(ctx, *email, *password)
	if err != nil {
		return err
	}
	if err := c.store.Save(session.Session{
		BaseURL: cl.BaseURL(), Token: s.Token, ExpiresAt: s.ExpiresAt, Email: s.User.Email, Role: s.User.Role,
	}); err != nil {
		return err
	}
	fmt.Fprintf(c.out, "signed in as %s (%s) until %s\n", s.User.Email, s.User.Role, s.ExpiresAt.Local().Format(time.RFC1123))
	return nil
}

func (c *cli) logout() error {
	if err := c.store.Clear(); err != nil {
		return err
	}
	fmt.Fprintf(c.out, "signed out, removed %s\n", c.store.Path())
	return nil
}

func (c *cli) whoami(ctx context.Context) error {
	cl, sess, err := c.client()
	if err != nil {
		return err
	}
	if !sess.Valid(c.now()) {
		return fmt.Errorf("not signed in, run travelctl login")
	}
	u, err := cl.Me(ctx)
	if err != nil {
		return err
	}
	fmt.Fprintf(c.out, "%s <%s> role=%s api=%s\n", u.Name, u.Email, u.Role, cl.BaseURL())
	return nil
}

// ---- catalog ----

func (c *cli) hotels(ctx context.Context, args []string) error {
	fs := newFlags("hotels")
	var f marketplace.HotelFilter
	fs.StringVar(&f.Q, "q", "", "search text")
	fs.StringVar(&f.City, "city", "", "city")
	fs.IntVar(&f.Limit, "limit", 20, "page size")
	fs.Int64Var(&f.Cursor, "cursor", 0, "continue after this hotel id")
	fs.Int64Var(&f.OwnerID, "owner", 0, "only hotels of this owner id")
	if err := parse(fs, args); err != nil {
		return err
	}
	cl, _, err := c.client()
	if err != nil {
		return err
	}
	page, err := cl.ListHotels(ctx, f)
	if err != nil {
		return err
	}
	if err := table(c.out, "ID\tNAME\tCITY\tSTARS", func(w io.Writer) {
		for _, h := range page.Items {
			fmt.Fprintf(w, "%d\t%s\t%s\t%d\n", h.ID, h.Name, h.City, h.Stars)
		}
	}); err != nil {
		return err
	}
	if page.NextCursor != nil {
		fmt.Fprintf(c.out, "more: travelctl hotels -cursor %d\n", *page.NextCursor)
	}
	return nil
}

func (c *cli) hotel(ctx context.Context, args []string) error {
	fs := newFlags("hotel")
	if err := parse(fs, args); err != nil {
		return err
	}
	id, err := argID(fs, "hotel id")
	if err != nil {
		return err
	}
	cl, _, err := c.client()
	if err != nil {
		return err
	}
	h, err := cl.GetHotel(ctx, id)
	if err != nil {
		return err
	}
	fmt.Fprintf(c.out, "%s (%d stars)\n%s, %s %s\n", h.Name, h.Stars, h.Address, h.City, h.Country)
	if h.Description != "" {
		fmt.Fprintln(c.out, h.Description)
	}
	if len(h.Amenities) > 0 {
		fmt.Fprintln(c.out, "amenities:", strings.Join(h.Amenities, ", "))
	}
	return table(c.out, "ROOM\tNAME\tGUESTS\tUNITS\tPER NIGHT", func(w io.Writer) {
		for _, r := range h.Rooms {
			fmt.Fprintf(w, "%d\t%s\t%d\t%d\t%s\n", r.ID, r.Name, r.Capacity, r.Units, money(r.PriceCents))
		}
	})
}

func (c *cli) rooms(ctx context.Context, args []string) error {
	fs := newFlags("rooms")
	in := fs.String("in", "", "check-in date YYYY-MM-DD")
	out := fs.String("out", "", "check-out date YYYY-MM-DD")
	if err := parse(fs, args); err != nil {
		return err
	}
	id, err := argID(fs, "hotel id")
	if err != nil {
		return err
	}
	cl, _, err := c.client()
	if err != nil {
		return err
	}
	if *in == "" && *out == "" {
		rooms, err := cl.ListRooms(ctx, id)
		if err != nil {
			return err
		}
		return table(c.out, "ID\tNAME\tTYPE\tGUESTS\tUNITS\tPER NIGHT", func(w io.Writer) {
			for _, r := range rooms {
				fmt.Fprintf(w, "%d\t%s\t%s\t%d\t%d\t%s\n", r.ID, r.Name, r.Type, r.Capacity, r.Units, money(r.PriceCents))
			}
		})
	}
	checkIn, err := domain.ParseDate("in", *in)
	if err != nil {
		return err
	}
	checkOut, err := domain.ParseDate("out", *out)
	if err != nil {
		return err
	}
	avail, err := cl.Availability(ctx, id, checkIn, checkOut)
	if err != nil {
		return err
	}
	return table(c.out, "ID\tNAME\tFREE\tNIGHTS\tTOTAL", func(w io.Writer) {
		for _, a := range avail {
			fmt.Fprintf(w, "%d\t%s\t%d\t%d\t%s\n", a.Room.ID, a.Room.Name, a.Available, a.Nights, money(a.QuoteCents))
		}
	})
}

func (c *cli) cars(ctx context.Context, args []string) error {
	fs := newFlags("cars")
	city := fs.String("city", "", "city")
	driver := fs.Bool("driver", false, "only cars offered with a driver")
	if err := parse(fs, args); err != nil {
		return err
	}
	cl, _, err := c.client()
	if err != nil {
		return err
	}
	cars, err := cl.ListCars(ctx, *city, *driver)
	if err != nil {
		return err
	}
	return table(c.out, "ID\tCAR\tSEATS\tCITY\tPER DAY\tDRIVER/DAY", func(w io.Writer) {
		for _, car := range cars {
			drv := "-"
			if car.DriverAvailable {
				drv = money(car.DriverPriceCents)
			}
			fmt.Fprintf(w, "%d\t%s %s\t%d\t%s\t%s\t%s\n", car.ID, car.Make, car.Model, car.Seats, car.City, money(car.PriceCents), drv)
		}
	})
}

func (c *cli) tours(ctx context.Context, args []string) error {
	fs := newFlags("tours")
	location := fs.String("location", "", "location")
	if err := parse(fs, args); err != nil {
		return err
	}
	cl, _, err := c.client()
	if err != nil {
		return err
	}
	tours, err := cl.ListTours(ctx, *location)
	if err != nil {
		return err
	}
	return table(c.out, "ID\tTITLE\tLOCATION\tSTARTS\tDAYS\tSEATS\tPER PERSON", func(w io.Writer) {
		for _, t := range tours {
			fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%d\t%d\t%s\n", t.ID, t.Title, t.Location,
				t.StartDate.Format(domain.DateLayout), t.DurationDays, t.Capacity, money(t.PriceCents))
		}
	})
}

// ---- bookings ----

func (c *cli) book(ctx context.Context, in marketplace.BookingInput) error {
	cl, sess, err := c.client()
	if err != nil {
		return err
	}
	if !sess.Valid(c.now()) {
		return fmt.Errorf("not signed in, run travelctl login")
	}
	b, err := cl.Book(ctx, in)
	if err != nil {
		return err
	}
	fmt.Fprintf(c.out, "booked #%d (%s) %s %s..%s total %s, status %s\n", b.ID, b.Reference, b.Kind,
		b.Start.Format(domain.DateLayout), b.End.Format(domain.DateLayout), money(b.TotalCents), b.Status)
	return nil
}

func (c *cli) bookRoom(ctx context.Context, args []string) error {
	fs := newFlags("book-room")
	room := fs.Int64("room", 0, "room id")
	in := fs.String("in", "", "check-in date YYYY-MM-DD")
	out := fs.String("out", "", "check-out date YYYY-MM-DD")
	units := fs.Int("units", 1, "rooms of this type")
	if err := parse(fs, args); err != nil {
		return err
	}
	if *room <= 0 {
		return fmt.Errorf("book-room: -room is required: %w", errUsage)
	}
	return c.book(ctx, marketplace.BookingInput{Kind: domain.KindRoom, ItemID: *room, Start: *in, End: *out, Quantity: *units})
}

func (c *cli) bookCar(ctx context.Context, args []string) error {
	fs := newFlags("book-car")
	car := fs.Int64("car", 0, "car id")
	from := fs.String("from", "", "pick-up date YYYY-MM-DD")
	to := fs.String("to", "", "drop-off date YYYY-MM-DD")
	driver := fs.Bool("driver", false, "hire a driver")
	if err := parse(fs, args); err != nil {
		return err
	}
	if *car <= 0 {
		return fmt.Errorf("book-car: -car is required: %w", errUsage)
	}
	return c.book(ctx, marketplace.BookingInput{Kind: domain.KindCar, ItemID: *car, Start: *from, End: *to, WithDriver: *driver})
}

func (c *cli) bookTour(ctx context.Context, args []string) error {
	fs := newFlags("book-tour")
	tour := fs.Int64("tour", 0, "tour id")
	people := fs.Int("people", 1, "number of people")
	if err := parse(fs, args); err != nil {
		return err
	}
	if *tour <= 0 {
		return fmt.Errorf("book-tour: -tour is required: %w", errUsage)
	}
	return c.book(ctx, marketplace.BookingInput{Kind: domain.KindTour, ItemID: *tour, Quantity: *people})
}

func (c *cli) bookings(ctx context.Context, args []string) error {
	fs := newFlags("bookings")
	var f marketplace.BookingFilter
	fs.StringVar(&f.Kind, "kind", "", "room, car or tour")
	fs.StringVar(&f.Status, "status", "", "pending, confirmed, cancelled or completed")
	hotel := fs.Int64("hotel", 0, "only room bookings of this hotel id")
	if err := parse(fs, args); err != nil {
		return err
	}
	if *hotel > 0 {
		f.HotelIDs = []int64{*hotel}
	}
	cl, _, err := c.client()
	if err != nil {
		return err
	}
	bs, err := cl.ListBookings(ctx, f)
	if err != nil {
		return err
	}
	return table(c.out, "ID\tREF\tKIND\tITEM\tFROM\tTO\tQTY\tTOTAL\tSTATUS\tGUEST", func(w io.Writer) {
		for _, b := range bs {
			fmt.Fprintf(w, "%d\t%s\t%s\t%d\t%s\t%s\t%d\t%s\t%s\t%s\n", b.ID, shortRef(b.Reference), b.Kind, b.ItemID,
				b.Start.Format(domain.DateLayout), b.End.Format(domain.DateLayout), b.Quantity, money(b.TotalCents), b.Status, b.GuestEmail)
		}
	})
}

func shortRef(ref string) string {
	if len(ref) > 8 {
		return ref[:8]
	}
	return ref
}

func (c *cli) move(ctx context.Context, action string, args []string) error {
	fs := newFlags(action)
	if err := parse(fs, args); err != nil {
		return err
	}
	id, err := argID(fs, "booking id")
	if err != nil {
		return err
	}
	cl, _, err := c.client()
	if err != nil {
		return err
	}
	var b domain.Booking
	switch action {
	case "cancel":
		b, err = cl.Cancel(ctx, id)
	case "confirm":
		b, err = cl.Confirm(ctx, id)
	default:
		b, err = cl.Complete(ctx, id)
	}
	if err != nil {
		return err
	}
	fmt.Fprintf(c.out, "booking #%d is now %s\n", b.ID, b.Status)
	return nil
}
