package main

import (
	"bytes"
	"context"
	"errors"
	"net/http/httptest"
	"path/filepath"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"pine_hotel/internal/adapters/auth"
	server "pine_hotel/internal/adapters/http_server"
	"pine_hotel/internal/app"
	"pine_hotel/internal/domain"
	"pine_hotel/internal/session"
	"pine_hotel/internal/shared"
	"pine_hotel/internal/storage/memory"
)

const (
	rootEmail = "root@pine.test"
	rootPass  = "root-password"
)

func newCLI(t *testing.T) (*cli, *memory.Store, *bytes.Buffer) {
	t.Helper()
	store := memory.New()
	tokens, err := auth.NewJWT("travelctl-test-secret-01", time.Hour)
	require.NoError(t, err)
	authSvc := app.NewAuthService(store, tokens).WithHashCost(bcrypt.MinCost)
	require.NoError(t, authSvc.EnsureSuperAdmin(context.Background(), rootEmail, rootPass))

	srv := server.New()
	srv.MountHandlers(&server.Handlers{
		Auth:     authSvc,
		Catalog:  app.NewCatalogService(store, nil, 0),
		Bookings: app.NewBookingService(store),
		Summary:  app.NewSummaryService(store),
		Tokens:   tokens,
	})
	ts := httptest.NewServer(srv.Mux())
	t.Cleanup(ts.Close)

	out := &bytes.Buffer{}
	c := &cli{
		cfg:   shared.Config{APIBaseURL: ts.URL, ClientRPS: 100, ReportWorkers: 2},
		store: session.NewStore(filepath.Join(t.TempDir(), "session.json")),
		out:   out,
		now:   time.Now,
	}
	return c, store, out
}

func TestCLI_LoginWhoamiLogout(t *testing.T) {
	c, _, out := newCLI(t)
	ctx := context.Background()

	err := c.run(ctx, []string{"whoami"})
	require.Error(t, err)

	require.NoError(t, c.run(ctx, []string{"login", "-email", rootEmail, "-password", rootPass}))
	assert.Contains(t, out.String(), "signed in as root@pine.test (superadmin)")

	sess, err := c.store.Load()
	require.NoError(t, err)
	assert.NotEmpty(t, sess.Token)
	assert.Equal(t, domain.RoleSuperAdmin, sess.Role)

	out.Reset()
	require.NoError(t, c.run(ctx, []string{"whoami"}))
	assert.Contains(t, out.String(), "<root@pine.test> role=superadmin")

	out.Reset()
	require.NoError(t, c.run(ctx, []string{"logout"}))
	assert.Contains(t, out.String(), c.store.Path())
	sess, err = c.store.Load()
	require.NoError(t, err)
	assert.Empty(t, sess.Token)
}

func TestCLI_BadLogin(t *testing.T) {
	c, _, _ := newCLI(t)
	err := c.run(context.Background(), []string{"login", "-email", rootEmail, "-password", "wrong-password"})
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrUnauthorized), err)
}

func TestCLI_CatalogAndBooking(t *testing.T) {
	c, store, out := newCLI(t)
	ctx := context.Background()

	h, err := store.CreateHotel(ctx, domain.Hotel{OwnerID: 1, Name: "Pine Lodge", City: "Tbilisi", Stars: 4})
	require.NoError(t, err)
	room, err := store.CreateRoom(ctx, domain.Room{HotelID: h.ID, Name: "Double", Capacity: 2, Units: 2, PriceCents: 9050})
	require.NoError(t, err)

	require.NoError(t, c.run(ctx, []string{"hotels", "-city", "Tbilisi"}))
	assert.Contains(t, out.String(), "Pine Lodge")

	out.Reset()
	require.NoError(t, c.run(ctx, []string{"hotels", "-owner", itoa(h.OwnerID + 1)}))
	assert.NotContains(t, out.String(), "Pine Lodge")

	out.Reset()
	require.NoError(t, c.run(ctx, []string{"hotel", itoa(h.ID)}))
	assert.Contains(t, out.String(), "90.50")

	in := domain.Day(time.Now()).AddDate(0, 0, 5)
	outDay := in.AddDate(0, 0, 2)
	err = c.run(ctx, []string{"book-room", "-room", itoa(room.ID), "-in", in.Format(domain.DateLayout), "-out", outDay.Format(domain.DateLayout)})
	require.Error(t, err, "booking needs a session")

	require.NoError(t, c.run(ctx, []string{"login", "-email", rootEmail, "-password", rootPass}))
	out.Reset()
	require.NoError(t, c.run(ctx, []string{"book-room", "-room", itoa(room.ID), "-in", in.Format(domain.DateLayout), "-out", outDay.Format(domain.DateLayout)}))
	assert.Contains(t, out.String(), "total 181.00, status pending")

	out.Reset()
	require.NoError(t, c.run(ctx, []string{"rooms", "-in", in.Format(domain.DateLayout), "-out", outDay.Format(domain.DateLayout), itoa(h.ID)}))
	assert.Contains(t, out.String(), "Double")

	out.Reset()
	require.NoError(t, c.run(ctx, []string{"bookings", "-status", "pending"}))
	assert.Contains(t, out.String(), "181.00")

	out.Reset()
	require.NoError(t, c.run(ctx, []string{"bookings", "-hotel", itoa(h.ID)}))
	assert.Contains(t, out.String(), "181.00")

	out.Reset()
	require.NoError(t, c.run(ctx, []string{"bookings", "-hotel", itoa(h.ID + 100)}))
	assert.NotContains(t, out.String(), "181.00")

	bs, err := store.ListBookings(ctx, domain.BookingFilter{})
	require.NoError(t, err)
	require.Len(t, bs, 1)

	out.Reset()
	require.NoError(t, c.run(ctx, []string{"confirm", itoa(bs[0].ID)}))
	assert.Contains(t, out.String(), "is now confirmed")

	out.Reset()
	require.NoError(t, c.run(ctx, []string{"summary", "-from", in.Format(domain.DateLayout), "-to", outDay.Format(domain.DateLayout)}))
	assert.Contains(t, out.String(), "181.00")
}

func TestCLI_Report(t *testing.T) {
	c, _, out := newCLI(t)
	ctx := context.Background()
	require.NoError(t, c.run(ctx, []string{"login", "-email", rootEmail, "-password", rootPass}))

	out.Reset()
	require.NoError(t, c.run(ctx, []string{"report", "3"}))
	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	require.Len(t, lines, 5)
	current, _ := monthRange(time.Now().UTC())
	assert.True(t, strings.HasPrefix(lines[1], current.AddDate(0, -2, 0).Format("2006-01")), lines[1])
	assert.True(t, strings.HasPrefix(lines[3], current.Format("2006-01")), lines[3])

	assert.Error(t, c.run(ctx, []string{"report", "0"}))
}

func TestCLI_Usage(t *testing.T) {
	c, _, _ := newCLI(t)
	assert.ErrorIs(t, c.run(context.Background(), nil), errUsage)
	assert.ErrorIs(t, c.run(context.Background(), []string{"fly"}), errUsage)
	assert.ErrorIs(t, c.run(context.Background(), []string{"hotel"}), errUsage)
}

func TestMoney(t *testing.T) {
	assert.Equal(t, "0.00", money(0))
	assert.Equal(t, "12.05", money(1205))
	assert.Equal(t, "-3.50", money(-350))
}

func itoa(id int64) string { return strconv.FormatInt(id, 10) }
