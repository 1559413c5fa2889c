package app_test

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"pine_hotel/internal/domain"
	"pine_hotel/internal/storage/memory"
)

// ---- fakes ----

// fakeCache keeps JSON payloads the way the redis adapter does.
type fakeCache struct {
	store map[string][]byte
	hits  int
	dels  []string
}

func (c *fakeCache) Get(ctx context.Context, key string, dst any) (bool, error) {
	b, ok := c.store[key]
	if !ok {
		return false, nil
	}
	c.hits++
	return true, json.Unmarshal(b, dst)
}

func (c *fakeCache) Set(ctx context.Context, key string, v any, ttlSec int) error {
	if c.store == nil {
		c.store = map[string][]byte{}
	}
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	c.store[key] = b
	return nil
}

func (c *fakeCache) Del(ctx context.Context, key string) error {
	c.dels = append(c.dels, key)
	delete(c.store, key)
	return nil
}

// fakeTokens issues readable tokens of the form "tok:<id>:<role>:<email>".
type fakeTokens struct{}

func (fakeTokens) Issue(u domain.User) (string, time.Time, error) {
	return fmt.Sprintf("tok:%d:%s:%s", u.ID, u.Role, u.Email), time.Now().Add(time.Hour), nil
}

func (fakeTokens) Parse(token string) (domain.Principal, error) {
	parts := strings.SplitN(token, ":", 4)
	if len(parts) != 4 || parts[0] != "tok" {
		return domain.Principal{}, domain.ErrUnauthorized
	}
	id, err := strconv.ParseInt(parts[1], 10, 64)
	if err != nil {
		return domain.Principal{}, domain.ErrUnauthorized
	}
	return domain.Principal{UserID: id, Role: domain.Role(parts[2]), Email: parts[3]}, nil
}

// ---- fixtures ----

func day(s string) time.Time {
	t, err := domain.ParseDate("test", s)
	if err != nil {
		panic(err)
	}
	return t
}

func clock(s string) func() time.Time {
	t := day(s).Add(9 * time.Hour)
	return func() time.Time { return t }
}

type world struct {
	store  *memory.Store
	root   domain.Principal
	owner  domain.Principal
	rival  domain.Principal
	guest  domain.Principal
	guest2 domain.Principal
	hotel  domain.Hotel
	room   domain.Room
	car    domain.Car
	guide  domain.Guide
	tour   domain.Tour
}

func principal(u domain.User) domain.Principal {
	return domain.Principal{UserID: u.ID, Email: u.Email, Role: u.Role}
}

// newWorld seeds one hotel with a two-unit room, a car with a driver and a tour.
func newWorld() *world {
	ctx := context.Background()
	st := memory.New()
	mk := func(email string, role domain.Role) domain.Principal {
		u, err := st.CreateUser(ctx, domain.User{Email: email, Name: email, Role: role, PasswordHash: "x"})
		if err != nil {
			panic(err)
		}
		return principal(u)
	}
	w := &world{store: st}
	w.root = mk("root@pine.test", domain.RoleSuperAdmin)
	w.owner = mk("owner@pine.test", domain.RoleAdmin)
	w.rival = mk("rival@pine.test", domain.RoleAdmin)
	w.guest = mk("ana@pine.test", domain.RoleGuest)
	w.guest2 = mk("bob@pine.test", domain.RoleGuest)

	must := func(err error) {
		if err != nil {
			panic(err)
		}
	}
	var err error
	w.hotel, err = st.CreateHotel(ctx, domain.Hotel{OwnerID: w.owner.UserID, Name: "Pine Lodge", City: "Tbilisi", Stars: 4})
	must(err)
	w.room, err = st.CreateRoom(ctx, domain.Room{HotelID: w.hotel.ID, Name: "Double", Capacity: 2, Units: 2, PriceCents: 10_000})
	must(err)
	w.car, err = st.CreateCar(ctx, domain.Car{Make: "Toyota", Model: "Land Cruiser", Seats: 7, City: "Tbilisi", PriceCents: 6_000, DriverAvailable: true, DriverPriceCents: 4_000})
	must(err)
	w.guide, err = st.CreateGuide(ctx, domain.Guide{Name: "Nino", Languages: []string{"en", "ka"}})
	must(err)
	gid := w.guide.ID
	w.tour, err = st.CreateTour(ctx, domain.Tour{Title: "Kazbegi", Location: "Stepantsminda", StartDate: day("2030-02-01"), DurationDays: 3, Capacity: 10, PriceCents: 25_000, GuideID: &gid})
	must(err)
	return w
}
