package services

import (
	"context"
	"sync"
	"testing"
	"time"

	"caravanshare/internal/models"
	"caravanshare/internal/repositories/memory"
	"caravanshare/pkg/cache"
	"caravanshare/pkg/logger"
	"caravanshare/pkg/payment"

	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type recordingNotifier struct {
	mu   sync.Mutex
	sent []*models.Notification
}

func (r *recordingNotifier) Notify(ctx context.Context, n *models.Notification) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sent = append(r.sent, n)
}

func (r *recordingNotifier) types() []models.NotificationType {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]models.NotificationType, 0, len(r.sent))
	for _, n := range r.sent {
		out = append(out, n.Type)
	}
	return out
}

type fixture struct {
	now          time.Time
	users        *memory.UserRepository
	caravans     *memory.CaravanRepository
	reservations *memory.ReservationRepository
	payments     *memory.PaymentRepository
	reviews      *memory.ReviewRepository
	settlements  *memory.SettlementRepository
	messages     *memory.MessageRepository
	cache        *cache.MemoryCache
	notifier     *recordingNotifier

	availability AvailabilityService
	booking      ReservationService
	payment      PaymentService
	trust        TrustService
	rating       RatingService
	review       ReviewService
	settlement   SettlementService
	messaging    MessageService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		now:          time.Date(2024, time.May, 20, 9, 30, 0, 0, time.UTC),
		users:        memory.NewUserRepository(),
		caravans:     memory.NewCaravanRepository(),
		reservations: memory.NewReservationRepository(),
		payments:     memory.NewPaymentRepository(),
		reviews:      memory.NewReviewRepository(),
		settlements:  memory.NewSettlementRepository(),
		messages:     memory.NewMessageRepository(),
		cache:        cache.NewMemoryCache(),
		notifier:     &recordingNotifier{},
	}
	log := logger.Nop()
	clock := func() time.Time { return f.now }
	opts := BookingOptions{Location: time.UTC, LockTTL: time.Second, Currency: "KRW", Now: clock, PlatformFeePercent: 10}
	locker := cache.NewLocalLocker()

	f.availability = NewAvailabilityService(f.reservations, time.UTC, clock)
	f.booking = NewReservationService(f.reservations, f.caravans, f.availability, locker, f.cache, f.notifier, opts, log)
	f.payment = NewPaymentService(f.payments, f.reservations, payment.NewMockProcessor(clock), locker, f.cache, nil, f.notifier, opts, log)
	f.trust = NewTrustService(f.users, f.reviews, log)
	f.rating = NewRatingService(f.reservations, f.trust, log)
	f.review = NewReviewService(f.reviews, f.reservations, f.caravans, nil, f.trust, f.notifier, log)
	f.settlement = NewSettlementService(f.settlements, f.payments, f.users, locker, nil, f.notifier, opts, log)
	f.messaging = NewMessageService(f.messages, f.users, f.notifier, clock, log)
	return f
}

func date(month time.Month, day int) time.Time {
	return time.Date(2024, month, day, 0, 0, 0, 0, time.UTC)
}

func (f *fixture) user(t *testing.T, name string) *models.User {
	t.Helper()
	u := &models.User{
		DisplayName: name,
		Email:       name + "@example.com",
		TrustScore:  models.DefaultTrustScore,
	}
	require.NoError(t, f.users.Create(context.Background(), u))
	return u
}

func (f *fixture) caravan(t *testing.T, host *models.User, dailyRate float64) *models.Caravan {
	t.Helper()
	c := &models.Caravan{
		HostID:    host.ID,
		Name:      "Camper " + host.DisplayName,
		DailyRate: dailyRate,
		Capacity:  4,
		Status:    models.CaravanStatusAvailable,
	}
	require.NoError(t, f.caravans.Create(context.Background(), c))
	require.NoError(t, f.users.SetHost(context.Background(), host.ID))
	return c
}

func (f *fixture) reserve(t *testing.T, guest *models.User, c *models.Caravan, start, end time.Time) *models.Reservation {
	t.Helper()
	r, err := f.booking.Create(context.Background(), guest.ID, &CreateReservationInput{
		CaravanID: c.ID,
		StartDate: start,
		EndDate:   end,
	})
	require.NoError(t, err)
	return r
}

// completed books, approves and pays a stay.
func (f *fixture) completed(t *testing.T, guest *models.User, c *models.Caravan, start, end time.Time) *models.Reservation {
	t.Helper()
	ctx := context.Background()
	r := f.reserve(t, guest, c, start, end)
	_, err := f.booking.Approve(ctx, r.ID, c.HostID)
	require.NoError(t, err)
	paid, err := f.payment.Pay(ctx, r.ID, guest.ID)
	require.NoError(t, err)
	return paid
}

func (f *fixture) reload(t *testing.T, id primitive.ObjectID) *models.User {
	t.Helper()
	u, err := f.users.GetByID(context.Background(), id)
	require.NoError(t, err)
	return u
}
