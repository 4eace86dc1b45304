package services

import (
	"context"
	"errors"
	"math"
	"sync"
	"time"

	"caravanshare/internal/models"
	"caravanshare/internal/utils"
	"caravanshare/pkg/cache"
	"caravanshare/pkg/logger"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Locker serialises work on one key. cache.RedisCache and cache.LocalLocker
// both satisfy it.
type Locker interface {
	Lock(ctx context.Context, key string, ttl time.Duration) (unlock func(), err error)
}

// Cache is the JSON key/value surface shared by cache.RedisCache and
// cache.MemoryCache.
type Cache interface {
	Get(ctx context.Context, key string, dest interface{}) error
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) error
	Delete(ctx context.Context, keys ...string) error
}

// Transactor runs fn atomically; database.MongoDB implements it.
type Transactor interface {
	WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}

type direct struct{}

func (direct) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

func orDirect(tx Transactor) Transactor {
	if tx == nil {
		return direct{}
	}
	return tx
}

// BookingOptions carries the calendar and locking settings shared by the
// reservation, payment and settlement services.
type BookingOptions struct {
	Location      *time.Location
	LockTTL       time.Duration
	BookedListTTL time.Duration
	Currency      string
	Now           func() time.Time

	// PlatformFeePercent is withheld from each payment before the host payout.
	PlatformFeePercent float64
}

func (o BookingOptions) withDefaults() BookingOptions {
	if o.Location == nil {
		o.Location = time.UTC
	}
	if o.LockTTL <= 0 {
		o.LockTTL = 10 * time.Second
	}
	if o.BookedListTTL <= 0 {
		o.BookedListTTL = 5 * time.Minute
	}
	if o.Currency == "" {
		o.Currency = utils.DefaultCurrency
	}
	if o.Now == nil {
		o.Now = time.Now
	}
	return o
}

// platformFee is rounded to a whole amount.
func (o BookingOptions) platformFee(amount float64) float64 {
	if o.PlatformFeePercent <= 0 {
		return 0
	}
	return math.Round(amount * o.PlatformFeePercent / 100)
}

// acquire returns an unlock that is safe to call more than once, so callers
// can release early and still defer it.
func acquire(ctx context.Context, locker Locker, key string, ttl time.Duration) (func(), error) {
	unlock, err := locker.Lock(ctx, key, ttl)
	if err != nil {
		if errors.Is(err, cache.ErrLockNotAcquired) {
			return nil, &utils.AppError{Kind: utils.KindConflict, Message: "resource is busy, try again", Err: err}
		}
		return nil, err
	}
	var once sync.Once
	return func() { once.Do(unlock) }, nil
}

// bookedRanges caches the blocking date ranges of a caravan.
type bookedRanges struct {
	cache Cache
	ttl   time.Duration
	log   *logger.Logger
}

func bookedRangesKey(caravanID primitive.ObjectID) string {
	return utils.CacheBookedRangesPrefix + caravanID.Hex()
}

func (b *bookedRanges) get(ctx context.Context, caravanID primitive.ObjectID) ([]models.DateRange, bool) {
	var ranges []models.DateRange
	err := b.cache.Get(ctx, bookedRangesKey(caravanID), &ranges)
	if err == nil {
		return ranges, true
	}
	if !errors.Is(err, cache.ErrCacheMiss) {
		b.log.WithError(err).WithField("caravan_id", caravanID.Hex()).Warn("Failed to read booked ranges from cache")
	}
	return nil, false
}

func (b *bookedRanges) put(ctx context.Context, caravanID primitive.ObjectID, ranges []models.DateRange) {
	if err := b.cache.Set(ctx, bookedRangesKey(caravanID), ranges, b.ttl); err != nil {
		b.log.WithError(err).WithField("caravan_id", caravanID.Hex()).Warn("Failed to cache booked ranges")
	}
}

func (b *bookedRanges) invalidate(ctx context.Context, caravanID primitive.ObjectID) {
	if err := b.cache.Delete(ctx, bookedRangesKey(caravanID)); err != nil {
		b.log.WithError(err).WithField("caravan_id", caravanID.Hex()).Warn("Failed to invalidate booked ranges")
	}
}
