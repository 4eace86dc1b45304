package routes

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"caravanshare/internal/handlers"
	"caravanshare/internal/repositories/memory"
	"caravanshare/internal/services"
	"caravanshare/pkg/cache"
	"caravanshare/pkg/logger"
	"caravanshare/pkg/payment"
	"caravanshare/pkg/storage"
	"caravanshare/pkg/websocket"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

const secret = "routes-test-secret"

type envelope struct {
	Status string                 `json:"status"`
	Data   json.RawMessage        `json:"data"`
	Error  *struct{ Code string } `json:"error"`
}

type api struct {
	t      *testing.T
	engine *gin.Engine
}

func newAPI(t *testing.T) *api {
	t.Helper()
	gin.SetMode(gin.TestMode)

	log := logger.Nop()
	users := memory.NewUserRepository()
	caravans := memory.NewCaravanRepository()
	reservations := memory.NewReservationRepository()
	payments := memory.NewPaymentRepository()
	reviews := memory.NewReviewRepository()
	settlements := memory.NewSettlementRepository()
	messages := memory.NewMessageRepository()
	memCache := cache.NewMemoryCache()
	locker := cache.NewLocalLocker()

	provider, err := storage.New(context.Background(), storage.Config{LocalPath: t.TempDir(), LocalURL: "http://files.test"})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	hub := websocket.NewHub(log)
	go hub.Run(ctx)

	opts := services.BookingOptions{Location: time.UTC, LockTTL: time.Second, PlatformFeePercent: 10}
	notifications := services.NewNotificationService(hub, nil, users, log)
	availability := services.NewAvailabilityService(reservations, time.UTC, nil)
	booking := services.NewReservationService(reservations, caravans, availability, locker, memCache, notifications, opts, log)
	paymentService := services.NewPaymentService(payments, reservations, payment.NewMockProcessor(nil), locker, memCache, nil, notifications, opts, log)
	trust := services.NewTrustService(users, reviews, log)
	reviewService := services.NewReviewService(reviews, reservations, caravans, nil, trust, notifications, log)
	auth := services.NewAuthService(users, nil, memCache, services.AuthOptions{JWTSecret: secret, BcryptCost: bcrypt.MinCost}, log)

	engine := gin.New()
	Setup(engine, &Handlers{
		Auth:        handlers.NewAuthHandler(auth, ""),
		Caravan:     handlers.NewCaravanHandler(services.NewCaravanService(caravans, reservations, users, provider, log), booking, reviewService),
		Reservation: handlers.NewReservationHandler(booking, time.UTC),
		Payment:     handlers.NewPaymentHandler(paymentService),
		Rating:      handlers.NewRatingHandler(services.NewRatingService(reservations, trust, log)),
		Review:      handlers.NewReviewHandler(reviewService),
		User:        handlers.NewUserHandler(services.NewUserService(users, provider, log)),
		Message:     handlers.NewMessageHandler(services.NewMessageService(messages, users, notifications, nil, log)),
		Settlement:  handlers.NewSettlementHandler(services.NewSettlementService(settlements, payments, users, locker, nil, notifications, opts, log)),
		Health:      handlers.NewHealthHandler(nil),
		WebSocket:   websocket.NewHandler(hub, websocket.Options{}),
	}, Options{JWTSecret: secret, UserRepo: users})

	return &api{t: t, engine: engine}
}

func (a *api) do(method, path, token string, body interface{}) (int, envelope) {
	a.t.Helper()
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(a.t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	a.engine.ServeHTTP(w, req)

	var env envelope
	if w.Body.Len() > 0 {
		require.NoError(a.t, json.Unmarshal(w.Body.Bytes(), &env), w.Body.String())
	}
	return w.Code, env
}

func (a *api) register(name string) (token, id string) {
	a.t.Helper()
	code, env := a.do(http.MethodPost, "/api/v1/auth/register", "", gin.H{
		"display_name": name,
		"email":        name + "@example.com",
		"password":     "correct-horse",
	})
	require.Equal(a.t, http.StatusCreated, code)

	var data struct {
		User  struct{ ID string }
		Token struct {
			AccessToken string `json:"access_token"`
		}
	}
	require.NoError(a.t, json.Unmarshal(env.Data, &data))
	return data.Token.AccessToken, data.User.ID
}

func decodeID(t *testing.T, env envelope) string {
	t.Helper()
	var data struct{ ID string }
	require.NoError(t, json.Unmarshal(env.Data, &data))
	require.NotEmpty(t, data.ID)
	return data.ID
}

func errorCode(env envelope) string {
	if env.Error == nil {
		return ""
	}
	return env.Error.Code
}

func TestBookingFlow(t *testing.T) {
	a := newAPI(t)
	hostToken, hostID := a.register("host")
	guestToken, guestID := a.register("guest")
	otherToken, _ := a.register("other")

	code, env := a.do(http.MethodPost, "/api/v1/caravans", hostToken, gin.H{
		"name": "Forest Nest", "daily_rate": 100000, "capacity": 4, "location": "Gangneung",
	})
	require.Equal(t, http.StatusCreated, code)
	caravanID := decodeID(t, env)

	stay := gin.H{"caravan_id": caravanID, "start_date": "2031-06-01", "end_date": "2031-06-04"}

	code, env = a.do(http.MethodPost, "/api/v1/reservations", hostToken, stay)
	assert.Equal(t, http.StatusForbidden, code, "hosts cannot book")

	code, env = a.do(http.MethodPost, "/api/v1/reservations", guestToken, stay)
	require.Equal(t, http.StatusCreated, code)
	reservationID := decodeID(t, env)

	code, env = a.do(http.MethodPost, "/api/v1/reservations", otherToken, gin.H{
		"caravan_id": caravanID, "start_date": "2031-06-02", "end_date": "2031-06-05",
	})
	require.Equal(t, http.StatusCreated, code, "pending requests do not block")
	rivalID := decodeID(t, env)

	code, _ = a.do(http.MethodPut, "/api/v1/reservations/"+reservationID+"/approve", guestToken, nil)
	assert.Equal(t, http.StatusForbidden, code)

	code, _ = a.do(http.MethodPost, "/api/v1/payments", guestToken, gin.H{"reservation_id": reservationID})
	assert.Equal(t, http.StatusBadRequest, code, "unapproved reservations cannot be paid")

	code, _ = a.do(http.MethodPut, "/api/v1/reservations/"+reservationID+"/approve", hostToken, nil)
	require.Equal(t, http.StatusOK, code)

	code, env = a.do(http.MethodPut, "/api/v1/reservations/"+rivalID+"/approve", hostToken, nil)
	assert.Equal(t, http.StatusConflict, code)
	assert.Equal(t, "CONFLICT", errorCode(env))

	code, env = a.do(http.MethodGet, "/api/v1/caravans/"+caravanID+"/booked-dates", "", nil)
	require.Equal(t, http.StatusOK, code)
	var ranges []struct{ Start, End time.Time }
	require.NoError(t, json.Unmarshal(env.Data, &ranges))
	require.Len(t, ranges, 1)
	assert.Equal(t, time.Date(2031, time.June, 1, 0, 0, 0, 0, time.UTC), ranges[0].Start.UTC())

	code, _ = a.do(http.MethodPost, "/api/v1/payments", otherToken, gin.H{"reservation_id": reservationID})
	assert.Equal(t, http.StatusForbidden, code)

	code, env = a.do(http.MethodPost, "/api/v1/payments", guestToken, gin.H{"reservation_id": reservationID})
	require.Equal(t, http.StatusOK, code)
	var paid struct {
		Status        string
		PaymentStatus string `json:"payment_status"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &paid))
	assert.Equal(t, "completed", paid.Status)
	assert.Equal(t, "paid", paid.PaymentStatus)

	code, env = a.do(http.MethodPost, "/api/v1/payments", guestToken, gin.H{"reservation_id": reservationID})
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "ALREADY_PAID", errorCode(env))

	code, _ = a.do(http.MethodPost, "/api/v1/ratings/host", guestToken, gin.H{"reservation_id": reservationID, "rating": 5})
	assert.Equal(t, http.StatusBadRequest, code, "host rating waits for the review")

	code, _ = a.do(http.MethodPost, "/api/v1/reviews", guestToken, gin.H{
		"reservation_id": reservationID, "caravan_id": caravanID, "rating": 4, "content": "Quiet and clean",
	})
	require.Equal(t, http.StatusCreated, code)

	code, env = a.do(http.MethodPost, "/api/v1/reviews", guestToken, gin.H{
		"reservation_id": reservationID, "rating": 4, "content": "Again",
	})
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "ALREADY_RATED", errorCode(env))

	code, env = a.do(http.MethodPost, "/api/v1/ratings/guest", hostToken, gin.H{"reservation_id": reservationID, "rating": 5})
	require.Equal(t, http.StatusOK, code)
	var rated struct {
		TrustScore float64 `json:"trust_score"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &rated))
	assert.InDelta(t, 50.2, rated.TrustScore, 1e-9)

	code, env = a.do(http.MethodPost, "/api/v1/ratings/guest", hostToken, gin.H{"reservation_id": reservationID, "rating": 5})
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "ALREADY_RATED", errorCode(env))

	code, _ = a.do(http.MethodPost, "/api/v1/ratings/host", guestToken, gin.H{"reservation_id": reservationID, "rating": 5})
	require.Equal(t, http.StatusOK, code)

	code, env = a.do(http.MethodGet, "/api/v1/users/"+hostID, "", nil)
	require.Equal(t, http.StatusOK, code)
	var host struct {
		TrustScore    float64 `json:"trust_score"`
		AverageRating float64 `json:"average_rating"`
		IsHost        bool    `json:"is_host"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &host))
	assert.InDelta(t, 90.7, host.TrustScore, 1e-9)
	assert.Equal(t, 4.0, host.AverageRating)
	assert.True(t, host.IsHost)

	code, env = a.do(http.MethodGet, "/api/v1/users/"+hostID+"/reviews", "", nil)
	require.Equal(t, http.StatusOK, code)
	var reviews []struct{ Content string }
	require.NoError(t, json.Unmarshal(env.Data, &reviews))
	require.Len(t, reviews, 1)
	assert.Equal(t, "Quiet and clean", reviews[0].Content)

	code, env = a.do(http.MethodGet, "/api/v1/reservations/me", guestToken, nil)
	require.Equal(t, http.StatusOK, code)
	assert.Contains(t, string(env.Data), guestID)
}

func TestMessagingAndSettlement(t *testing.T) {
	a := newAPI(t)
	hostToken, hostID := a.register("host")
	guestToken, guestID := a.register("guest")

	code, env := a.do(http.MethodPost, "/api/v1/messages", guestToken, gin.H{
		"recipient_id": hostID, "content": " is there a kitchen? ",
	})
	require.Equal(t, http.StatusCreated, code)

	code, env = a.do(http.MethodPost, "/api/v1/messages", guestToken, gin.H{"recipient_id": "nobody", "content": "hi"})
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "VALIDATION_ERROR", errorCode(env))

	code, env = a.do(http.MethodGet, "/api/v1/messages/"+guestID, hostToken, nil)
	require.Equal(t, http.StatusOK, code)
	var thread []struct {
		Content string
		ReadAt  *time.Time `json:"read_at"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &thread))
	require.Len(t, thread, 1)
	assert.Equal(t, "is there a kitchen?", thread[0].Content)
	assert.NotNil(t, thread[0].ReadAt)

	code, _ = a.do(http.MethodGet, "/api/v1/messages", "", nil)
	assert.Equal(t, http.StatusUnauthorized, code)

	code, env = a.do(http.MethodPost, "/api/v1/caravans", hostToken, gin.H{
		"name": "Forest Nest", "daily_rate": 100000, "capacity": 4, "location": "Gangneung",
	})
	require.Equal(t, http.StatusCreated, code)
	caravanID := decodeID(t, env)

	code, env = a.do(http.MethodPost, "/api/v1/reservations", guestToken, gin.H{
		"caravan_id": caravanID, "start_date": "2031-06-01", "end_date": "2031-06-04",
	})
	require.Equal(t, http.StatusCreated, code)
	reservationID := decodeID(t, env)

	code, env = a.do(http.MethodPost, "/api/v1/settlements", hostToken, nil)
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "INVALID_STATE", errorCode(env))

	code, _ = a.do(http.MethodPut, "/api/v1/reservations/"+reservationID+"/approve", hostToken, nil)
	require.Equal(t, http.StatusOK, code)
	code, _ = a.do(http.MethodPost, "/api/v1/payments", guestToken, gin.H{"reservation_id": reservationID})
	require.Equal(t, http.StatusOK, code)

	code, _ = a.do(http.MethodPost, "/api/v1/settlements", guestToken, nil)
	assert.Equal(t, http.StatusNotFound, code, "only hosts are paid out")

	code, env = a.do(http.MethodPost, "/api/v1/settlements", hostToken, nil)
	require.Equal(t, http.StatusCreated, code)
	var settlement struct {
		GrossAmount float64 `json:"gross_amount"`
		PlatformFee float64 `json:"platform_fee"`
		Amount      float64
	}
	require.NoError(t, json.Unmarshal(env.Data, &settlement))
	assert.Equal(t, 300000.0, settlement.GrossAmount)
	assert.Equal(t, 30000.0, settlement.PlatformFee)
	assert.Equal(t, 270000.0, settlement.Amount)

	code, env = a.do(http.MethodGet, "/api/v1/settlements/me", hostToken, nil)
	require.Equal(t, http.StatusOK, code)
	var settlements []struct{ Amount float64 }
	require.NoError(t, json.Unmarshal(env.Data, &settlements))
	assert.Len(t, settlements, 1)
}

func TestErrorMapping(t *testing.T) {
	a := newAPI(t)
	token, _ := a.register("mina")

	code, _ := a.do(http.MethodGet, "/api/v1/users/me", "", nil)
	assert.Equal(t, http.StatusUnauthorized, code)

	code, env := a.do(http.MethodGet, "/api/v1/caravans/not-an-id", "", nil)
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "VALIDATION_ERROR", errorCode(env))

	code, env = a.do(http.MethodGet, "/api/v1/caravans/0123456789abcdef01234567", "", nil)
	assert.Equal(t, http.StatusNotFound, code)
	assert.Equal(t, "NOT_FOUND", errorCode(env))

	code, env = a.do(http.MethodPost, "/api/v1/reservations", token, gin.H{
		"caravan_id": "0123456789abcdef01234567", "start_date": "2031-06-04", "end_date": "2031-06-01",
	})
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "VALIDATION_ERROR", errorCode(env))

	code, _ = a.do(http.MethodPost, "/api/v1/reservations", token, gin.H{
		"caravan_id": "0123456789abcdef01234567", "start_date": "2031-06-01", "end_date": "2031-06-04",
	})
	assert.Equal(t, http.StatusNotFound, code)

	code, _ = a.do(http.MethodPost, "/api/v1/ratings/guest", token, gin.H{"reservation_id": "0123456789abcdef01234567", "rating": 9})
	assert.Equal(t, http.StatusBadRequest, code)

	code, env = a.do(http.MethodPost, "/api/v1/auth/register", "", gin.H{
		"display_name": "mina", "email": "mina@example.com", "password": "correct-horse",
	})
	assert.Equal(t, http.StatusConflict, code)

	code, env = a.do(http.MethodPost, "/api/v1/auth/login", "", gin.H{"email": "mina@example.com", "password": "wrong-password"})
	assert.Equal(t, http.StatusUnauthorized, code)
	assert.Equal(t, "UNAUTHORIZED", errorCode(env))

	code, _ = a.do(http.MethodGet, "/api/v1/auth/google", "", nil)
	assert.Equal(t, http.StatusBadRequest, code, "social login is disabled")

	code, _ = a.do(http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusOK, code)
}

func TestProfileContactOnce(t *testing.T) {
	a := newAPI(t)
	token, _ := a.register("jun")

	code, _ := a.do(http.MethodPut, "/api/v1/users/me", token, gin.H{"contact": "+821012345678", "introduction": "hi"})
	require.Equal(t, http.StatusOK, code)

	code, env := a.do(http.MethodPut, "/api/v1/users/me", token, gin.H{"contact": "+821099998888"})
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "INVALID_STATE", errorCode(env))

	code, env = a.do(http.MethodPost, "/api/v1/users/verify", token, nil)
	require.Equal(t, http.StatusOK, code)
	var me struct {
		IsVerified bool    `json:"is_verified"`
		TrustScore float64 `json:"trust_score"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &me))
	assert.True(t, me.IsVerified)
	assert.Equal(t, 50.0, me.TrustScore)
}
