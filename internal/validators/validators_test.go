package validators

import (
	"strings"
	"testing"
	"time"

	"caravanshare/internal/models"
	"caravanshare/internal/utils"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func floatPtr(v float64) *float64 { return &v }
func strPtr(v string) *string { return &v }

func TestValidateReservationCreate(t *testing.T) {
	caravanID := primitive.NewObjectID().Hex()

	tests := []struct {
		name  string
		req   ReservationCreateRequest
		field string
	}{
		{"valid", ReservationCreateRequest{caravanID, "2024-06-01", "2024-06-04"}, ""},
		{"rfc3339 accepted", ReservationCreateRequest{caravanID, "2024-06-01T15:00:00Z", "2024-06-04"}, ""},
		{"bad caravan id", ReservationCreateRequest{"nope", "2024-06-01", "2024-06-04"}, "caravan_id"},
		{"missing start", ReservationCreateRequest{caravanID, "", "2024-06-04"}, "start_date"},
		{"bad end", ReservationCreateRequest{caravanID, "2024-06-01", "June 4"}, "end_date"},
		{"same day", ReservationCreateRequest{caravanID, "2024-06-01", "2024-06-01"}, "end_date"},
		{"reversed", ReservationCreateRequest{caravanID, "2024-06-05", "2024-06-01"}, "end_date"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			errs := ValidateReservationCreate(&tt.req, time.UTC)
			if tt.field == "" {
				assert.Empty(t, errs)
				return
			}
			require.NotEmpty(t, errs)
			assert.Contains(t, errs.Map(), tt.field)
		})
	}
}

func TestRatingValue(t *testing.T) {
	id := primitive.NewObjectID().Hex()

	for rating := 1; rating <= 5; rating++ {
		assert.Empty(t, ValidateStruct(&RatingCreateRequest{ReservationID: id, Rating: rating}))
	}
	for _, rating := range []int{-1, 6, 10} {
		errs := ValidateStruct(&RatingCreateRequest{ReservationID: id, Rating: rating})
		require.Len(t, errs, 1)
		assert.Equal(t, "rating_value", errs[0].Tag)
	}
}

func TestValidateReviewCreate(t *testing.T) {
	req := &ReviewCreateRequest{
		ReservationID: primitive.NewObjectID().Hex(),
		Rating:        4,
		Content:       "   ",
	}
	errs := ValidateReviewCreate(req)
	require.NotEmpty(t, errs)
	assert.Equal(t, "content", errs[0].Field)

	req.Content = " lovely stay "
	req.CaravanID = "bad"
	errs = ValidateReviewCreate(req)
	require.NotEmpty(t, errs)
	assert.Equal(t, "caravan_id", errs[0].Field)
	assert.Equal(t, "lovely stay", req.Content)
}

func TestValidateMessageCreate(t *testing.T) {
	req := &MessageCreateRequest{RecipientID: "nope", Content: " hi "}
	errs := ValidateMessageCreate(req)
	require.Len(t, errs, 1)
	assert.Equal(t, "recipient_id", errs[0].Field)
	assert.Equal(t, "hi", req.Content)

	req.RecipientID = primitive.NewObjectID().Hex()
	req.Content = strings.Repeat("a", 2001)
	errs = ValidateMessageCreate(req)
	require.Len(t, errs, 1)
	assert.Equal(t, "content", errs[0].Field)

	req.Content = "when is check-in?"
	assert.Empty(t, ValidateMessageCreate(req))
}

func TestValidateCaravanCreate(t *testing.T) {
	valid := CaravanCreateRequest{Name: "Forest Nest", DailyRate: floatPtr(0), Capacity: 2}
	assert.Empty(t, ValidateCaravanCreate(&valid))

	missingRate := CaravanCreateRequest{Name: "Forest Nest", Capacity: 2}
	assert.Contains(t, ValidateCaravanCreate(&missingRate).Map(), "daily_rate")

	negative := CaravanCreateRequest{Name: "Forest Nest", DailyRate: floatPtr(-1), Capacity: 2}
	errs := ValidateCaravanCreate(&negative)
	require.Len(t, errs, 1)
	assert.Equal(t, "daily_rate must be at least 0", errs[0].Message)

	noCapacity := CaravanCreateRequest{Name: "Forest Nest", DailyRate: floatPtr(1)}
	assert.Contains(t, ValidateCaravanCreate(&noCapacity).Map(), "capacity")
}

func TestValidateCaravanUpdate(t *testing.T) {
	assert.Empty(t, ValidateCaravanUpdate(&CaravanUpdateRequest{}))

	req := &CaravanUpdateRequest{Status: strPtr("maintenance"), Name: strPtr("  Sea View  ")}
	require.Empty(t, ValidateCaravanUpdate(req))
	update := req.Update()
	require.NotNil(t, update.Status)
	assert.Equal(t, models.CaravanStatusMaintenance, *update.Status)
	assert.Equal(t, "Sea View", *update.Name)

	errs := ValidateCaravanUpdate(&CaravanUpdateRequest{Status: strPtr("sold")})
	require.Len(t, errs, 1)
	assert.Equal(t, "caravan_status", errs[0].Tag)
}

func TestValidateUserRequests(t *testing.T) {
	reg := &UserRegistrationRequest{DisplayName: " Mina ", Email: " Mina@Example.com ", Password: "longenough"}
	require.Empty(t, ValidateUserRegistration(reg))
	assert.Equal(t, "mina@example.com", reg.Email)

	short := &UserRegistrationRequest{DisplayName: "Mina", Email: "mina@example.com", Password: "short"}
	assert.Contains(t, ValidateUserRegistration(short).Map(), "password")

	assert.Contains(t, ValidateUserLogin(&UserLoginRequest{Email: "nope"}).Map(), "email")

	assert.Empty(t, ValidateUserUpdate(&UserUpdateRequest{Contact: strPtr("+821012345678")}))
	assert.Empty(t, ValidateUserUpdate(&UserUpdateRequest{Contact: strPtr("010-1234-5678")}))
	assert.Contains(t, ValidateUserUpdate(&UserUpdateRequest{Contact: strPtr("call me")}).Map(), "contact")
	assert.Contains(t, ValidateUserUpdate(&UserUpdateRequest{DisplayName: strPtr(" ")}).Map(), "display_name")
}

func TestParseObjectID(t *testing.T) {
	id := primitive.NewObjectID()
	parsed, err := ParseObjectID("id", id.Hex())
	require.NoError(t, err)
	assert.Equal(t, id, parsed)

	_, err = ParseObjectID("id", "xyz")
	require.Error(t, err)
	assert.ErrorIs(t, err, utils.ErrValidation)
}
