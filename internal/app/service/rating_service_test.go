package service

import (
	"context"
	"testing"

	"github.com/ikkim/pizza-delivery-backend/internal/app/model"
	"github.com/ikkim/pizza-delivery-backend/internal/app/repository"
	"github.com/ikkim/pizza-delivery-backend/internal/events"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRatingService_CreateRating(t *testing.T) {
	testDB := setupTestDB(t)
	user := createUser(t, testDB, "alice", model.RoleCustomer)
	pizza := createPizza(t, testDB, "Margherita", 250)
	publisher := &recordingPublisher{}

	ratings := NewRatingService(
		repository.NewRatingRepository(testDB),
		repository.NewPizzaRepository(testDB),
		publisher,
	)
	ctx := context.Background()

	tests := []struct {
		name    string
		pizzaID uint
		rating  int
		wantErr error
	}{
		{name: "lowest", pizzaID: pizza.ID, rating: 1},
		{name: "highest", pizzaID: pizza.ID, rating: 5},
		{name: "zero", pizzaID: pizza.ID, rating: 0, wantErr: ErrInvalidRating},
		{name: "six", pizzaID: pizza.ID, rating: 6, wantErr: ErrInvalidRating},
		{name: "unknown pizza", pizzaID: 9999, rating: 4, wantErr: ErrPizzaNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			entry, err := ratings.CreateRating(ctx, user.ID, tt.pizzaID, tt.rating, "tasty")
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Nil(t, entry)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.rating, entry.Rating)
			assert.NotZero(t, entry.ID)
		})
	}

	publisher.waitFor(t, events.RatingCreated)
}

func TestRatingService_ListRatings(t *testing.T) {
	testDB := setupTestDB(t)
	user := createUser(t, testDB, "alice", model.RoleCustomer)
	margherita := createPizza(t, testDB, "Margherita", 250)
	farmhouse := createPizza(t, testDB, "Farmhouse", 300)

	ratings := NewRatingService(
		repository.NewRatingRepository(testDB),
		repository.NewPizzaRepository(testDB),
		nil,
	)
	ctx := context.Background()

	// the same user may rate a pizza repeatedly
	_, err := ratings.CreateRating(ctx, user.ID, margherita.ID, 4, "")
	require.NoError(t, err)
	_, err = ratings.CreateRating(ctx, user.ID, margherita.ID, 2, "cold")
	require.NoError(t, err)
	_, err = ratings.CreateRating(ctx, user.ID, farmhouse.ID, 5, "")
	require.NoError(t, err)

	all, err := ratings.ListRatings(nil)
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, 4, all[0].Rating)
	assert.Equal(t, 5, all[2].Rating)

	filtered, err := ratings.ListRatings(&margherita.ID)
	require.NoError(t, err)
	require.Len(t, filtered, 2)
	assert.Equal(t, "cold", filtered[1].Comment)
}
