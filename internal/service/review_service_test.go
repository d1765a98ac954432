package service

import (
	"context"
	"testing"

	"natours/internal/event"
	"natours/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupReviews(t *testing.T) (*fakeReviewRepo, *fakeTourRepo, ReviewService, *[]int) {
	reviewRepo := newFakeReviewRepo()
	tourRepo := newFakeTourRepo()
	bus := event.NewBus()

	var published []int
	bus.SubscribeReviewChanged(func(ctx context.Context, e event.ReviewChanged) error {
		published = append(published, e.TourID)
		return nil
	})

	return reviewRepo, tourRepo, NewReviewService(reviewRepo, tourRepo, bus), &published
}

func TestReviewService_Create(t *testing.T) {
	_, tourRepo, svc, published := setupReviews(t)
	tour := tourRepo.add(&model.Tour{Name: "The Forest Hiker"})

	review, err := svc.Create(context.Background(), 10, model.CreateReviewRequest{
		Review: "Great guides", Rating: 4, TourID: tour.ID,
	})

	require.NoError(t, err)
	assert.NotZero(t, review.ID)
	assert.Equal(t, 10, review.UserID)
	assert.Equal(t, tour.ID, review.TourID)
	assert.Equal(t, []int{tour.ID}, *published)
}

func TestReviewService_Create_TourNotFound(t *testing.T) {
	_, _, svc, published := setupReviews(t)

	_, err := svc.Create(context.Background(), 10, model.CreateReviewRequest{
		Review: "Great", Rating: 4, TourID: 999,
	})

	assert.ErrorIs(t, err, ErrTourNotFound)
	assert.Empty(t, *published)
}

func TestReviewService_Create_DuplicatePerTourAndUser(t *testing.T) {
	_, tourRepo, svc, published := setupReviews(t)
	tour := tourRepo.add(&model.Tour{Name: "The Sea Explorer"})

	_, err := svc.Create(context.Background(), 10, model.CreateReviewRequest{
		Review: "First", Rating: 5, TourID: tour.ID,
	})
	require.NoError(t, err)

	_, err = svc.Create(context.Background(), 10, model.CreateReviewRequest{
		Review: "Second", Rating: 1, TourID: tour.ID,
	})
	assert.ErrorIs(t, err, ErrDuplicateReview)
	assert.Len(t, *published, 1)

	// A different user may still review the same tour.
	_, err = svc.Create(context.Background(), 11, model.CreateReviewRequest{
		Review: "Also great", Rating: 4, TourID: tour.ID,
	})
	assert.NoError(t, err)
}

func TestReviewService_Update_Owner(t *testing.T) {
	_, tourRepo, svc, published := setupReviews(t)
	tour := tourRepo.add(&model.Tour{Name: "The Park Camper"})
	review, err := svc.Create(context.Background(), 10, model.CreateReviewRequest{
		Review: "Fine", Rating: 3, TourID: tour.ID,
	})
	require.NoError(t, err)

	newRating := 5
	updated, err := svc.Update(context.Background(), review.ID, 10, model.RoleUser, model.UpdateReviewRequest{Rating: &newRating})

	require.NoError(t, err)
	assert.Equal(t, 5, updated.Rating)
	assert.Equal(t, "Fine", updated.Review)
	assert.Equal(t, []int{tour.ID, tour.ID}, *published)
}

func TestReviewService_Update_NotOwner(t *testing.T) {
	_, tourRepo, svc, published := setupReviews(t)
	tour := tourRepo.add(&model.Tour{Name: "The Snow Adventurer"})
	review, err := svc.Create(context.Background(), 10, model.CreateReviewRequest{
		Review: "Fine", Rating: 3, TourID: tour.ID,
	})
	require.NoError(t, err)

	newRating := 1
	_, err = svc.Update(context.Background(), review.ID, 99, model.RoleUser, model.UpdateReviewRequest{Rating: &newRating})

	assert.ErrorIs(t, err, ErrNotReviewOwner)
	assert.Len(t, *published, 1) // only the create
}

func TestReviewService_Update_AdminMayEditAnyReview(t *testing.T) {
	_, tourRepo, svc, _ := setupReviews(t)
	tour := tourRepo.add(&model.Tour{Name: "The City Wanderer"})
	review, err := svc.Create(context.Background(), 10, model.CreateReviewRequest{
		Review: "Spam", Rating: 1, TourID: tour.ID,
	})
	require.NoError(t, err)

	text := "moderated"
	updated, err := svc.Update(context.Background(), review.ID, 99, model.RoleAdmin, model.UpdateReviewRequest{Review: &text})

	require.NoError(t, err)
	assert.Equal(t, "moderated", updated.Review)
}

func TestReviewService_Update_NotFound(t *testing.T) {
	_, _, svc, _ := setupReviews(t)

	text := "x"
	_, err := svc.Update(context.Background(), 123, 10, model.RoleUser, model.UpdateReviewRequest{Review: &text})

	assert.ErrorIs(t, err, ErrReviewNotFound)
}

func TestReviewService_Delete(t *testing.T) {
	reviewRepo, tourRepo, svc, published := setupReviews(t)
	tour := tourRepo.add(&model.Tour{Name: "The Star Gazer"})
	review, err := svc.Create(context.Background(), 10, model.CreateReviewRequest{
		Review: "Fine", Rating: 3, TourID: tour.ID,
	})
	require.NoError(t, err)

	require.NoError(t, svc.Delete(context.Background(), review.ID, 10, model.RoleUser))

	got, err := reviewRepo.FindByID(context.Background(), review.ID)
	require.NoError(t, err)
	assert.Nil(t, got)
	assert.Equal(t, []int{tour.ID, tour.ID}, *published)
}

func TestReviewService_Delete_NotOwner(t *testing.T) {
	_, tourRepo, svc, _ := setupReviews(t)
	tour := tourRepo.add(&model.Tour{Name: "The Wine Taster"})
	review, err := svc.Create(context.Background(), 10, model.CreateReviewRequest{
		Review: "Fine", Rating: 3, TourID: tour.ID,
	})
	require.NoError(t, err)

	err = svc.Delete(context.Background(), review.ID, 99, model.RoleGuide)
	assert.ErrorIs(t, err, ErrNotReviewOwner)
}

func TestReviewService_GetAll_FilteredByTour(t *testing.T) {
	_, tourRepo, svc, _ := setupReviews(t)
	tourA := tourRepo.add(&model.Tour{Name: "Tour A"})
	tourB := tourRepo.add(&model.Tour{Name: "Tour B"})

	_, err := svc.Create(context.Background(), 1, model.CreateReviewRequest{Review: "a", Rating: 5, TourID: tourA.ID})
	require.NoError(t, err)
	_, err = svc.Create(context.Background(), 1, model.CreateReviewRequest{Review: "b", Rating: 4, TourID: tourB.ID})
	require.NoError(t, err)

	all, err := svc.GetAll(context.Background(), nil)
	require.NoError(t, err)
	assert.Len(t, all, 2)

	scoped, err := svc.GetAll(context.Background(), &tourA.ID)
	require.NoError(t, err)
	require.Len(t, scoped, 1)
	assert.Equal(t, tourA.ID, scoped[0].TourID)
}
