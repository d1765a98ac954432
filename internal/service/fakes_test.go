package service

import (
	"context"
	"errors"
	"time"

	"natours/internal/model"
	"natours/internal/repository"
)

// In-memory repository fakes shared by the service tests.

type fakeUserRepo struct {
	users  map[int]*model.User
	nextID int

	createErr error
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: map[int]*model.User{}, nextID: 1}
}

func (r *fakeUserRepo) add(u *model.User) *model.User {
	if u.ID == 0 {
		u.ID = r.nextID
		r.nextID++
	}
	r.users[u.ID] = u
	return u
}

func (r *fakeUserRepo) Create(ctx context.Context, user *model.User) error {
	if r.createErr != nil {
		return r.createErr
	}
	for _, u := range r.users {
		if u.Email == user.Email {
			return repository.ErrDuplicate
		}
	}
	r.add(user)
	return nil
}

func (r *fakeUserRepo) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	for _, u := range r.users {
		if u.Email == email && u.Active {
			return u, nil
		}
	}
	return nil, nil
}

func (r *fakeUserRepo) FindByID(ctx context.Context, id int) (*model.User, error) {
	u, ok := r.users[id]
	if !ok || !u.Active {
		return nil, nil
	}
	return u, nil
}

func (r *fakeUserRepo) FindByResetToken(ctx context.Context, hashedToken string) (*model.User, error) {
	for _, u := range r.users {
		if !u.Active || u.PasswordResetToken == nil || u.PasswordResetExpires == nil {
			continue
		}
		if *u.PasswordResetToken == hashedToken && u.PasswordResetExpires.After(time.Now()) {
			return u, nil
		}
	}
	return nil, nil
}

func (r *fakeUserRepo) FindAll(ctx context.Context) ([]model.User, error) {
	var out []model.User
	for _, u := range r.users {
		if u.Active {
			out = append(out, *u)
		}
	}
	return out, nil
}

func (r *fakeUserRepo) UpdateProfile(ctx context.Context, id int, name, email, photo *string, role *string) (*model.User, error) {
	u, ok := r.users[id]
	if !ok || !u.Active {
		return nil, nil
	}
	if name != nil {
		u.Name = *name
	}
	if email != nil {
		for _, other := range r.users {
			if other.ID != id && other.Email == *email {
				return nil, repository.ErrDuplicate
			}
		}
		u.Email = *email
	}
	if photo != nil {
		u.Photo = *photo
	}
	if role != nil {
		u.Role = *role
	}
	return u, nil
}

func (r *fakeUserRepo) UpdatePassword(ctx context.Context, id int, passwordHash string, changedAt time.Time) error {
	u, ok := r.users[id]
	if !ok {
		return errors.New("user not found")
	}
	u.PasswordHash = passwordHash
	u.PasswordChangedAt = &changedAt
	u.PasswordResetToken = nil
	u.PasswordResetExpires = nil
	return nil
}

func (r *fakeUserRepo) SetResetToken(ctx context.Context, id int, hashedToken string, expires time.Time) error {
	u, ok := r.users[id]
	if !ok {
		return errors.New("user not found")
	}
	u.PasswordResetToken = &hashedToken
	u.PasswordResetExpires = &expires
	return nil
}

func (r *fakeUserRepo) ClearResetToken(ctx context.Context, id int) error {
	u, ok := r.users[id]
	if !ok {
		return errors.New("user not found")
	}
	u.PasswordResetToken = nil
	u.PasswordResetExpires = nil
	return nil
}

func (r *fakeUserRepo) SoftDelete(ctx context.Context, id int) error {
	u, ok := r.users[id]
	if !ok {
		return errors.New("user not found")
	}
	u.Active = false
	return nil
}

func (r *fakeUserRepo) Delete(ctx context.Context, id int) error {
	delete(r.users, id)
	return nil
}

type fakeTourRepo struct {
	tours  map[int]*model.Tour
	guides map[int][]int
	nextID int
}

func newFakeTourRepo() *fakeTourRepo {
	return &fakeTourRepo{tours: map[int]*model.Tour{}, guides: map[int][]int{}, nextID: 1}
}

func (r *fakeTourRepo) add(t *model.Tour) *model.Tour {
	if t.ID == 0 {
		t.ID = r.nextID
		r.nextID++
	}
	r.tours[t.ID] = t
	return t
}

func (r *fakeTourRepo) Create(ctx context.Context, t *model.Tour) error {
	for _, other := range r.tours {
		if other.Name == t.Name {
			return repository.ErrDuplicate
		}
	}
	if t.RatingsAverage == 0 {
		t.RatingsAverage = model.DefaultRatingsAverage
	}
	r.add(t)
	return nil
}

func (r *fakeTourRepo) FindByID(ctx context.Context, id int) (*model.Tour, error) {
	t, ok := r.tours[id]
	if !ok || t.SecretTour {
		return nil, nil
	}
	copied := *t
	return &copied, nil
}

func (r *fakeTourRepo) FindBySlug(ctx context.Context, slug string) (*model.Tour, error) {
	for _, t := range r.tours {
		if t.Slug == slug && !t.SecretTour {
			copied := *t
			return &copied, nil
		}
	}
	return nil, nil
}

func (r *fakeTourRepo) FindAll(ctx context.Context, filters model.TourFilters) ([]model.Tour, error) {
	var out []model.Tour
	for _, t := range r.tours {
		if t.SecretTour && !filters.IncludeSecret {
			continue
		}
		out = append(out, *t)
	}
	return out, nil
}

func (r *fakeTourRepo) Update(ctx context.Context, t *model.Tour) error {
	if _, ok := r.tours[t.ID]; !ok {
		return errors.New("tour not found")
	}
	for _, other := range r.tours {
		if other.ID != t.ID && other.Name == t.Name {
			return repository.ErrDuplicate
		}
	}
	r.tours[t.ID] = t
	return nil
}

func (r *fakeTourRepo) Delete(ctx context.Context, id int) error {
	if _, ok := r.tours[id]; !ok {
		return errors.New("tour not found")
	}
	delete(r.tours, id)
	return nil
}

func (r *fakeTourRepo) ReplaceGuides(ctx context.Context, tourID int, guideIDs []int) error {
	r.guides[tourID] = guideIDs
	return nil
}

func (r *fakeTourRepo) UpdateRatingStats(ctx context.Context, tourID int, quantity int, average float64) error {
	t, ok := r.tours[tourID]
	if !ok {
		return errors.New("tour not found")
	}
	t.RatingsQuantity = quantity
	t.RatingsAverage = average
	return nil
}

func (r *fakeTourRepo) GetDifficultyStats(ctx context.Context) ([]model.DifficultyStats, error) {
	return nil, nil
}

type fakeReviewRepo struct {
	reviews map[int]*model.Review
	nextID  int

	aggregateErr error
}

func newFakeReviewRepo() *fakeReviewRepo {
	return &fakeReviewRepo{reviews: map[int]*model.Review{}, nextID: 1}
}

func (r *fakeReviewRepo) Create(ctx context.Context, rv *model.Review) error {
	for _, other := range r.reviews {
		if other.TourID == rv.TourID && other.UserID == rv.UserID {
			return repository.ErrDuplicate
		}
	}
	rv.ID = r.nextID
	r.nextID++
	r.reviews[rv.ID] = rv
	return nil
}

func (r *fakeReviewRepo) FindByID(ctx context.Context, id int) (*model.Review, error) {
	rv, ok := r.reviews[id]
	if !ok {
		return nil, nil
	}
	copied := *rv
	return &copied, nil
}

func (r *fakeReviewRepo) FindAll(ctx context.Context, tourID *int) ([]model.Review, error) {
	var out []model.Review
	for _, rv := range r.reviews {
		if tourID != nil && rv.TourID != *tourID {
			continue
		}
		out = append(out, *rv)
	}
	return out, nil
}

func (r *fakeReviewRepo) Update(ctx context.Context, rv *model.Review) error {
	if _, ok := r.reviews[rv.ID]; !ok {
		return errors.New("review not found")
	}
	copied := *rv
	r.reviews[rv.ID] = &copied
	return nil
}

func (r *fakeReviewRepo) Delete(ctx context.Context, id int) error {
	if _, ok := r.reviews[id]; !ok {
		return errors.New("review not found")
	}
	delete(r.reviews, id)
	return nil
}

func (r *fakeReviewRepo) AggregateForTour(ctx context.Context, tourID int) (*model.RatingStats, error) {
	if r.aggregateErr != nil {
		return nil, r.aggregateErr
	}
	stats := &model.RatingStats{}
	sum := 0
	for _, rv := range r.reviews {
		if rv.TourID == tourID {
			stats.Quantity++
			sum += rv.Rating
		}
	}
	if stats.Quantity > 0 {
		stats.Average = float64(sum) / float64(stats.Quantity)
	}
	return stats, nil
}

// fakeMailer records sent mail and can be told to fail.
type fakeMailer struct {
	welcomes  []string // recipient emails
	resetURLs []string
	failSend  error
}

func (m *fakeMailer) SendWelcome(ctx context.Context, user *model.User, url string) error {
	if m.failSend != nil {
		return m.failSend
	}
	m.welcomes = append(m.welcomes, user.Email)
	return nil
}

func (m *fakeMailer) SendPasswordReset(ctx context.Context, user *model.User, resetURL string) error {
	if m.failSend != nil {
		return m.failSend
	}
	m.resetURLs = append(m.resetURLs, resetURL)
	return nil
}
