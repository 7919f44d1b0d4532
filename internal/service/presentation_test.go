package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/versetype/versetype-api/config"
	"github.com/versetype/versetype-api/internal/adapters/fanout"
	"github.com/versetype/versetype-api/internal/core"
	"github.com/versetype/versetype-api/internal/domain/model"
	apperrors "github.com/versetype/versetype-api/internal/errors"
	"github.com/versetype/versetype-api/internal/mocks"
)

var slideTime = time.Date(2025, 5, 1, 9, 0, 0, 0, time.UTC)

func newPresentationService(t *testing.T) (*mocks.MockPresentationRepository, *mocks.MockPresentationFanout, *PresentationService) {
	t.Helper()
	ctrl := gomock.NewController(t)
	t.Cleanup(ctrl.Finish)

	repo := mocks.NewMockPresentationRepository(ctrl)
	fan := mocks.NewMockPresentationFanout(ctrl)
	svc, err := NewPresentationService(PresentationServiceOptions{
		Repo:   repo,
		Fanout: fan,
		Config: config.PresentationConfig{MaxKeyLength: 16},
		Clock:  func() time.Time { return slideTime },
	})
	require.NoError(t, err)
	return repo, fan, svc
}

func TestPresentationService_GetUnknownKey(t *testing.T) {
	t.Parallel()
	repo, _, svc := newPresentationService(t)
	ctx := context.Background()

	repo.EXPECT().Get(ctx, "talk").Return(nil, core.ErrPresentationNotFound)

	st, err := svc.Get(ctx, "talk")
	require.NoError(t, err)
	assert.Equal(t, model.DefaultPresentationState("talk"), st)
}

func TestPresentationService_GetValidation(t *testing.T) {
	t.Parallel()
	_, _, svc := newPresentationService(t)

	_, err := svc.Get(context.Background(), "")
	require.Error(t, err)
	assert.True(t, apperrors.IsValidation(err))

	_, err = svc.Get(context.Background(), "this-key-is-way-too-long")
	assert.True(t, apperrors.IsValidation(err))
}

func TestPresentationService_GetRepoError(t *testing.T) {
	t.Parallel()
	repo, _, svc := newPresentationService(t)
	boom := errors.New("db down")
	repo.EXPECT().Get(gomock.Any(), "talk").Return(nil, boom)

	_, err := svc.Get(context.Background(), "talk")
	require.ErrorIs(t, err, boom)
}

func TestPresentationService_SetCurrentSlide_AppliedPublishes(t *testing.T) {
	t.Parallel()
	repo, fan, svc := newPresentationService(t)
	ctx := context.Background()
	stored := &model.PresentationState{Key: "talk", CurrentSlide: 5, LastUpdated: slideTime, Exists: true}

	gomock.InOrder(
		repo.EXPECT().
			SetIfNewer(ctx, core.SetIfNewerParams{Key: "talk", Slide: 5, At: slideTime}).
			Return(stored, true, nil),
		fan.EXPECT().Publish(ctx, *stored).Return(nil),
	)

	res, err := svc.SetCurrentSlide(ctx, model.SetSlideRequest{Key: " talk ", Slide: 5})
	require.NoError(t, err)
	assert.True(t, res.Applied)
	assert.Equal(t, *stored, res.State)
}

func TestPresentationService_SetCurrentSlide_UsesClientTimestamp(t *testing.T) {
	t.Parallel()
	repo, fan, svc := newPresentationService(t)
	ctx := context.Background()
	clientAt := time.Date(2025, 5, 1, 11, 0, 0, 0, time.FixedZone("CEST", 2*3600))
	stored := &model.PresentationState{Key: "talk", CurrentSlide: 1, LastUpdated: clientAt.UTC(), Exists: true}

	repo.EXPECT().
		SetIfNewer(ctx, core.SetIfNewerParams{Key: "talk", Slide: 1, At: clientAt.UTC()}).
		Return(stored, true, nil)
	fan.EXPECT().Publish(ctx, *stored).Return(nil)

	_, err := svc.SetCurrentSlide(ctx, model.SetSlideRequest{Key: "talk", Slide: 1, Timestamp: &clientAt})
	require.NoError(t, err)
}

func TestPresentationService_SetCurrentSlide_StaleNotPublished(t *testing.T) {
	t.Parallel()
	repo, _, svc := newPresentationService(t)
	newer := &model.PresentationState{Key: "talk", CurrentSlide: 9, LastUpdated: slideTime.Add(time.Minute), Exists: true}

	repo.EXPECT().SetIfNewer(gomock.Any(), gomock.Any()).Return(newer, false, nil)
	// No Publish expectation: the mock fails the test if it is called.

	res, err := svc.SetCurrentSlide(context.Background(), model.SetSlideRequest{Key: "talk", Slide: 2})
	require.NoError(t, err)
	assert.False(t, res.Applied)
	assert.Equal(t, 9, res.State.CurrentSlide)
}

func TestPresentationService_SetCurrentSlide_PublishFailureIgnored(t *testing.T) {
	t.Parallel()
	repo, fan, svc := newPresentationService(t)
	stored := &model.PresentationState{Key: "talk", CurrentSlide: 3, LastUpdated: slideTime, Exists: true}

	repo.EXPECT().SetIfNewer(gomock.Any(), gomock.Any()).Return(stored, true, nil)
	fan.EXPECT().Publish(gomock.Any(), gomock.Any()).Return(errors.New("redis gone"))

	res, err := svc.SetCurrentSlide(context.Background(), model.SetSlideRequest{Key: "talk", Slide: 3})
	require.NoError(t, err)
	assert.True(t, res.Applied)
}

func TestPresentationService_SetCurrentSlide_Validation(t *testing.T) {
	t.Parallel()
	_, _, svc := newPresentationService(t)

	for _, req := range []model.SetSlideRequest{
		{Key: "", Slide: 1},
		{Key: "talk", Slide: -1},
	} {
		_, err := svc.SetCurrentSlide(context.Background(), req)
		assert.True(t, apperrors.IsValidation(err), "%+v", req)
	}
}

// memPresentationRepo is a last-writer-wins store used to exercise the service with a real hub.
type memPresentationRepo struct {
	states map[string]model.PresentationState
}

func (m *memPresentationRepo) Get(_ context.Context, key string) (*model.PresentationState, error) {
	st, ok := m.states[key]
	if !ok {
		return nil, core.ErrPresentationNotFound
	}
	return &st, nil
}

func (m *memPresentationRepo) SetIfNewer(_ context.Context, p core.SetIfNewerParams) (*model.PresentationState, bool, error) {
	cur, ok := m.states[p.Key]
	if ok && cur.LastUpdated.After(p.At) {
		return &cur, false, nil
	}
	st := model.PresentationState{Key: p.Key, CurrentSlide: p.Slide, LastUpdated: p.At, Exists: true}
	m.states[p.Key] = st
	return &st, true, nil
}

func TestPresentationService_SubscribeWithHub(t *testing.T) {
	t.Parallel()
	hub := fanout.NewHub()
	svc, err := NewPresentationService(PresentationServiceOptions{
		Repo:   &memPresentationRepo{states: map[string]model.PresentationState{}},
		Fanout: hub,
		Clock:  func() time.Time { return slideTime },
	})
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	updates, stop, err := svc.Subscribe(ctx, "talk")
	require.NoError(t, err)
	defer stop()

	first := <-updates
	assert.False(t, first.Exists)

	ts := slideTime.Add(time.Second)
	_, err = svc.SetCurrentSlide(ctx, model.SetSlideRequest{Key: "talk", Slide: 4, Timestamp: &ts})
	require.NoError(t, err)

	select {
	case st := <-updates:
		assert.Equal(t, 4, st.CurrentSlide)
		assert.True(t, st.Exists)
	case <-ctx.Done():
		t.Fatal("no update delivered")
	}

	stop()
	for range updates {
	}
}

func TestPresentationService_SubscribeWithoutFanout(t *testing.T) {
	t.Parallel()
	ctrl := gomock.NewController(t)
	svc, err := NewPresentationService(PresentationServiceOptions{Repo: mocks.NewMockPresentationRepository(ctrl)})
	require.NoError(t, err)

	_, _, err = svc.Subscribe(context.Background(), "talk")
	require.Error(t, err)
}
