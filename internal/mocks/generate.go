// Package mocks provides gomock implementations of the repository and port interfaces.
//
// To regenerate mocks after interface changes, run:
//
//	go generate ./internal/mocks
//
// Usage in tests:
//
//	ctrl := gomock.NewController(t)
//	repo := mocks.NewMockPresentationRepository(ctrl)
//	repo.EXPECT().Get(gomock.Any(), "deck").Return(state, nil)
//
// Auth repositories have hand-written in-memory doubles in internal/mocks/auth instead;
// their tests need stateful behaviour across calls.
package mocks

// Get, SetIfNewer
//go:generate go run go.uber.org/mock/mockgen@v0.6.0 -package=mocks -destination=presentation_repository_mock.go github.com/versetype/versetype-api/internal/core PresentationRepository

// LatestVersion, SetLatestVersion
//go:generate go run go.uber.org/mock/mockgen@v0.6.0 -package=mocks -destination=app_info_repository_mock.go github.com/versetype/versetype-api/internal/core AppInfoRepository

// Create, ListRecentByUser
//go:generate go run go.uber.org/mock/mockgen@v0.6.0 -package=mocks -destination=typing_result_repository_mock.go github.com/versetype/versetype-api/internal/core TypingResultRepository

// DeleteExpiredLoginCodes
//go:generate go run go.uber.org/mock/mockgen@v0.6.0 -package=mocks -destination=sweeper_repository_mock.go github.com/versetype/versetype-api/internal/core SweeperRepository

// Publish, Subscribe
//go:generate go run go.uber.org/mock/mockgen@v0.6.0 -package=mocks -destination=presentation_fanout_mock.go github.com/versetype/versetype-api/internal/ports PresentationFanout
