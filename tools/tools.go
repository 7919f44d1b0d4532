//go:build tools
// +build tools

// Package tools documents development tool dependencies.
// These tools run via `go run` or `go install` and are not tracked in go.mod
// since they are development tools, not runtime dependencies.
package tools

// Development tools:
//
// mockgen - gomock generator used by internal/mocks/generate.go
//   Run: go generate ./internal/mocks
//   Version: go.uber.org/mock/mockgen@v0.6.0
//   Docs: https://github.com/uber-go/mock
//
// Air - Live reload for Go apps
//   Install: go install github.com/air-verse/air@v1.63.0
//   Docs: https://github.com/air-verse/air
