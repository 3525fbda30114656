// Package mocks provides generated mocks for the gateway ports.
//
// This package uses go.uber.org/mock (gomock) to generate type-safe mocks
// for interfaces in internal/ports. Hand-written doubles for simple ports
// live in internal/mocks/session.
//
// To regenerate after interface changes, run:
//
//	go generate ./internal/mocks
package mocks

// Generate mock for the Upstream client port.
//go:generate go run go.uber.org/mock/mockgen@v0.6.0 -package=mocks -destination=upstream_mock.go github.com/pesaflow/qbo-ui-api/internal/ports Upstream
