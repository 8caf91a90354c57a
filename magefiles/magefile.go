//go:build mage

// Package main provides build targets for the todos project using Mage.
//
// Usage:
//
//	mage build        Compile the todos binary to bin/
//	mage test:all     Run all tests
//	mage test:unit    Run tests without the race detector and verbose output
//	mage test:race    Run all tests with the race detector
//	mage test:cover   Run all tests and write coverage.out
//	mage test:smoke   Build and drive the binary against a temporary store
//	mage lint         Run golangci-lint
//	mage vet          Run go vet
//	mage clean        Remove build artifacts
//	mage install      Install todos to GOPATH/bin
package main

const (
	binGo      = "go"
	binaryName = "todos"
	binaryDir  = "bin"
	cmdDir     = "./cmd/todos"
	coverFile  = "coverage.out"
)
