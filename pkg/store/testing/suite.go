// Package testing provides a reusable contract test suite for
// store.Store implementations.
//
// The suite tests the interface contract, not implementation details,
// so every backend (memory, badger, future databases) runs the exact
// same assertions.
package testing

import (
	"testing"

	"github.com/harborfs/harbordrive/pkg/store"
)

// StoreTestSuite is a comprehensive test suite for store.Store
// implementations.
type StoreTestSuite struct {
	// NewStore creates a fresh store for each test, registering any
	// cleanup on t. This ensures test isolation.
	NewStore func(t *testing.T) store.Store
}

// Run executes all tests in the suite.
func (suite *StoreTestSuite) Run(test *testing.T) {
	test.Run("Nodes", suite.RunNodeTests)
	test.Run("Shares", suite.RunShareTests)
	test.Run("Links", suite.RunLinkTests)
}
