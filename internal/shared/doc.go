// Package shared holds utilities used across the codebase that do not
// belong to any specific layer. Currently this is the testutil subpackage
// with log-capture helpers for tests.
package shared
