// Package testutil provides fixtures shared by nemhist tests: an in-memory
// archive fetcher and a compact record-set builder.
package testutil
