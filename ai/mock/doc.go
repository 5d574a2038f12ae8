// Package mock provides test doubles for the ai package interfaces.
//
// The doubles generate deterministic embeddings by default and expose
// function fields for injecting custom behavior, plus call counters for
// asserting which services a code path touched.
package mock
