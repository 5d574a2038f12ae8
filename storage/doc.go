// Package storage defines the persistence interfaces for the knowledge base:
// sources, their derived chunk rows, similarity queries and raw document
// retrieval. The badger subpackage provides the embedded implementation.
package storage
