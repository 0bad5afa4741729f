// Package storage defines the persistence interfaces for messages and
// sessions, the vector store collaborator contract, and the single
// encode/decode point for enrichment metadata at the storage boundary.
//
// Implementations live in subpackages (storage/badger). All interfaces
// must be safe for concurrent use: worker pools share one store client.
package storage
