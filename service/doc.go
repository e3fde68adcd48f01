// Package service orchestrates the core components of the engine:
// index, write-ahead log, outbox, and snapshots.
//
// It provides a clean API for inserting and querying keys, decoupled
// from network transports like gRPC.
package service
