// Package store provides SQLite-backed durable storage for nodes and groups.
//
// The store is the backing store consumed by the family package. It keeps:
//   - Nodes: typed entities with a label, description, canonical JSON
//     attribute bag and optional binary content
//   - Group members: which nodes belong to which group node
//
// # Lifecycle
//
// A Node is created in memory and persisted once with Create. Stored data
// nodes are immutable: SetAttribute, SetLabel and SetDescription fail with
// ErrModificationNotAllowed unless the node is a group.
//
// # Queries
//
// Lookups are expressed as queryir.Select values and compiled by
// querysql. One implements the "exactly one" mode and distinguishes
// ErrNotExist from ErrMultipleMatches. Results are always ordered by id.
//
// # Database Configuration
//
//   - WAL mode: Concurrent reads during writes
//   - synchronous=NORMAL: Balance durability/performance
//   - busy_timeout=5000: Wait for locks up to 5 seconds
//   - foreign_keys=ON: Enforce referential integrity
package store
