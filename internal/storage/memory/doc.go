// Package memory provides the in-memory key-value store for rudis.
//
// One Store holds every key, its optional expiration and the pub/sub
// channel registry. All of it sits behind a single mutex so the entry
// map and the expiration index can never disagree.
//
// Features:
//
//   - Per-key TTL tracked in a B-tree ordered by (expires_at, id)
//   - One background task purging expired keys, sleeping until the next
//     deadline or until woken by an earlier insert
//   - Channel fan-out to any number of subscribers
//
// Guard owns the background task; closing it stops the task.
package memory
