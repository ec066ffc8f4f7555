// Package store provides the default Bun-backed persistence for activity
// records and their comment/reply sub-logs. Host applications can swap the
// store if they prefer a different storage engine, as long as id assignment
// stays monotonic and thread-entry appends stay serialized per activity.
package store
