// Package cache implements a two-tier cache: entries live in a session
// registry for the current session, and entries marked persistent are written
// to a single JSON file so later sessions can skip refetching them.
//
// # Storage Tiers
//
//   - The in-process working set: the disk-backed key index and the session
//     flags, loaded lazily on first use.
//   - The session registry: every entry, encoded as an envelope carrying its
//     persistence flag, lifetime and creation hour.
//   - The cache file: a JSON array holding a complete snapshot of the
//     persistent entries. It is only ever rewritten whole.
//
// # Cache File
//
//	[
//	  {"version": 2, "key": "catalog:animetoon/GetAllCartoon", "data": [...], "lifetime": 72, "epoch": 482113},
//	  {"version": 2, "key": "settings", "data": {...}, "lifetime": 0, "epoch": 481002}
//	]
//
// Records older than [CurrentFormatVersion] or past their lifetime are
// dropped when the file is loaded, and the next [TieredCache.Flush] rewrites
// the file without them.
//
// # Flushing
//
// Writes only mark the cache dirty. Callers flush once per navigation step;
// a clean cache never touches the file.
package cache
