// Package repositories implements SQLite persistence for users, playlists and tracks.
//
// A single [Repository] exposes every boundary operation. Each call runs inside exactly one
// transaction: it begins, runs, then commits, or rolls back on any error. The connection is always released.
//
// Business outcomes are reported with the sentinels in package shared:
//   - [shared.ErrNotFound] : the playlist, track or user does not exist
//   - [shared.ErrForbidden] : the requester does not own the playlist
//   - [shared.ErrNoPlaylist] : a track was sent by a user with no playlists
//   - [shared.ErrValidation] : input failed model validation
//
// Any other failure is marked with [shared.ErrStore]. Nothing is retried.
//
// Playlists cache the total duration of their tracks. Adding and removing tracks adjusts the cache with
// atomic arithmetic (duration = duration + ?) inside the same transaction as the track row change, so
// the cache always equals the sum of the track durations.
package repositories
