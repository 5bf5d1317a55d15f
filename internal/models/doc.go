// Package models defines the domain entities of the playlist bot.
//
// The package contains three persistent entities:
//   - [User] : a chat-platform user, created lazily and never deleted
//   - [Playlist] : a named, owned collection of tracks with a cached total duration
//   - [Track] : an audio item referenced by an opaque media handle
//
// [PlaylistPatch] describes owner-initiated edits. Every entity validates itself with [Playlist.Validate],
// [Track.Validate] and [User.Validate]; failures wrap [shared.ErrValidation].
//
// Persistence lives in package repositories. The Owner and Tracks fields of [Playlist] are resolved copies
// loaded on demand, not live references.
package models
