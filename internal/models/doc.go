// Package models defines domain entities and persistence interfaces for the playlist sorter.
//
// The package contains two categories of types:
//
// 1. Data Transfer Objects (DTOs): Lightweight structs representing streaming service data
//   - [User] : The authenticated account
//   - [Playlist] : Playlist metadata shown in the selection menu
//   - [TrackItem] : A playlist entry with the fields the sort keys read
//   - [Criterion] : The closed set of orderings a playlist can be sorted by
//
// 2. Persistent Entities: Database-backed models with full lifecycle management
//   - [RewriteRun] : One attempted playlist rewrite, recorded in the journal
//
// All persistent entities implement the Model interface providing ID generation, timestamps, validation, and soft delete support.
// The Repository[T] interface defines standard CRUD operations for database access.
package models
