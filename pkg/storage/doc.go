// Package storage persists fetched match data on disk. The layout is a
// base directory with raw/ for untouched match JSON, processed/ for
// derived datasets and models/ for trained artifacts. The manager keeps
// an in-memory index of saved match IDs so collection runs skip matches
// they already have.
package storage
