// Package models defines the core domain models for the dinner picker.
//
// # Models
//
//   - Selection: one person's starter/main choice for one calendar day
//   - DaySelections: every Selection recorded for a single day, keyed by person
//   - SelectionSummary: per-dish counts derived from a DaySelections snapshot
//
// People are identified by display name (no user accounts). Dishes are
// referenced by opaque identifiers; display text is resolved by the menu
// package and never stored here.
//
// # Design Principles
//
//  1. **Upsert, not merge**: a new Selection for (date, person) replaces the old one entirely
//  2. **Absence is nil**: an unchosen course is a nil pointer, never an empty string
//  3. **Derived views**: DaySelections and SelectionSummary are computed, never stored
package models
