// Package tui is a terminal front end for one viewer orchestrator.
//
// The Model follows the bubbletea architecture: orchestrator snapshots
// arrive as SnapshotMsg through a subscription, and user actions run as
// commands whose outcome comes back as a message. Keys: up/down choose a
// language, enter applies it, r resets, m fetches more jokes, q quits.
package tui
