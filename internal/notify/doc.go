// Package notify owns event fan-out.
//
// Ownership boundary:
// - Notifier capability and the type-tag factory
// - Broadcaster (unconditional, insertion-ordered delivery)
// - per-notifier priority gating and payload descriptions
package notify
