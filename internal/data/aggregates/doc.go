// Package aggregates owns transaction boundaries for invariant-critical writes that span
// several repos (attempt rows plus the per-user mastery, schedule and stats rows they feed).
package aggregates
