// Package persistence stores monitored fences across restarts.
//
// Fences are kept in a JSON state file. Each identity is stored in its opaque
// binary form (fence.Identity.MarshalBinary), so the state file does not
// depend on the identity's field layout.
package persistence
