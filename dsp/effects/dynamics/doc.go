// Package dynamics provides the output noise gate.
//
// The gate's log2-domain gain math can be switched to fast approximations
// with the fastmath build tag.
package dynamics
