// Package signal provides streaming test-signal sources: fixed sine,
// exponential sweep and deterministic white noise.
package signal
