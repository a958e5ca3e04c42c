// Package buffer provides the planar stereo block type carried between the
// engine's processing stages, plus a pool for offline rendering.
package buffer
