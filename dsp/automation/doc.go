// Package automation carries control changes from a control goroutine to the
// render goroutine without locks, and turns them into sample-accurate linear
// ramps.
//
// A [Mailbox] holds the latest posted value. The render side polls it once
// per block; when several values are posted between two polls only the last
// one is seen. A [Param] is the render-side state of one ramped parameter.
package automation
