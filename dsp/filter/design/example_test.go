package design_test

import (
	"fmt"

	"github.com/cwbudde/algo-vocalcut/dsp/filter/design"
)

func ExamplePeak() {
	c := design.Peak(1000, 6, 1, 48000)
	fmt.Printf("1 kHz: %+.1f dB\n", c.MagnitudeDB(1000, 48000))
	// Output:
	// 1 kHz: +6.0 dB
}
