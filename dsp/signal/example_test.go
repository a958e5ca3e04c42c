package signal_test

import (
	"fmt"
	"math"

	"github.com/cwbudde/algo-vocalcut/dsp/core"
	"github.com/cwbudde/algo-vocalcut/dsp/signal"
)

func ExampleNewSine() {
	o, err := signal.NewSine(250, 1, core.WithSampleRate(1000))
	if err != nil {
		panic(err)
	}
	x := make([]float64, 5)
	o.Process(x)
	for i := range x {
		if math.Abs(x[i]) < 1e-12 {
			x[i] = 0
		}
	}

	fmt.Printf("%.0f %.0f %.0f %.0f %.0f\n", x[0], x[1], x[2], x[3], x[4])

	// Output:
	// 0 1 0 -1 0
}
