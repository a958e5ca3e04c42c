// Package resample converts sample rates with a streaming polyphase FIR.
//
// It is used to bring decoded files to the engine rate. Three filter
// qualities are offered:
//
//	mode            taps/phase   nominal stopband
//	QualityFast     16           ~55 dB
//	QualityBalanced 32           ~75 dB
//	QualityBest     64           ~90 dB
package resample
