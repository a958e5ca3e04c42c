// Package mix provides the dry/wet crossfader of the vocal remover.
package mix
