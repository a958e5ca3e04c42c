package buffer

import "testing"

func TestNewStereo(t *testing.T) {
	s := NewStereo(8)
	if s.Len() != 8 {
		t.Fatalf("Len = %d, want 8", s.Len())
	}
	if NewStereo(-1).Len() != 0 {
		t.Fatal("negative length should yield empty block")
	}
}

func TestStereoSliceSharesStorage(t *testing.T) {
	s := NewStereo(4)
	sub := s.Slice(1, 3)
	sub.L[0] = 1
	sub.R[1] = -1
	if s.L[1] != 1 || s.R[2] != -1 {
		t.Fatalf("slice not aliased: L=%v R=%v", s.L, s.R)
	}
}

func TestStereoCopyFrom(t *testing.T) {
	dst := NewStereo(2)
	src := Stereo{L: []float64{1, 2, 3}, R: []float64{4, 5, 6}}
	if n := dst.CopyFrom(src); n != 2 {
		t.Fatalf("copied %d frames, want 2", n)
	}
	if dst.L[1] != 2 || dst.R[1] != 5 {
		t.Fatalf("got L=%v R=%v", dst.L, dst.R)
	}
}

func TestStereoMono(t *testing.T) {
	s := Stereo{L: []float64{0.5, 1}, R: []float64{-0.5, 1}}
	dst := make([]float64, 2)
	s.Mono(dst)
	if dst[0] != 0 || dst[1] != 2 {
		t.Fatalf("mono = %v", dst)
	}
}

func TestStereoResizeReusesCapacity(t *testing.T) {
	s := NewStereo(16)
	l := &s.L[0]
	s.Resize(4)
	if s.Len() != 4 || &s.L[0] != l {
		t.Fatal("resize did not reuse capacity")
	}
}

func TestPoolGetZeroes(t *testing.T) {
	p := NewPool()
	b := p.Get(4)
	b.L[0] = 1
	p.Put(b)

	b2 := p.Get(4)
	if b2.Len() != 4 {
		t.Fatalf("Len = %d, want 4", b2.Len())
	}
	for i := range b2.L {
		if b2.L[i] != 0 || b2.R[i] != 0 {
			t.Fatalf("frame %d not zeroed", i)
		}
	}
	p.Put(nil)
}
