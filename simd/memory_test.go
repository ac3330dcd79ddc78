package simd

import "testing"

func TestBlendedStore(t *testing.T) {
	v := Load([]float32{1, 2, 3, 4})
	mask := Mask[float32]{bits: []bool{true, false, true, false}}
	dst := []float32{100, 100, 100, 100}
	BlendedStore(v, mask, dst)
	want := []float32{1, 100, 3, 100}
	for i, w := range want {
		if dst[i] != w {
			t.Errorf("BlendedStore: lane %d: got %v, want %v", i, dst[i], w)
		}
	}
}

func TestLoadStoreInterleaved2(t *testing.T) {
	src := []float32{1, 10, 2, 20, 3, 30}
	a, b := LoadInterleaved2(src)
	wantA := []float32{1, 2, 3}
	wantB := []float32{10, 20, 30}
	for i := range wantA {
		if a.Data()[i] != wantA[i] || b.Data()[i] != wantB[i] {
			t.Errorf("LoadInterleaved2: lane %d: got (%v,%v), want (%v,%v)", i, a.Data()[i], b.Data()[i], wantA[i], wantB[i])
		}
	}

	dst := make([]float32, 6)
	StoreInterleaved2(Load(wantA), Load(wantB), dst)
	for i, w := range src {
		if dst[i] != w {
			t.Errorf("StoreInterleaved2: index %d: got %v, want %v", i, dst[i], w)
		}
	}
}

func TestLoadStoreInterleaved3(t *testing.T) {
	src := []float32{1, 10, 100, 2, 20, 200}
	a, b, c := LoadInterleaved3(src)
	wantA := []float32{1, 2}
	wantB := []float32{10, 20}
	wantC := []float32{100, 200}
	for i := range wantA {
		if a.Data()[i] != wantA[i] || b.Data()[i] != wantB[i] || c.Data()[i] != wantC[i] {
			t.Errorf("LoadInterleaved3: lane %d mismatch", i)
		}
	}

	dst := make([]float32, 6)
	StoreInterleaved3(Load(wantA), Load(wantB), Load(wantC), dst)
	for i, w := range src {
		if dst[i] != w {
			t.Errorf("StoreInterleaved3: index %d: got %v, want %v", i, dst[i], w)
		}
	}
}

func TestLoadStoreInterleaved4(t *testing.T) {
	src := []float32{1, 10, 100, 1000, 2, 20, 200, 2000}
	a, b, c, d := LoadInterleaved4(src)
	wantA := []float32{1, 2}
	wantB := []float32{10, 20}
	wantC := []float32{100, 200}
	wantD := []float32{1000, 2000}
	for i := range wantA {
		if a.Data()[i] != wantA[i] || b.Data()[i] != wantB[i] || c.Data()[i] != wantC[i] || d.Data()[i] != wantD[i] {
			t.Errorf("LoadInterleaved4: lane %d mismatch", i)
		}
	}

	dst := make([]float32, 8)
	StoreInterleaved4(Load(wantA), Load(wantB), Load(wantC), Load(wantD), dst)
	for i, w := range src {
		if dst[i] != w {
			t.Errorf("StoreInterleaved4: index %d: got %v, want %v", i, dst[i], w)
		}
	}
}

func TestUndefined(t *testing.T) {
	u := Undefined[float32]()
	if u.NumLanes() != MaxLanes[float32]() {
		t.Errorf("Undefined: got %d lanes, want %d", u.NumLanes(), MaxLanes[float32]())
	}
}
