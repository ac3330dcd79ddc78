package simd

import (
	"math"
	"testing"
)

func TestAddMulDiv(t *testing.T) {
	a := Load([]float32{1, 2, 3, 4})
	b := Load([]float32{10, 20, 30, 40})

	add := Add(a, b)
	want := []float32{11, 22, 33, 44}
	for i, w := range want {
		if add.Data()[i] != w {
			t.Errorf("Add: lane %d: got %v, want %v", i, add.Data()[i], w)
		}
	}

	mul := Mul(a, b)
	wantMul := []float32{10, 40, 90, 160}
	for i, w := range wantMul {
		if mul.Data()[i] != w {
			t.Errorf("Mul: lane %d: got %v, want %v", i, mul.Data()[i], w)
		}
	}

	div := Div(b, a)
	for i := range 4 {
		if div.Data()[i] != 10 {
			t.Errorf("Div: lane %d: got %v, want 10", i, div.Data()[i])
		}
	}
}

func TestNegAbs(t *testing.T) {
	a := Load([]float32{-1, 2, -3, 4})
	neg := Neg(a)
	want := []float32{1, -2, 3, -4}
	for i, w := range want {
		if neg.Data()[i] != w {
			t.Errorf("Neg: lane %d: got %v, want %v", i, neg.Data()[i], w)
		}
	}
	abs := Abs(a)
	wantAbs := []float32{1, 2, 3, 4}
	for i, w := range wantAbs {
		if abs.Data()[i] != w {
			t.Errorf("Abs: lane %d: got %v, want %v", i, abs.Data()[i], w)
		}
	}
}

func TestMinMax(t *testing.T) {
	a := Load([]float32{1, 5, 3, 9})
	b := Load([]float32{4, 2, 3, 7})
	mn := Min(a, b)
	wantMin := []float32{1, 2, 3, 7}
	for i, w := range wantMin {
		if mn.Data()[i] != w {
			t.Errorf("Min: lane %d: got %v, want %v", i, mn.Data()[i], w)
		}
	}
	mx := Max(a, b)
	wantMax := []float32{4, 5, 3, 9}
	for i, w := range wantMax {
		if mx.Data()[i] != w {
			t.Errorf("Max: lane %d: got %v, want %v", i, mx.Data()[i], w)
		}
	}
}

func TestSqrtRSqrt(t *testing.T) {
	a := Load([]float32{4, 9, 16, 25})
	sq := Sqrt(a)
	want := []float32{2, 3, 4, 5}
	for i, w := range want {
		if sq.Data()[i] != w {
			t.Errorf("Sqrt: lane %d: got %v, want %v", i, sq.Data()[i], w)
		}
	}
	rs := RSqrt(a)
	for i, w := range want {
		got := rs.Data()[i]
		expected := 1 / w
		if math.Abs(float64(got-expected)) > 1e-3 {
			t.Errorf("RSqrt: lane %d: got %v, want ~%v", i, got, expected)
		}
	}
}

func TestMulAdd(t *testing.T) {
	a := Load([]float32{1, 2, 3})
	b := Load([]float32{4, 5, 6})
	c := Load([]float32{1, 1, 1})
	r := MulAdd(a, b, c)
	want := []float32{5, 11, 19}
	for i, w := range want {
		if r.Data()[i] != w {
			t.Errorf("MulAdd: lane %d: got %v, want %v", i, r.Data()[i], w)
		}
	}
}

func TestReductions(t *testing.T) {
	// Four values: Load keeps at most MaxLanes lanes, which is 4 for
	// float32 at the 16-byte width every build selects.
	a := Load([]float32{3, 1, 4, 5})
	if got := ReduceSum(a); got != 13 {
		t.Errorf("ReduceSum: got %v, want 13", got)
	}
	if got := ReduceMin(a); got != 1 {
		t.Errorf("ReduceMin: got %v, want 1", got)
	}
	if got := ReduceMax(a); got != 5 {
		t.Errorf("ReduceMax: got %v, want 5", got)
	}
}

func TestComparisons(t *testing.T) {
	a := Load([]float32{1, 2, 3, 4})
	b := Load([]float32{4, 2, 1, 4})

	eq := Equal(a, b)
	wantEq := []bool{false, true, false, true}
	for i, w := range wantEq {
		if eq.GetBit(i) != w {
			t.Errorf("Equal: lane %d: got %v, want %v", i, eq.GetBit(i), w)
		}
	}

	lt := LessThan(a, b)
	if lt.CountTrue() != 1 {
		t.Errorf("LessThan: got %d true lanes, want 1", lt.CountTrue())
	}

	gt := GreaterThan(a, b)
	if gt.CountTrue() != 1 {
		t.Errorf("GreaterThan: got %d true lanes, want 1", gt.CountTrue())
	}
}

func TestMaskBoolean(t *testing.T) {
	a := Mask[float32]{bits: []bool{true, true, false, false}}
	b := Mask[float32]{bits: []bool{true, false, true, false}}

	and := MaskAnd(a, b)
	wantAnd := []bool{true, false, false, false}
	for i, w := range wantAnd {
		if and.GetBit(i) != w {
			t.Errorf("MaskAnd: lane %d: got %v, want %v", i, and.GetBit(i), w)
		}
	}

	or := MaskOr(a, b)
	wantOr := []bool{true, true, true, false}
	for i, w := range wantOr {
		if or.GetBit(i) != w {
			t.Errorf("MaskOr: lane %d: got %v, want %v", i, or.GetBit(i), w)
		}
	}

	not := MaskNot(a)
	wantNot := []bool{false, false, true, true}
	for i, w := range wantNot {
		if not.GetBit(i) != w {
			t.Errorf("MaskNot: lane %d: got %v, want %v", i, not.GetBit(i), w)
		}
	}
}

func TestIsNaN(t *testing.T) {
	a := Load([]float32{1, float32(math.NaN()), 3})
	mask := IsNaN(a)
	if mask.GetBit(0) || !mask.GetBit(1) || mask.GetBit(2) {
		t.Errorf("IsNaN: got bits [%v %v %v], want [false true false]", mask.GetBit(0), mask.GetBit(1), mask.GetBit(2))
	}
}

func TestIfThenElseFamily(t *testing.T) {
	yes := Load([]float32{1, 2, 3, 4})
	no := Load([]float32{10, 20, 30, 40})
	mask := GreaterThan(yes, Set[float32](2))

	sel := IfThenElse(mask, yes, no)
	want := []float32{10, 20, 3, 4}
	for i, w := range want {
		if sel.Data()[i] != w {
			t.Errorf("IfThenElse: lane %d: got %v, want %v", i, sel.Data()[i], w)
		}
	}

	zsel := IfThenElseZero(mask, yes)
	wantZ := []float32{0, 0, 3, 4}
	for i, w := range wantZ {
		if zsel.Data()[i] != w {
			t.Errorf("IfThenElseZero: lane %d: got %v, want %v", i, zsel.Data()[i], w)
		}
	}

	zelse := IfThenZeroElse(mask, no)
	wantZE := []float32{10, 20, 0, 0}
	for i, w := range wantZE {
		if zelse.Data()[i] != w {
			t.Errorf("IfThenZeroElse: lane %d: got %v, want %v", i, zelse.Data()[i], w)
		}
	}
}

func TestMaskLoadStore(t *testing.T) {
	src := []float32{1, 2, 3, 4}
	mask := Mask[float32]{bits: []bool{true, false, true, false}}
	v := MaskLoad(mask, src)
	want := []float32{1, 0, 3, 0}
	for i, w := range want {
		if v.Data()[i] != w {
			t.Errorf("MaskLoad: lane %d: got %v, want %v", i, v.Data()[i], w)
		}
	}

	dst := []float32{100, 100, 100, 100}
	MaskStore(mask, v, dst)
	wantDst := []float32{1, 100, 3, 100}
	for i, w := range wantDst {
		if dst[i] != w {
			t.Errorf("MaskStore: lane %d: got %v, want %v", i, dst[i], w)
		}
	}
}

func TestBitwiseInt(t *testing.T) {
	a := Load([]int32{0b1100, 0b1010})
	b := Load([]int32{0b1010, 0b0110})

	and := And(a, b)
	wantAnd := []int32{0b1000, 0b0010}
	for i, w := range wantAnd {
		if and.Data()[i] != w {
			t.Errorf("And: lane %d: got %b, want %b", i, and.Data()[i], w)
		}
	}

	or := Or(a, b)
	wantOr := []int32{0b1110, 0b1110}
	for i, w := range wantOr {
		if or.Data()[i] != w {
			t.Errorf("Or: lane %d: got %b, want %b", i, or.Data()[i], w)
		}
	}

	xor := Xor(a, b)
	wantXor := []int32{0b0110, 0b1100}
	for i, w := range wantXor {
		if xor.Data()[i] != w {
			t.Errorf("Xor: lane %d: got %b, want %b", i, xor.Data()[i], w)
		}
	}

	xnor := Xnor(a, b)
	for i := range xor.Data() {
		if xnor.Data()[i] != ^xor.Data()[i] {
			t.Errorf("Xnor: lane %d: got %b, want %b", i, xnor.Data()[i], ^xor.Data()[i])
		}
	}

	andNot := AndNot(a, b)
	wantAndNot := []int32{0b0100, 0b1000}
	for i, w := range wantAndNot {
		if andNot.Data()[i] != w {
			t.Errorf("AndNot: lane %d: got %b, want %b", i, andNot.Data()[i], w)
		}
	}
}

func TestConstZeroSet(t *testing.T) {
	z := Zero[float32]()
	for _, v := range z.Data() {
		if v != 0 {
			t.Errorf("Zero: got %v, want 0", v)
		}
	}
	s := Set[float32](7)
	for _, v := range s.Data() {
		if v != 7 {
			t.Errorf("Set: got %v, want 7", v)
		}
	}
	c := Const[float32](2.5)
	for _, v := range c.Data() {
		if v != 2.5 {
			t.Errorf("Const: got %v, want 2.5", v)
		}
	}
}
