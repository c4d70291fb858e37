package gpu

import (
	"encoding/binary"
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
)

func TestPutF32LittleEndian(t *testing.T) {
	b := make([]byte, 8)
	putF32(b, 4, 1.5)

	got := math.Float32frombits(binary.LittleEndian.Uint32(b[4:]))
	if got != 1.5 {
		t.Fatalf("read back %v, want 1.5", got)
	}
	for i := 0; i < 4; i++ {
		if b[i] != 0 {
			t.Fatalf("byte %d touched outside offset", i)
		}
	}
}

func TestPutI32Negative(t *testing.T) {
	b := make([]byte, 4)
	putI32(b, 0, -7)

	if got := int32(binary.LittleEndian.Uint32(b)); got != -7 {
		t.Fatalf("read back %d, want -7", got)
	}
}

func TestPutMat4ColumnMajor(t *testing.T) {
	m := mgl32.Translate3D(10, 20, 30)
	b := make([]byte, 64)
	putMat4(b, 0, m)

	// Translation lives in the fourth column. Column-major layout places
	// it at float indices 12, 13, 14.
	tx := math.Float32frombits(binary.LittleEndian.Uint32(b[12*4:]))
	ty := math.Float32frombits(binary.LittleEndian.Uint32(b[13*4:]))
	tz := math.Float32frombits(binary.LittleEndian.Uint32(b[14*4:]))
	if tx != 10 || ty != 20 || tz != 30 {
		t.Fatalf("translation column = (%v,%v,%v), want (10,20,30)", tx, ty, tz)
	}
	if d := math.Float32frombits(binary.LittleEndian.Uint32(b[0:])); d != 1 {
		t.Fatalf("m00 = %v, want 1", d)
	}
}

func TestScratchBufferZeroed(t *testing.T) {
	bs := &BufferSet{}
	b := bs.bytes(16)
	for i := range b {
		b[i] = 0xFF
	}
	b = bs.bytes(16)
	for i, v := range b {
		if v != 0 {
			t.Fatalf("byte %d = %#x after reuse, want 0", i, v)
		}
	}
	if len(bs.bytes(8)) != 8 {
		t.Fatal("shrinking request should reslice")
	}
}
