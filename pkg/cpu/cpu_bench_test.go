package cpu

import (
	"testing"
)

// fillLoop writes body repeatedly from ProgramStart, then a jump back to the
// start so the benchmark can step forever.
func fillLoop(c *CPU, body []uint16, repeat int) {
	var words []uint16
	for i := 0; i < repeat; i++ {
		words = append(words, body...)
	}
	words = append(words, Encode(KindJp, 0, 0, ProgramStart))
	loadWords(c, words...)
}

func benchmarkBody(b *testing.B, body ...uint16) {
	c := NewCPU(Options{Random: &Sequence{Bytes: []byte{0x5A}}})
	fillLoop(c, body, 200)
	c.Regs.I = 0xE00

	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if err := c.Step(nil); err != nil {
			b.Fatal(err)
		}
	}
}

// BenchmarkCPU_LD measures the raw dispatch overhead of the Step loop.
func BenchmarkCPU_LD(b *testing.B) {
	benchmarkBody(b, Encode(KindLdImm, 1, 0, 0x42))
}

// BenchmarkCPU_ALU measures the register-pair arithmetic group.
func BenchmarkCPU_ALU(b *testing.B) {
	benchmarkBody(b,
		Encode(KindAddReg, 1, 2, 0),
		Encode(KindSub, 1, 2, 0),
		Encode(KindXor, 1, 2, 0),
		Encode(KindShl, 1, 2, 0),
	)
}

// BenchmarkCPU_Skip measures conditional skips that fall through.
func BenchmarkCPU_Skip(b *testing.B) {
	benchmarkBody(b, Encode(KindSneImm, 1, 0, 0x00))
}

// BenchmarkCPU_Draw measures sprite drawing, the most expensive instruction.
func BenchmarkCPU_Draw(b *testing.B) {
	benchmarkBody(b, Encode(KindDrw, 1, 2, 0xF))
}

// BenchmarkCPU_Memory measures the BCD and bulk register transfers.
func BenchmarkCPU_Memory(b *testing.B) {
	benchmarkBody(b,
		Encode(KindLdI, 0, 0, 0xE00),
		Encode(KindLdB, 1, 0, 0),
		Encode(KindLdI, 0, 0, 0xE00),
		Encode(KindStore, 0xF, 0, 0),
		Encode(KindLdI, 0, 0, 0xE00),
		Encode(KindLoad, 0xF, 0, 0),
	)
}

// BenchmarkCPU_Timer measures delay timer reads against the wall clock.
func BenchmarkCPU_Timer(b *testing.B) {
	benchmarkBody(b,
		Encode(KindLdDTVx, 1, 0, 0),
		Encode(KindLdVxDT, 2, 0, 0),
	)
}

func BenchmarkDecode(b *testing.B) {
	b.ReportAllocs()
	var sink Kind
	for i := 0; i < b.N; i++ {
		sink ^= Decode(uint16(i)).Kind
	}
	_ = sink
}

func BenchmarkDisplayDraw(b *testing.B) {
	d := NewDisplay(DrawWrap)
	sprite := []byte{0xFF, 0x81, 0x81, 0x81, 0x81, 0x81, 0x81, 0xFF}

	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		d.Draw(sprite, byte(i), byte(i>>6))
	}
}
