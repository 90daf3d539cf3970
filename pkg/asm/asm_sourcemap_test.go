package asm

import (
	"testing"
)

func TestAssembleSourceMap(t *testing.T) {
	code := `
; Line 1: Comment
LD V0, 10       ; Line 3: Instruction
                ; Line 4: Empty
LABEL:          ; Line 5: Label
ADD V0, V1      ; Line 6: Instruction
.ORG 0x210      ; Line 7: ORG (padding to image offset 0x10)
CLS             ; Line 8: Instruction at image offset 0x10
.BYTE 1, 2      ; Line 9: Two data bytes
`
	// Offsets are relative to the start of the image, which loads at 0x200.
	// 0x0000 -> 3  (LD)
	// 0x0002 -> 6  (ADD, also where LABEL points)
	// 0x0010 -> 8  (CLS)
	// 0x0012 -> 9  (.BYTE)

	_, sourceMap, err := Assemble(code)
	if err != nil {
		t.Fatalf("Assemble failed: %v", err)
	}

	tests := []struct {
		addr uint16
		line int
	}{
		{0x0000, 3},
		{0x0002, 6},
		{0x0010, 8},
		{0x0012, 9},
	}

	for _, tc := range tests {
		if got := sourceMap[tc.addr]; got != tc.line {
			t.Errorf("sourceMap[0x%04X] = %d; want %d", tc.addr, got, tc.line)
		}
	}

	// The .ORG line emits only padding and has no entry of its own.
	if line, ok := sourceMap[0x0004]; ok {
		t.Errorf("sourceMap[0x0004] = %d; want no entry", line)
	}
	if len(sourceMap) != len(tests) {
		t.Errorf("sourceMap has %d entries; want %d", len(sourceMap), len(tests))
	}
}
