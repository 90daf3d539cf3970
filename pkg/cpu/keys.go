package cpu

// NumKeys is the size of the hexadecimal keypad.
const NumKeys = 16

// Keys is the key-state snapshot supplied to every Step.
type Keys interface {
	Pressed(key byte) bool
}

// HeldKey is either NoKey or the single keypad index currently held.
type HeldKey int8

const NoKey HeldKey = -1

func (k HeldKey) Pressed(key byte) bool {
	return k != NoKey && byte(k) == key
}

// KeySet tracks any number of held keys, one bit per keypad index.
type KeySet uint16

func (s KeySet) Pressed(key byte) bool {
	return key < NumKeys && s&(1<<key) != 0
}

func (s KeySet) With(key byte) KeySet {
	if key >= NumKeys {
		return s
	}
	return s | 1<<key
}

// firstPressed returns the lowest held key index.
func firstPressed(keys Keys) (byte, bool) {
	if keys == nil {
		return 0, false
	}
	for k := byte(0); k < NumKeys; k++ {
		if keys.Pressed(k) {
			return k, true
		}
	}
	return 0, false
}
