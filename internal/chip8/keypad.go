package chip8

import "sync"

// Key identifies one of the 16 hexadecimal keypad keys, 0x0-0xF.
type Key uint8

// KeyNone is the keypad state when no key is pressed. It lies outside the
// valid key range so that key 0x0 remains distinguishable from "no key".
const KeyNone Key = 0xFF

// Keypad tracks the currently pressed key of the 16-key input device. The
// input front-end publishes the state on every polling tick via SetKey; the
// CPU queries it with IsPressed and blocks on WaitKey for the wait-for-key
// instruction. The condition variable guarantees a waiter cannot miss a
// press that arrives after it started waiting.
type Keypad struct {
	mu   sync.Mutex
	cond *sync.Cond
	key  Key
}

// NewKeypad returns a keypad with no key pressed.
func NewKeypad() *Keypad {
	k := &Keypad{key: KeyNone}
	k.cond = sync.NewCond(&k.mu)
	return k
}

// SetKey publishes the currently pressed key, or KeyNone if none is
// pressed, and wakes any WaitKey caller.
func (k *Keypad) SetKey(key Key) {
	k.mu.Lock()
	defer k.mu.Unlock()
	k.key = key
	k.cond.Broadcast()
}

// IsPressed reports whether the given key is currently pressed.
func (k *Keypad) IsPressed(key Key) bool {
	k.mu.Lock()
	defer k.mu.Unlock()
	return k.key != KeyNone && k.key == key
}

// WaitKey blocks the calling goroutine until a key is pressed and returns
// it. There is no timeout or cancellation, the wait ends only on a press.
func (k *Keypad) WaitKey() Key {
	k.mu.Lock()
	defer k.mu.Unlock()
	for k.key == KeyNone {
		k.cond.Wait()
	}
	return k.key
}
