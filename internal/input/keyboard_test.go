package input

import (
	"testing"
)

func TestNew_ShouldCreateEmptyQueue(t *testing.T) {
	keyboard := New(0)

	if keyboard == nil {
		t.Fatal("Expected keyboard, got nil")
	}
	if keyboard.Len() != 0 {
		t.Errorf("Expected empty queue, got %d keys", keyboard.Len())
	}
	if keyboard.capacity != DefaultCapacity {
		t.Errorf("Expected default capacity %d, got %d", DefaultCapacity, keyboard.capacity)
	}
	if _, ok := keyboard.Pop(); ok {
		t.Error("Pop on an empty queue should report false")
	}
}

func TestTranslate_ShouldMapHostCharacters(t *testing.T) {
	tests := []struct {
		in   rune
		code uint8
		ok   bool
	}{
		{'\n', KeyReturn, true},
		{'\r', KeyReturn, true},
		{'\b', KeyDelete, true},
		{0x7F, KeyDelete, true},
		{'a', 'A', true},
		{'z', 'Z', true},
		{'Q', 'Q', true},
		{' ', ' ', true},
		{'1', '1', true},
		{'"', '"', true},
		{'_', '_', true},
		{'{', 0, false},
		{'é', 0, false},
		{0x01, 0, false},
	}

	for _, test := range tests {
		code, ok := Translate(test.in)
		if code != test.code || ok != test.ok {
			t.Errorf("Translate(%q) = 0x%02X,%t; expected 0x%02X,%t", test.in, code, ok, test.code, test.ok)
		}
	}
}

func TestPushPop_ShouldBeFirstInFirstOut(t *testing.T) {
	keyboard := New(8)

	for _, code := range []uint8{'R', 'U', 'N', KeyReturn} {
		if !keyboard.Push(code) {
			t.Fatalf("Push(0x%02X) failed", code)
		}
	}

	for _, expected := range []uint8{'R', 'U', 'N', KeyReturn} {
		code, ok := keyboard.Pop()
		if !ok || code != expected {
			t.Errorf("Expected 0x%02X, got 0x%02X (ok=%t)", expected, code, ok)
		}
	}
	if keyboard.Len() != 0 {
		t.Errorf("Expected empty queue, got %d", keyboard.Len())
	}
}

func TestPush_FullQueue_ShouldDropKeys(t *testing.T) {
	keyboard := New(2)

	keyboard.Push('A')
	keyboard.Push('B')
	if keyboard.Push('C') {
		t.Error("Push into a full queue should fail")
	}
	if keyboard.Dropped() != 1 {
		t.Errorf("Expected 1 dropped key, got %d", keyboard.Dropped())
	}

	code, _ := keyboard.Pop()
	if code != 'A' {
		t.Errorf("Expected oldest key 'A', got 0x%02X", code)
	}
	if !keyboard.Push('D') {
		t.Error("Push after Pop should succeed")
	}
}

func TestPushString_ShouldSkipUntypeableCharacters(t *testing.T) {
	keyboard := New(0)

	queued := keyboard.PushString("print 1{}\n")
	if queued != 8 {
		t.Errorf("Expected 8 queued keys, got %d", queued)
	}

	var got []uint8
	for keyboard.Len() > 0 {
		code, _ := keyboard.Pop()
		got = append(got, code)
	}
	expected := []uint8{'P', 'R', 'I', 'N', 'T', ' ', '1', KeyReturn}
	if string(got) != string(expected) {
		t.Errorf("Expected %q, got %q", expected, got)
	}
}

func TestReset_ShouldClearQueueAndCounters(t *testing.T) {
	keyboard := New(1)
	keyboard.Push('A')
	keyboard.Push('B')

	keyboard.Reset()

	if keyboard.Len() != 0 || keyboard.Dropped() != 0 || keyboard.pushCount != 0 {
		t.Error("Reset should clear the queue and counters")
	}
}

func BenchmarkKeyboard_PushPop(b *testing.B) {
	keyboard := New(0)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		keyboard.Push('A')
		keyboard.Pop()
	}
}
