package algo

import "testing"

func TestPrefixSumUint32(t *testing.T) {
	data := []uint32{1, 2, 3, 4, 5, 6, 7, 8}
	PrefixSum(data)
	want := []uint32{1, 3, 6, 10, 15, 21, 28, 36}
	for i, v := range data {
		if v != want[i] {
			t.Fatalf("index %d: got %d want %d", i, v, want[i])
		}
	}
}

func TestPrefixSumEmpty(t *testing.T) {
	var data []uint32
	PrefixSum(data) // must not panic
}

func TestPrefixSumSingle(t *testing.T) {
	data := []int{42}
	PrefixSum(data)
	if data[0] != 42 {
		t.Fatalf("got %d want 42", data[0])
	}
}
