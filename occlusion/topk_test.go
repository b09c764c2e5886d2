package occlusion

import "testing"

func TestTopK(t *testing.T) {
	var k topK[int]
	k.reset(3)
	for i, f := range []float32{5, 1, 3, 4, 0, 6} {
		k.offer(i, f)
	}
	if k.count() != 3 {
		t.Fatalf("Expected 3 items, got %d", k.count())
	}
	want := map[int]bool{0: true, 3: true, 5: true}
	for _, item := range k.items {
		if !want[item] {
			t.Errorf("Unexpected item %d kept; items %v fits %v", item, k.items, k.fits)
		}
	}
	if k.fits[k.weakest] != 4 {
		t.Errorf("Expected weakest fit 4, got %f", k.fits[k.weakest])
	}

	k.reset(0)
	if k.offer(1, 100) {
		t.Errorf("Expected zero capacity to reject everything")
	}
}
