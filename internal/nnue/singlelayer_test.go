//go:build !heimdall_richnnue

package nnue

import "testing"

func TestInputBucketSymmetry(t *testing.T) {
	for sq := 0; sq < 64; sq++ {
		b := InputBucket(sq)
		if b < 0 || b >= InputBuckets {
			t.Fatalf("InputBucket(%d) = %d, out of range", sq, b)
		}
		mirroredFile := sq ^ 7
		if got, want := InputBucket(mirroredFile), InputBucket(sq); got != want {
			t.Errorf("InputBucket(%d)=%d != InputBucket(%d)=%d, bucket should be file-mirror symmetric", mirroredFile, got, sq, want)
		}
	}
}

func TestMirroredSide(t *testing.T) {
	for sq := 0; sq < 64; sq++ {
		file := sq & 7
		want := file > 3
		if got := Mirrored(sq); got != want {
			t.Errorf("Mirrored(%d) = %v, want %v", sq, got, want)
		}
	}
}

func TestFeatureIndexRange(t *testing.T) {
	for kingSq := 0; kingSq < 64; kingSq++ {
		for kind := 0; kind < 6; kind++ {
			for sq := 0; sq < 64; sq++ {
				idx := FeatureIndex(true, false, kind, sq, kingSq)
				if idx < 0 || idx >= FTSize*InputBuckets {
					t.Fatalf("FeatureIndex out of range: %d", idx)
				}
			}
		}
	}
}

func TestFeatureIndexOwnVsEnemy(t *testing.T) {
	own := FeatureIndex(true, true, 0, 8, 4)
	enemy := FeatureIndex(true, false, 0, 8, 4)
	if own == enemy {
		t.Errorf("own and enemy piece features collided at %d", own)
	}
}

func TestOutputBucketRange(t *testing.T) {
	for pc := 2; pc <= 32; pc++ {
		b := OutputBucket(pc)
		if b < 0 || b >= NumOutputBuckets {
			t.Fatalf("OutputBucket(%d) = %d, out of range", pc, b)
		}
	}
	if b := OutputBucket(32); b != NumOutputBuckets-1 {
		t.Errorf("OutputBucket(32) = %d, want %d", b, NumOutputBuckets-1)
	}
}

func TestRefreshMatchesAddSub(t *testing.T) {
	n := NewNetwork()
	for i := range n.FTWeights {
		n.FTWeights[i] = int16((i%37)*7 - 100)
	}
	for i := range n.FTBiases {
		n.FTBiases[i] = int16(i)
	}

	idxA := FeatureIndex(true, true, 0, 4, 4)
	idxB := FeatureIndex(true, true, 1, 12, 4)

	var fromScratch [HLSize]int16
	n.Refresh(&fromScratch, []int{idxB})

	var incremental [HLSize]int16
	n.Refresh(&incremental, []int{idxA})
	n.AddSub(&incremental, idxB, idxA)
	n.Refresh(&incremental, []int{idxA})
	var dummy [HLSize]int16
	n.Refresh(&dummy, []int{idxB})

	var viaAdd [HLSize]int16
	copy(viaAdd[:], n.FTBiases)
	base := idxA * HLSize
	for i := 0; i < HLSize; i++ {
		viaAdd[i] += n.FTWeights[base+i]
	}
	n.AddSub(&viaAdd, idxB, idxA)

	for i := 0; i < HLSize; i++ {
		if fromScratch[i] != viaAdd[i] {
			t.Fatalf("AddSub diverged from Refresh at %d: %d != %d", i, fromScratch[i], viaAdd[i])
		}
	}
}

func TestAccumulatorStackPushPop(t *testing.T) {
	s := NewAccumulatorStack()
	s.Reset()
	s.Current().Values[0][0] = 42
	s.Push()
	if s.Current().Values[0][0] != 42 {
		t.Fatalf("Push did not carry forward the parent accumulator")
	}
	s.Current().Values[0][0] = 7
	if s.Previous().Values[0][0] != 42 {
		t.Fatalf("Previous() returned the wrong ply's accumulator")
	}
	s.Pop()
	if s.Current().Values[0][0] != 42 {
		t.Fatalf("Pop did not return to the parent accumulator")
	}
}

func TestFinnyCacheRoundTrip(t *testing.T) {
	s := NewAccumulatorStack()
	var values [HLSize]int16
	values[0] = 99
	var pieces [2][6]uint64
	pieces[0][0] = 0xFF

	_, _, valid := s.FinnyLookup(0, 3, false)
	if valid {
		t.Fatalf("expected empty Finny cache slot to be invalid")
	}

	s.FinnyStore(0, 3, false, values, pieces)
	gotValues, gotPieces, valid := s.FinnyLookup(0, 3, false)
	if !valid {
		t.Fatalf("expected Finny cache slot to be valid after store")
	}
	if gotValues[0] != 99 {
		t.Errorf("FinnyLookup values mismatch: got %d", gotValues[0])
	}
	if gotPieces[0][0] != 0xFF {
		t.Errorf("FinnyLookup pieces mismatch: got %x", gotPieces[0][0])
	}

	_, _, otherMirror := s.FinnyLookup(0, 3, true)
	if otherMirror {
		t.Errorf("mirrored slot should be independent of the non-mirrored one")
	}
}

func TestEvaluateSymmetricZeroAccumulators(t *testing.T) {
	n := NewNetwork()
	var stm, nstm [HLSize]int16
	score := n.Evaluate(&stm, &nstm, 32)
	if score != 0 {
		t.Errorf("Evaluate with zero weights and accumulators = %d, want 0", score)
	}
}
