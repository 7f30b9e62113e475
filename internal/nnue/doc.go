/*
Package nnue implements Heimdall's NNUE (Efficiently Updatable Neural
Network) position evaluator.

The default build is the single hidden-layer, headerless architecture:
one feature transformer replicated across input buckets, feeding a single
affine layer with a squared-clipped-ReLU activation, selecting one of a
handful of output buckets by piece count. See singlelayer.go.

Building with -tags heimdall_richnnue instead compiles the richer,
Stockfish-format dual-network (Big+Small) architecture with L1/L2/L3
layers, a headered binary format, and the HalfKAv2_hm/FullThreats feature
sets (network.go and friends) — kept as the alternate format existing
trained weights in that layout can still be loaded against, but not the
one Heimdall evaluates with by default.

# Usage

	nets, err := nnue.LoadNetworks("nn-default.bin", "")
	if err != nil {
		log.Fatal(err)
	}
	acc := nnue.NewAccumulatorStack()
*/
package nnue
