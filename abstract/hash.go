package abstract

import (
	"encoding/binary"

	spooky "github.com/dgryski/go-spooky"

	"github.com/pythiaco/pythia/golib/pyctx"
	"github.com/pythiaco/pythia/typegraph"
)

// rehash combines several hashes into one
func rehash(x ...uint64) uint64 {
	var h uint64
	b := make([]byte, 8)
	for _, xi := range x {
		binary.LittleEndian.PutUint64(b, xi)
		h = spooky.Hash64Seed(b, h)
	}
	return h
}

// rehashValues combines a hash with the hashes of zero or more values
func rehashValues(ctx pyctx.CallContext, x uint64, vs ...Value) uint64 {
	var h uint64
	b := make([]byte, 8)
	for _, v := range vs {
		binary.LittleEndian.PutUint64(b, hash(ctx, v))
		h = spooky.Hash64Seed(b, h)
	}
	binary.LittleEndian.PutUint64(b, h)
	return spooky.Hash64Seed(b, x)
}

// rehashBytes combines a hash with the hash of a byte slice
func rehashBytes(x uint64, b []byte) uint64 {
	return spooky.Hash64Seed(b, x)
}

// These constants ensure that the hash of each value is repeatable but
// unique. The numbers are randomly generated.
const (
	saltNil           = 5128763807241
	saltDeclClass     = 6852785620859
	saltInterpClass   = 2608058625550
	saltParameterized = 2569784136639
	saltTupleClass    = 9785314953969
	saltCallableClass = 4651918196213
	saltUnion         = 1085740485675
	saltTypeParam     = 6758959635298
	saltTypeParamInst = 1935468612388
	saltDeclFunc      = 1123535697898
	saltInterpFunc    = 7451123546465
	saltNativeFunc    = 4663644334535
	saltBoundFunc     = 1089457408548
	saltInstance      = 9843092804544
	saltConcrete      = 6573865046781
	saltConstDict     = 6087650786584
	saltModule        = 6075460587450
	saltGenerator     = 9005419490459
	saltUnknown       = 3569715369783
	saltUnsolvable    = 6950650687583
	saltEmpty         = 5768797545612
	saltSignature     = 7018347391875
	saltStrConst      = 8916790813476
	saltIntConst      = 5577006791947
	saltBoolConst     = 1543039099823
	saltFloatConst    = 6640668014774
)

// hashVariable hashes the data currently bound to a variable, in binding
// order. The binding ids themselves are excluded so that binding-equal
// variables hash alike.
func hashVariable(ctx pyctx.CallContext, v *typegraph.Variable) uint64 {
	h := rehash(saltNil)
	for _, d := range v.Data() {
		if val, ok := d.(Value); ok {
			h = rehashValues(ctx, h, val)
		} else {
			h = rehash(h)
		}
	}
	return h
}
