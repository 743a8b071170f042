package protocol

import "github.com/fxamacker/cbor/v2"

// encoder writes Core Deterministic CBOR: map keys are sorted, so equal
// contexts always produce equal snapshots and messages.
var encoder cbor.EncMode

func init() {
	var err error
	if encoder, err = cbor.CoreDetEncOptions().EncMode(); err != nil {
		panic(err)
	}
}

// Marshal encodes v the way message contents and snapshots are encoded.
func Marshal(v interface{}) ([]byte, error) {
	return encoder.Marshal(v)
}
