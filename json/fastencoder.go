package json

import (
	"reflect"
	"sync"
)

// fastEncoders holds compile-time-registered encoders keyed by type, for
// callers that want to skip reflection entirely on a hot struct. Nothing in
// this module registers one yet, so GetFastEncoder always misses and every
// caller falls through to the generic reflect-based path in marshalValue —
// the registry exists so RegisterFastEncoder has somewhere to write to
// without requiring a startup-time analysis pass.
var (
	fastEncodersMu sync.RWMutex
	fastEncoders   = map[reflect.Type]typeEncoder{}
)

// RegisterFastEncoder installs a hand-written encoder for t, bypassing
// reflection in Marshal/MarshalFast for that type from then on.
func RegisterFastEncoder(t reflect.Type, enc typeEncoder) {
	fastEncodersMu.Lock()
	defer fastEncodersMu.Unlock()
	fastEncoders[t] = enc
}

// GetFastEncoder looks up a compile-time encoder registered for t.
func GetFastEncoder(t reflect.Type) (typeEncoder, bool) {
	fastEncodersMu.RLock()
	defer fastEncodersMu.RUnlock()
	enc, ok := fastEncoders[t]
	return enc, ok
}
