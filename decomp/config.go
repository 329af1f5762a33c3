package decomp

// Config is the immutable configuration passed into each decompilation
// call (§5, §9 "Global configuration"): the active opcode remap and an
// optional string decoder override. It is built once by the caller
// (typically the CLI) and never mutated during a batch.
type Config struct {
	// Remap selects which §6.4 remap table is applied to raw opcode
	// bytes before OpKind lookup.
	Remap RemapTable

	// Decode overrides string-pool decoding for this call. If nil, the
	// package-wide textenc default is used. Region scene names are
	// always decoded with the textenc default.
	Decode func([]byte) string
}

// DefaultConfig returns a Config using the identity remap table and the
// process-wide textenc default.
func DefaultConfig() Config {
	return Config{Remap: RemapIdentity}
}
