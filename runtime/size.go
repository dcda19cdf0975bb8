package s2proto

import "unsafe"

// In-memory element sizes for the pre-allocation clamp of ReadArrayBytes
// and ReadPackedArray. They describe the decoded Go value, not the wire.
const (
	Int8Size   = 1
	Int16Size  = 2
	Int32Size  = 4
	Int64Size  = 8
	Uint8Size  = 1
	Uint16Size = 2
	Uint32Size = 4
	Uint64Size = 8
	BoolSize   = 1
	Real32Size = 4
	Real64Size = 8
	SliceSize  = int(unsafe.Sizeof([]byte(nil)))
	AnySize    = int(unsafe.Sizeof(any(nil)))
)
