package glcache

import "github.com/meigma/glcache/internal/cachetype"

// Packing identifies how a section payload is stored in the blob file.
type Packing = cachetype.Packing

// Packing kinds.
const (
	PackingUnknown = cachetype.PackingUnknown
	PackingRaw     = cachetype.PackingRaw
	PackingRLE     = cachetype.PackingRLE
	PackingZstd    = cachetype.PackingZstd
)

// Object identifies the type of a decoded section payload.
type Object = cachetype.Object

// Object kinds.
const (
	ObjectUnknown      = cachetype.ObjectUnknown
	ObjectEmpty        = cachetype.ObjectEmpty
	ObjectARB          = cachetype.ObjectARB
	ObjectNVuc         = cachetype.ObjectNVuc
	ObjectNVVMNVuc     = cachetype.ObjectNVVMNVuc
	ObjectNVDANVVMNVuc = cachetype.ObjectNVDANVVMNVuc
	ObjectELF          = cachetype.ObjectELF
)

// Sink receives extracted artifacts. Put may be called concurrently with
// distinct names.
type Sink interface {
	Put(name string, data []byte) error
}
