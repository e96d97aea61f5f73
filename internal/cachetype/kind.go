// Package cachetype defines types shared by the glcache packages. It exists to
// avoid import cycles between the root package and its internal packages.
package cachetype

// Packing identifies how a section payload is stored in the blob file.
type Packing uint8

const (
	PackingUnknown Packing = iota
	PackingRaw
	PackingRLE
	PackingZstd
)

func (p Packing) String() string {
	switch p {
	case PackingRaw:
		return "raw"
	case PackingRLE:
		return "rle"
	case PackingZstd:
		return "zstd"
	default:
		return "unknown"
	}
}

// Ext returns the artifact extension for a packed payload.
func (p Packing) Ext() string {
	return p.String()
}

// Object identifies the type of a decoded section payload.
type Object uint8

const (
	// ObjectUnknown is a payload that matched no known signature.
	ObjectUnknown Object = iota
	// ObjectEmpty is an unrecognized payload made only of zero bytes.
	ObjectEmpty
	// ObjectARB is an ARB assembly archive: binary header plus program text.
	ObjectARB
	// ObjectNVuc is a shader microcode archive.
	ObjectNVuc
	// ObjectNVVMNVuc is a microcode archive behind a 4-byte NVVM tag.
	ObjectNVVMNVuc
	// ObjectNVDANVVMNVuc is a microcode archive behind NVDA and NVVM tags.
	ObjectNVDANVVMNVuc
	// ObjectELF is an ELF image behind a 4-byte 0x0250 tag.
	ObjectELF
)

func (o Object) String() string {
	switch o {
	case ObjectEmpty:
		return "empty"
	case ObjectARB:
		return "arb"
	case ObjectNVuc:
		return "nvuc"
	case ObjectNVVMNVuc:
		return "nvvm-nvuc"
	case ObjectNVDANVVMNVuc:
		return "nvda-nvvm-nvuc"
	case ObjectELF:
		return "elf"
	default:
		return "unknown"
	}
}

// Ext returns the artifact extension for a decoded object.
func (o Object) Ext() string {
	switch o {
	case ObjectARB:
		return "arbbin"
	case ObjectNVuc, ObjectNVVMNVuc, ObjectNVDANVVMNVuc:
		return "nvuc"
	case ObjectELF:
		return "elf"
	default:
		return "bin"
	}
}

// Known reports whether o matched a signature.
func (o Object) Known() bool {
	return o != ObjectUnknown && o != ObjectEmpty
}

// MarshalText implements encoding.TextMarshaler.
func (p Packing) MarshalText() ([]byte, error) {
	return []byte(p.String()), nil
}

// MarshalText implements encoding.TextMarshaler.
func (o Object) MarshalText() ([]byte, error) {
	return []byte(o.String()), nil
}
