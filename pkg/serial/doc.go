// Package serial converts typed Go values to and from the ordered maps stored
// in configuration sections.
//
// A type is serializable when it carries one of the following markers:
//
//   - it was registered with [Register], optionally with a custom codec
//     ([WithCodec]) or an explicit field table ([WithFields]);
//   - it implements [Marshaler] and/or [Unmarshaler];
//   - it is a struct with at least one field tagged `cfg:"key"`.
//
// # Field Tags
//
// The tag value is the logical key the field is stored under. Fields without
// a tag, or tagged `cfg:"-"`, are ignored. Tagged fields must be exported.
//
//	type Server struct {
//		Host string `cfg:"host"`
//		Port int    `cfg:"port"`
//	}
//
// # Registry
//
// Descriptors are derived once per type and cached in a [Registry]. The cache
// is safe for concurrent use; deriving a descriptor twice yields the same
// result, so racing first lookups are harmless.
//
//	reg := serial.NewRegistry()
//	m, err := reg.Encode(Server{Host: "localhost", Port: 8080})
//	srv, err := serial.Decode[Server](reg, m)
package serial
