package serial

import "github.com/cockroachdb/errors"

// Sentinel errors for serialization failures.
var (
	// ErrNotSerializable indicates the type carries no serialization marker.
	ErrNotSerializable = errors.New("type is not serializable")

	// ErrSerialization indicates a serializable type could not be encoded or
	// decoded: no way to build an instance, a custom function failed or
	// panicked, or a field could not be read or assigned.
	ErrSerialization = errors.New("serialization failed")
)

// failure marks err as an ErrSerialization while keeping its message.
func failure(err error, format string, args ...any) error {
	return errors.Mark(errors.Wrapf(err, format, args...), ErrSerialization)
}
