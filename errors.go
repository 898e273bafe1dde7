package gaffer

import (
	"errors"
	"fmt"

	"github.com/elasticjava/gaffer/blobstore"
	"github.com/elasticjava/gaffer/catalog"
	"github.com/elasticjava/gaffer/filter"
	"github.com/elasticjava/gaffer/keycodec"
	"github.com/elasticjava/gaffer/schema"
	"github.com/elasticjava/gaffer/serialisation"
	"github.com/elasticjava/gaffer/store"
)

var (
	// ErrClosed is returned by every operation on a closed graph.
	ErrClosed = errors.New("graph is closed")
	// ErrNotFound is returned when a stored object does not exist.
	ErrNotFound = errors.New("not found")
	// ErrInvalidConfiguration is returned for conflicting query or store options.
	ErrInvalidConfiguration = errors.New("invalid configuration")
	// ErrMalformedKey is returned when a stored key cannot be decoded.
	ErrMalformedKey = errors.New("malformed key")
	// ErrUnknownGroup is returned for elements or views naming an undeclared group.
	ErrUnknownGroup = errors.New("unknown group")
	// ErrUnknownProperty is returned when a schema names an undeclared property or type.
	ErrUnknownProperty = errors.New("unknown property")
	// ErrInvalidElement is returned for elements failing schema validation.
	ErrInvalidElement = errors.New("invalid element")
	// ErrSerialisation is returned when a value cannot be encoded or decoded.
	ErrSerialisation = errors.New("serialisation failed")
	// ErrNoSchema is returned by Open without a schema or a catalog to fetch one from.
	ErrNoSchema = errors.New("no schema")
)

// translateError maps errors of the internal packages onto the sentinels
// above. The original error stays reachable through errors.Is and errors.As.
func translateError(err error) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, store.ErrClosed) {
		return fmt.Errorf("%w: %w", ErrClosed, err)
	}
	if errors.Is(err, store.ErrNotFound) || errors.Is(err, blobstore.ErrNotFound) || errors.Is(err, catalog.ErrNotPublished) {
		return fmt.Errorf("%w: %w", ErrNotFound, err)
	}

	var mk *keycodec.MalformedKeyError
	if errors.As(err, &mk) {
		return fmt.Errorf("%w: %w", ErrMalformedKey, err)
	}
	var ic *filter.InvalidConfigurationError
	if errors.As(err, &ic) {
		return fmt.Errorf("%w: %w", ErrInvalidConfiguration, err)
	}
	var up *schema.UnknownPropertyError
	if errors.As(err, &up) {
		return fmt.Errorf("%w: %w", ErrUnknownProperty, err)
	}
	if errors.Is(err, schema.ErrUnknownGroup) {
		return fmt.Errorf("%w: %w", ErrUnknownGroup, err)
	}
	if errors.Is(err, schema.ErrInvalidElement) {
		return fmt.Errorf("%w: %w", ErrInvalidElement, err)
	}
	var se *serialisation.SerialisationError
	if errors.As(err, &se) {
		return fmt.Errorf("%w: %w", ErrSerialisation, err)
	}

	return err
}
