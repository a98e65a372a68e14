package echo

import (
	"errors"
	"fmt"
	"os"
)

// ErrMissingEnv matches any *MissingEnvError via errors.Is.
var ErrMissingEnv = errors.New("missing environment value")

// MissingEnvError reports a required environment value that is not set.
type MissingEnvError struct {
	Key string
}

func (e *MissingEnvError) Error() string {
	return fmt.Sprintf("%s: %s", ErrMissingEnv, e.Key)
}

func (e *MissingEnvError) Is(target error) bool {
	return target == ErrMissingEnv
}

// Source is a read-only view of environment state.
type Source interface {
	Lookup(key string) (string, bool)
}

// OSEnv reads the process environment.
type OSEnv struct{}

func (OSEnv) Lookup(key string) (string, bool) {
	return os.LookupEnv(key)
}

// MapEnv is a fixed set of values.
type MapEnv map[string]string

func (m MapEnv) Lookup(key string) (string, bool) {
	v, ok := m[key]
	return v, ok
}

func mustLookup(src Source, key string) (string, error) {
	v, ok := src.Lookup(key)
	if !ok {
		return "", &MissingEnvError{Key: key}
	}
	return v, nil
}
