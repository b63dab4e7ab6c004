// © 2026 Ilya Mateyko. All rights reserved.
// Use of this source code is governed by the ISC
// license that can be found in the LICENSE.md file.

// Package envflag provides a wrapper around the standard flag package, allowing
// flags to be overridden by environment variables.
package envflag

import (
	"flag"
	"fmt"
	"strconv"
)

// Type is a constraint that permits only types supported by envflag package.
type Type interface {
	int | bool | string
}

// Value sets up a flag with the given name, default value, and usage
// information.
//
// If the environment variable specified by envName is set and parses as T,
// it overrides the flag's default value. A flag given on the command line
// wins over both.
func Value[T Type](
	name, envName string, value T, usage string,
	fs *flag.FlagSet, getenv func(string) string,
) *T {
	result := value
	if s := getenv(envName); s != "" {
		if parsed, err := parse[T](s); err == nil {
			result = parsed
		}
	}

	fv := &flagValue[T]{value: &result}
	fs.Var(fv, name, usage+" Can be overridden by "+envName+" environment variable.")
	return &result
}

func parse[T Type](s string) (T, error) {
	var zero T
	switch any(zero).(type) {
	case int:
		v, err := strconv.Atoi(s)
		return any(v).(T), err
	case bool:
		v, err := strconv.ParseBool(s)
		return any(v).(T), err
	case string:
		return any(s).(T), nil
	}
	return zero, fmt.Errorf("envflag: unsupported type %T", zero)
}

type flagValue[T Type] struct{ value *T }

func (f *flagValue[T]) String() string {
	if f.value == nil {
		return ""
	}
	return fmt.Sprint(*f.value)
}

func (f *flagValue[T]) Set(s string) error {
	v, err := parse[T](s)
	if err != nil {
		return err
	}
	*f.value = v
	return nil
}

// IsBoolFlag lets boolean flags be given without a value, like "-dry".
func (f *flagValue[T]) IsBoolFlag() bool {
	_, ok := any(*f.value).(bool)
	return ok
}
