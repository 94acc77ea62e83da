package logging

import (
	"fmt"
	"reflect"

	"github.com/rs/zerolog"
)

const (
	maxDumpDepth    = 10
	maxDumpElements = 10
)

// Dump logs the contents of the provided value as a single Debug record
// with one "path: value" line per leaf. Structs contribute their exported
// fields, maps and slices their elements (capped), pointers are followed
// with cycle detection.
func (s *Service) Dump(v any) {
	if s == nil || !s.isInitialized.Load() {
		return
	}
	if logger := s.logger.Load(); logger == nil || logger.GetLevel() > zerolog.DebugLevel {
		return
	}

	e := logEventBuilder(s, zerolog.DebugLevel)

	var lines []string
	visited := make(map[uintptr]bool)
	dumpValue(&lines, v, "", visited, 0)

	e.Strs("dump", lines).Msgf("dump %T", v)
}

func dumpValue(lines *[]string, v any, prefix string, visited map[uintptr]bool, depth int) {
	if depth > maxDumpDepth {
		*lines = append(*lines, prefix+": <max depth reached>")
		return
	}
	if v == nil {
		*lines = append(*lines, prefix+": <nil>")
		return
	}

	val := reflect.ValueOf(v)

	// Unwrap interfaces and pointers, watching for cycles.
	for val.Kind() == reflect.Interface || val.Kind() == reflect.Pointer {
		if val.IsNil() {
			*lines = append(*lines, prefix+": <nil>")
			return
		}
		if val.Kind() == reflect.Pointer {
			ptr := val.Pointer()
			if visited[ptr] {
				*lines = append(*lines, prefix+": <circular reference>")
				return
			}
			visited[ptr] = true
		}
		val = val.Elem()
	}

	typ := val.Type()

	switch val.Kind() {
	case reflect.Struct:
		for i := 0; i < val.NumField(); i++ {
			field := typ.Field(i)
			fieldVal := val.Field(i)
			if !fieldVal.CanInterface() {
				continue
			}
			fieldPrefix := field.Name
			if prefix != emptyString {
				fieldPrefix = prefix + "." + field.Name
			}
			dumpValue(lines, fieldVal.Interface(), fieldPrefix, visited, depth+1)
		}

	case reflect.Map:
		iter := val.MapRange()
		for iter.Next() {
			key := fmt.Sprintf("%v", iter.Key().Interface())
			dumpValue(lines, iter.Value().Interface(), prefix+"["+key+"]", visited, depth+1)
		}

	case reflect.Slice, reflect.Array:
		n := val.Len()
		for i := 0; i < n && i < maxDumpElements; i++ {
			elemPrefix := fmt.Sprintf("%s[%d]", prefix, i)
			dumpValue(lines, val.Index(i).Interface(), elemPrefix, visited, depth+1)
		}
		if n > maxDumpElements {
			*lines = append(*lines, fmt.Sprintf("%s: ... (%d more elements)", prefix, n-maxDumpElements))
		}

	default:
		if prefix == emptyString {
			prefix = typ.String()
		}
		*lines = append(*lines, fmt.Sprintf("%s: %v", prefix, val.Interface()))
	}
}
