package util

import (
	"fmt"
	"reflect"
	"strings"
)

// IsStructInitialized returns an error naming every exported pointer, interface, map,
// slice or func field of s that is still nil. s must be a pointer to a struct.
func IsStructInitialized(s any) error {
	v := reflect.ValueOf(s)
	if v.Kind() != reflect.Ptr || v.IsNil() {
		return fmt.Errorf("expected non-nil pointer to struct, got %T", s)
	}

	v = v.Elem()
	if v.Kind() != reflect.Struct {
		return fmt.Errorf("expected pointer to struct, got %T", s)
	}

	var missing []string
	t := v.Type()
	for i := range v.NumField() {
		field := t.Field(i)
		if !field.IsExported() {
			continue
		}

		switch v.Field(i).Kind() { //nolint:exhaustive
		case reflect.Ptr, reflect.Interface, reflect.Map, reflect.Slice, reflect.Func, reflect.Chan:
			if v.Field(i).IsNil() {
				missing = append(missing, field.Name)
			}
		}
	}

	if len(missing) > 0 {
		return fmt.Errorf("struct %s has uninitialized fields: %s", t.Name(), strings.Join(missing, ", "))
	}

	return nil
}
