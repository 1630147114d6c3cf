package config

import "reflect"

// envName maps a struct field back to the environment variable it is read from.
func envName(section any, field string) string {
	t := reflect.TypeOf(section)
	if f, ok := t.FieldByName(field); ok {
		if name := f.Tag.Get("env"); name != "" {
			return name
		}
	}
	return field
}
