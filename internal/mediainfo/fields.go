package mediainfo

import (
	"strconv"
	"strings"
)

func findField(fields []Field, name string) string {
	for _, field := range fields {
		if field.Name == name {
			return field.Value
		}
	}
	return ""
}

func appendFieldUnique(fields []Field, field Field) []Field {
	for _, existing := range fields {
		if existing.Name == field.Name {
			return fields
		}
	}
	return append(fields, field)
}

func setFieldValue(fields []Field, name, value string) []Field {
	for i := range fields {
		if fields[i].Name == name {
			fields[i].Value = value
			return fields
		}
	}
	return append(fields, Field{Name: name, Value: value})
}

func removeField(fields []Field, name string) []Field {
	for i := range fields {
		if fields[i].Name == name {
			return append(fields[:i], fields[i+1:]...)
		}
	}
	return fields
}

// SplitList splits a " / " joined field value.
func SplitList(value string) []string {
	if value == "" {
		return nil
	}
	return strings.Split(value, " / ")
}

func uintString(value uint64) string {
	return strconv.FormatUint(value, 10)
}

func intString(value int64) string {
	return strconv.FormatInt(value, 10)
}
