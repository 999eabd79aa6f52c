package schemavalidator

import (
	"reflect"
	"strings"
)

// GetJSONTag returns the JSON name of a struct field, falling back to the Go
// field name when there is no usable json tag.
func GetJSONTag(field reflect.StructField) string {
	jsonTag := field.Tag.Get("json")
	if jsonTag == "" || jsonTag == "-" {
		return field.Name
	}
	return strings.Split(jsonTag, ",")[0]
}

// GetJSONFieldPath resolves a validator StructField name to its JSON path,
// walking nested structs and non-nil struct pointers so error messages can
// point at the field the client actually sent.
func GetJSONFieldPath(structVal reflect.Value, structType reflect.Type, fieldName string) string {
	for i := 0; i < structType.NumField(); i++ {
		field := structType.Field(i)
		fieldValue := structVal.Field(i)

		if field.Name == fieldName {
			return GetJSONTag(field)
		}

		if field.Type.Kind() == reflect.Struct {
			nestedPath := GetJSONFieldPath(fieldValue, field.Type, fieldName)
			if nestedPath != "" {
				return GetJSONTag(field) + "." + nestedPath
			}
		}

		if field.Type.Kind() == reflect.Ptr && field.Type.Elem().Kind() == reflect.Struct {
			if !fieldValue.IsNil() {
				dereferenced := fieldValue.Elem()
				nestedPath := GetJSONFieldPath(dereferenced, dereferenced.Type(), fieldName)
				if nestedPath != "" {
					return GetJSONTag(field) + "." + nestedPath
				}
			}
		}
	}

	return ""
}
