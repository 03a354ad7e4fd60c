package config

import (
	"reflect"
	"strings"

	"github.com/oblo-platform/oblo/pkg/types"
)

// settingField describes one Settings field and the variable it is read from
type settingField struct {
	Key         string
	Index       int
	Default     string
	HasDefault  bool
	Required    bool
	Description string
}

var settingFields = describeSettings()

func describeSettings() []settingField {
	t := reflect.TypeOf(types.Settings{})
	fields := make([]settingField, 0, t.NumField())
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		key := f.Tag.Get("mapstructure")
		if key == "" {
			continue
		}
		def, hasDefault := f.Tag.Lookup("default")
		fields = append(fields, settingField{
			Key:         key,
			Index:       i,
			Default:     def,
			HasDefault:  hasDefault,
			Required:    f.Tag.Get("required") == "true",
			Description: f.Tag.Get("description"),
		})
	}
	return fields
}

func lookupField(key string) (settingField, bool) {
	for _, f := range settingFields {
		if strings.EqualFold(f.Key, key) {
			return f, true
		}
	}
	return settingField{}, false
}

// fieldValue returns the settings value for f
func fieldValue(s *types.Settings, f settingField) reflect.Value {
	return reflect.ValueOf(s).Elem().Field(f.Index)
}
