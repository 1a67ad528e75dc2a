package config

import (
	"fmt"

	"github.com/spf13/viper"
)

// Fields lists, per entity type, the attributes to extract and persist. An
// empty list disables persistence of that entity type's content; the base
// identifier columns are still written.
type Fields struct {
	Submissions []string `mapstructure:"submissions"`
	Comments    []string `mapstructure:"comments"`
}

// For returns the field list for an entity type.
func (f Fields) For(entityType string) []string {
	switch entityType {
	case "submissions":
		return f.Submissions
	case "comments":
		return f.Comments
	}
	return nil
}

// LoadFields reads the field configuration file. A missing or malformed
// file is an error: without field lists there is nothing to persist.
func LoadFields(path string) (Fields, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")

	if err := v.ReadInConfig(); err != nil {
		return Fields{}, fmt.Errorf("reading fields config %s: %w", path, err)
	}

	var fields Fields
	if err := v.Unmarshal(&fields); err != nil {
		return Fields{}, fmt.Errorf("parsing fields config %s: %w", path, err)
	}

	return fields, nil
}
