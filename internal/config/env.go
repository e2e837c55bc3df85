package config

import (
	"errors"
	"fmt"
	"os"
	"reflect"
	"sort"
	"strconv"
	"strings"
)

// applyEnv overrides config values from the variables named by `env` tags.
// Every bad value is reported, keyed by its yaml path, and the names of the
// applied variables are kept for EnvOverrides.
func applyEnv(c *Config) error {
	c.envKeys = c.envKeys[:0]
	err := walkEnv(reflect.ValueOf(c).Elem(), "", func(key string) { c.envKeys = append(c.envKeys, key) })
	sort.Strings(c.envKeys)
	return err
}

func walkEnv(val reflect.Value, prefix string, applied func(string)) error {
	var errs []error
	typ := val.Type()
	for i := 0; i < val.NumField(); i++ {
		sf := typ.Field(i)
		if !sf.IsExported() {
			continue
		}
		field := val.Field(i)
		key := yamlKey(prefix, sf)

		if field.Kind() == reflect.Struct {
			errs = append(errs, walkEnv(field, key, applied))
			continue
		}

		name := sf.Tag.Get("env")
		if name == "" {
			continue
		}
		// An empty value counts as set so a variable can blank a default.
		value, ok := os.LookupEnv(name)
		if !ok {
			continue
		}
		if err := setFromEnv(field, strings.TrimSpace(value)); err != nil {
			errs = append(errs, fmt.Errorf("%s (%s): %w", name, key, err))
			continue
		}
		applied(name)
	}
	return errors.Join(errs...)
}

func yamlKey(prefix string, sf reflect.StructField) string {
	name, _, _ := strings.Cut(sf.Tag.Get("yaml"), ",")
	if name == "" {
		name = strings.ToLower(sf.Name)
	}
	if prefix == "" {
		return name
	}
	return prefix + "." + name
}

// setFromEnv covers the kinds Config uses. Durations stay strings in Config
// and are checked by validateConfig.
func setFromEnv(field reflect.Value, value string) error {
	switch field.Kind() {
	case reflect.String:
		field.SetString(value)
	case reflect.Int:
		n, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("invalid integer %q", value)
		}
		field.SetInt(int64(n))
	case reflect.Bool:
		b, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("invalid boolean %q", value)
		}
		field.SetBool(b)
	default:
		return fmt.Errorf("unsupported field type %s", field.Kind())
	}
	return nil
}

// EnvOverrides lists the environment variables that changed the loaded
// configuration, sorted by name.
func (c *Config) EnvOverrides() []string {
	return append([]string(nil), c.envKeys...)
}
