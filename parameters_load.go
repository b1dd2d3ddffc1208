package ranch

import (
	"os"
	"path/filepath"
	"reflect"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// knownParameterKeys are top-level keys of parameter files mapped onto Parameters fields
var knownParameterKeys = func() map[string]struct{} {
	keys := make(map[string]struct{})
	paramsType := reflect.TypeOf(Parameters{})
	for i := 0; i < paramsType.NumField(); i++ {
		name := strings.Split(paramsType.Field(i).Tag.Get("toml"), ",")[0]
		if name == "" || name == "-" {
			continue
		}
		keys[name] = struct{}{}
	}
	return keys
}()

// LoadParameters reads parameters from TOML (.toml) or YAML (.yaml, .yml) file.
// Missing options keep their defaults; base_dir defaults to the directory of the file.
// Unrecognized options are kept in Parameters.Extra.
func LoadParameters(fname string) (*Parameters, error) {
	data, err := os.ReadFile(fname)
	if err != nil {
		return nil, wrapConfig(err, "can't read parameters file")
	}
	baseDir, err := filepath.Abs(filepath.Dir(fname))
	if err != nil {
		return nil, errors.Wrap(err, "Can't resolve directory of parameters file")
	}
	var decode func(v interface{}) error
	switch ext := strings.ToLower(filepath.Ext(fname)); ext {
	case ".toml":
		decode = func(v interface{}) error {
			_, err := toml.Decode(string(data), v)
			return err
		}
	case ".yaml", ".yml":
		decode = func(v interface{}) error {
			return yaml.Unmarshal(data, v)
		}
	default:
		return nil, configError("parameters file extension '%s' is not supported", ext)
	}

	raw := map[string]interface{}{}
	if err := decode(&raw); err != nil {
		return nil, wrapConfig(err, "can't parse parameters")
	}
	params := defaultParameters(baseDir)
	// Tables given in file replace defaults instead of being merged into them
	if _, ok := raw["county_node_range"]; ok {
		params.CountyNodeRange = nil
	}
	if _, ok := raw["county_link_range"]; ok {
		params.CountyLinkRange = nil
	}
	if _, ok := raw["classify_keys"]; ok {
		params.ClassifyKeys = nil
	}
	if err := decode(params); err != nil {
		return nil, wrapConfig(err, "can't parse parameters")
	}

	params.Extra = make(map[string]interface{})
	for key, value := range raw {
		if _, ok := knownParameterKeys[key]; !ok {
			params.Extra[key] = value
		}
	}
	if !filepath.IsAbs(params.BaseDir) {
		params.BaseDir = filepath.Join(baseDir, params.BaseDir)
	}
	return params, nil
}
