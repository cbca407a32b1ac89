package config

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"fmt"
	"os"

	"github.com/xeipuuv/gojsonschema"
	"gopkg.in/yaml.v3"
)

//go:embed schemas/config-v1.json
var fileSchema string

type fileConfig struct {
	Strava struct {
		ClientSecret        string `yaml:"client-secret"`
		ApplicationClientID int    `yaml:"application-client-id"`
		Code                string `yaml:"code"`
	} `yaml:"strava"`
}

func readFile(path string) (*fileConfig, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config file: %w", err)
	}
	if err := validateFile(b); err != nil {
		return nil, fmt.Errorf("config file %s: %w", path, err)
	}
	var fc fileConfig
	if err := yaml.Unmarshal(b, &fc); err != nil {
		return nil, fmt.Errorf("config file %s: %w", path, err)
	}
	return &fc, nil
}

// validateFile checks the YAML document against the embedded schema by way of
// its JSON form.
func validateFile(b []byte) error {
	var v any
	if err := yaml.Unmarshal(b, &v); err != nil {
		return fmt.Errorf("yaml parse: %w", err)
	}
	if v == nil {
		v = map[string]any{}
	}
	jb, err := json.Marshal(v)
	if err != nil {
		return err
	}
	result, err := gojsonschema.Validate(gojsonschema.NewStringLoader(fileSchema), gojsonschema.NewBytesLoader(jb))
	if err != nil {
		return err
	}
	if !result.Valid() {
		return fmt.Errorf("invalid: %s", collect(result.Errors()))
	}
	return nil
}

func collect(errs []gojsonschema.ResultError) string {
	var buf bytes.Buffer
	for _, e := range errs {
		buf.WriteString(e.String())
		buf.WriteByte(';')
	}
	return buf.String()
}
