package config

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
	"unicode"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/invopop/jsonschema"
	schemavalidator "github.com/santhosh-tekuri/jsonschema/v5"
)

const schemaURL = "https://github.com/Tsdevendra1/branchlet/settings.schema.json"

var (
	schemaOnce     sync.Once
	schemaJSON     []byte
	compiledSchema *schemavalidator.Schema
	schemaErr      error
)

// Schema returns the JSON schema describing a config file.
// Every field is optional and unknown fields are allowed.
func Schema() ([]byte, error) {
	loadSchema()
	return schemaJSON, schemaErr
}

func loadSchema() {
	schemaOnce.Do(func() {
		r := &jsonschema.Reflector{
			Anonymous:                  true,
			DoNotReference:             true,
			ExpandedStruct:             true,
			AllowAdditionalProperties:  true,
			RequiredFromJSONSchemaTags: true,
		}
		s := r.Reflect(&Config{})
		s.Title = "branchlet settings"

		data, err := json.MarshalIndent(s, "", "  ")
		if err != nil {
			schemaErr = fmt.Errorf("marshal schema: %w", err)
			return
		}
		schemaJSON = data

		c := schemavalidator.NewCompiler()
		if err := c.AddResource(schemaURL, bytes.NewReader(data)); err != nil {
			schemaErr = fmt.Errorf("load schema: %w", err)
			return
		}
		compiledSchema, schemaErr = c.Compile(schemaURL)
	})
}

// validateDocument checks raw JSON against the config schema.
func validateDocument(data []byte) error {
	var doc any
	if err := decodeJSON(data, &doc); err != nil {
		return fmt.Errorf("parse: %w", err)
	}

	loadSchema()
	if schemaErr != nil {
		return schemaErr
	}
	if err := compiledSchema.Validate(doc); err != nil {
		var ve *schemavalidator.ValidationError
		if errors.As(err, &ve) {
			return fmt.Errorf("schema: %s", leafMessage(ve))
		}
		return fmt.Errorf("schema: %w", err)
	}
	return nil
}

// leafMessage returns the most specific cause of a validation error.
func leafMessage(ve *schemavalidator.ValidationError) string {
	for len(ve.Causes) > 0 {
		ve = ve.Causes[0]
	}
	loc := ve.InstanceLocation
	if loc == "" {
		loc = "/"
	}
	return fmt.Sprintf("%s: %s", loc, ve.Message)
}

func decodeJSON(data []byte, v any) error {
	if len(bytes.TrimSpace(data)) == 0 {
		return errors.New("empty document")
	}
	return json.Unmarshal(data, v)
}

// Validate checks a complete config against the schema and the naming rules.
func (c Config) Validate() error {
	data, err := json.Marshal(c.normalized())
	if err != nil {
		return fmt.Errorf("encode: %w", err)
	}
	if err := validateDocument(data); err != nil {
		return err
	}
	if err := validatePatterns("worktreeCopyPatterns", c.WorktreeCopyPatterns); err != nil {
		return err
	}
	if err := validatePatterns("worktreeCopyIgnores", c.WorktreeCopyIgnores); err != nil {
		return err
	}
	return validateBranchPrefix(c.BranchPrefix)
}

// validatePatterns checks that all patterns are valid doublestar globs.
func validatePatterns(field string, patterns []string) error {
	for i, pat := range patterns {
		if strings.TrimSpace(pat) == "" {
			return fmt.Errorf("invalid %s[%d]: empty pattern", field, i)
		}
		if !doublestar.ValidatePattern(pat) {
			return fmt.Errorf("invalid %s[%d] %q: bad glob syntax", field, i, pat)
		}
	}
	return nil
}

func validateBranchPrefix(prefix string) error {
	if strings.IndexFunc(prefix, unicode.IsSpace) >= 0 {
		return fmt.Errorf("invalid branchPrefix %q: must not contain whitespace", prefix)
	}
	if strings.HasPrefix(prefix, "-") || strings.HasPrefix(prefix, "/") {
		return fmt.Errorf("invalid branchPrefix %q: must not start with %q", prefix, prefix[:1])
	}
	return nil
}
