package catalog

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v6"
	"golang.org/x/mod/semver"
)

// SchemaVersion is the document version written by this build. Documents
// with the same major version are accepted.
const SchemaVersion = "v1.0.0"

const schemaURL = "schema://fedrill/questions.json"

//go:embed schema.json
var schemaJSON []byte

//go:embed questions.json
var defaultJSON []byte

var (
	compileOnce sync.Once
	compiled    *jsonschema.Schema
	compileErr  error
)

// Document is the on-disk form of a question bank.
type Document struct {
	SchemaVersion string     `json:"schema_version"`
	Questions     []Question `json:"questions"`
}

func documentSchema() (*jsonschema.Schema, error) {
	compileOnce.Do(func() {
		doc, err := jsonschema.UnmarshalJSON(bytes.NewReader(schemaJSON))
		if err != nil {
			compileErr = fmt.Errorf("parse schema: %w", err)
			return
		}
		c := jsonschema.NewCompiler()
		if err := c.AddResource(schemaURL, doc); err != nil {
			compileErr = fmt.Errorf("add resource: %w", err)
			return
		}
		compiled, compileErr = c.Compile(schemaURL)
		if compileErr != nil {
			compileErr = fmt.Errorf("compile schema: %w", compileErr)
		}
	})
	return compiled, compileErr
}

// Parse validates a question bank document and returns its questions.
// A bare JSON array of questions is treated as a current-version document.
func Parse(data []byte) (*Document, error) {
	parsed, err := jsonschema.UnmarshalJSON(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("invalid JSON: %w", err)
	}
	if arr, ok := parsed.([]any); ok {
		parsed = map[string]any{"schema_version": SchemaVersion, "questions": arr}
		if data, err = json.Marshal(parsed); err != nil {
			return nil, fmt.Errorf("wrap question array: %w", err)
		}
	}

	sch, err := documentSchema()
	if err != nil {
		return nil, err
	}
	if err := sch.Validate(parsed); err != nil {
		return nil, fmt.Errorf("schema validation failed: %w", err)
	}

	var doc Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("decode questions: %w", err)
	}
	if err := checkVersion(doc.SchemaVersion); err != nil {
		return nil, err
	}
	return &doc, nil
}

func checkVersion(v string) error {
	if !semver.IsValid(v) {
		return fmt.Errorf("schema_version %q is not a semantic version", v)
	}
	if semver.Major(v) != semver.Major(SchemaVersion) {
		return fmt.Errorf("unsupported schema_version %s (want %s.x.y)", v, semver.Major(SchemaVersion))
	}
	return nil
}

// Load reads a question bank document from r and builds a Catalog.
func Load(r io.Reader) (*Catalog, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read catalog: %w", err)
	}
	doc, err := Parse(data)
	if err != nil {
		return nil, err
	}
	return New(doc.Questions)
}

// LoadFile reads a question bank from path.
func LoadFile(path string) (*Catalog, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open catalog: %w", err)
	}
	defer f.Close()
	c, err := Load(f)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", path, err)
	}
	return c, nil
}

var (
	defaultOnce sync.Once
	defaultCat  *Catalog
)

// Default returns the embedded sample question bank.
func Default() *Catalog {
	defaultOnce.Do(func() {
		c, err := Load(bytes.NewReader(defaultJSON))
		if err != nil {
			panic(fmt.Sprintf("catalog: embedded questions: %v", err))
		}
		defaultCat = c
	})
	return defaultCat
}
