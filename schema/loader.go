package schema

import (
	"fmt"
	"io"

	"gopkg.in/yaml.v3"
)

// yamlFile is the on-disk shape of a metadata file.
//
//	entities:
//	  - name: Author
//	    table: Authors
//	    schema: dbo
//	    fields:
//	      - name: AuthorId
//	        type: int
//	        primaryKey: true
//	        identity: true
//	      - name: FirstName
//	        type: varchar
//	        length: 50
//	        nullable: true
type yamlFile struct {
	Entities []yamlEntity `yaml:"entities"`
}

type yamlEntity struct {
	Name   string      `yaml:"name"`
	Table  string      `yaml:"table"`
	Schema string      `yaml:"schema"`
	Fields []yamlField `yaml:"fields"`
}

type yamlField struct {
	Name          string `yaml:"name"`
	Column        string `yaml:"column"`
	Type          string `yaml:"type"`
	Length        int    `yaml:"length"`
	Precision     int    `yaml:"precision"`
	Scale         int    `yaml:"scale"`
	Nullable      bool   `yaml:"nullable"`
	PrimaryKey    bool   `yaml:"primaryKey"`
	Identity      bool   `yaml:"identity"`
	AutoGenerated bool   `yaml:"autoGenerated"`
	SkipOnUpdate  bool   `yaml:"skipOnUpdate"`
}

// LoadYAML reads declarative entity definitions keyed by entity name.
// The returned definitions are registered the same way as ones built
// with New:
//
//	defs, err := schema.LoadYAML(f)
//	reg.Register(Author{}, defs["Author"])
func LoadYAML(r io.Reader) (map[string]*Def, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("schema: read metadata: %w", err)
	}
	var file yamlFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("schema: parse metadata: %w", err)
	}
	defs := make(map[string]*Def, len(file.Entities))
	for _, ye := range file.Entities {
		if ye.Name == "" {
			return nil, fmt.Errorf("schema: metadata entity with empty name")
		}
		if _, dup := defs[ye.Name]; dup {
			return nil, fmt.Errorf("schema: duplicate metadata entity %s", ye.Name)
		}
		fields := make([]*FieldBuilder, 0, len(ye.Fields))
		for _, yf := range ye.Fields {
			t, err := ParseNativeType(yf.Type)
			if err != nil {
				return nil, fmt.Errorf("schema: entity %s, field %s: %w", ye.Name, yf.Name, err)
			}
			fb := newField(yf.Name, t)
			fb.desc.Column = yf.Column
			fb.desc.Size = yf.Length
			fb.desc.Precision = yf.Precision
			fb.desc.Scale = yf.Scale
			fb.desc.Nullable = yf.Nullable
			fb.desc.PrimaryKey = yf.PrimaryKey
			fb.desc.Identity = yf.Identity
			fb.desc.AutoGenerated = yf.AutoGenerated
			fb.desc.SkipOnUpdate = yf.SkipOnUpdate
			fields = append(fields, fb)
		}
		def := New(ye.Table, fields...)
		if ye.Schema != "" {
			def.Schema(ye.Schema)
		}
		defs[ye.Name] = def
	}
	return defs, nil
}
