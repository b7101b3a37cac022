package schema

import (
	"fmt"
	"strings"
)

// Field describes one mapped property of an entity: its column
// identity, native type and the flags the statement builders consult.
// Fields are immutable once their entity is registered.
type Field struct {
	// Name is the logical property name used in query trees and
	// result aliases.
	Name string
	// Column is the backing column name. Defaults to Name.
	Column string
	// OwnerTable and OwnerSchema identify the owning table. They
	// default to the entity's table and schema; registration rejects
	// any other value (see Registry.Register).
	OwnerTable  string
	OwnerSchema string
	// Type is the native scalar type of the column.
	Type NativeType
	// Size is the declared length for character and binary types.
	Size int
	// Precision and Scale apply to the decimal family.
	Precision int
	Scale     int

	Nullable      bool
	PrimaryKey    bool
	Identity      bool
	AutoGenerated bool
	SkipOnUpdate  bool

	// index is the struct field index on the registered prototype.
	index int
}

// StructIndex returns the index of the backing struct field on the
// registered prototype type.
func (f *Field) StructIndex() int { return f.index }

// FieldBuilder assembles a Field. Obtain one from a typed constructor
// such as Int or VarChar and finish by registering the entity.
type FieldBuilder struct {
	desc Field
}

func newField(name string, t NativeType) *FieldBuilder {
	return &FieldBuilder{desc: Field{Name: name, Type: t}}
}

// Int declares an int field.
func Int(name string) *FieldBuilder { return newField(name, TypeInt) }

// BigInt declares a bigint field.
func BigInt(name string) *FieldBuilder { return newField(name, TypeBigInt) }

// SmallInt declares a smallint field.
func SmallInt(name string) *FieldBuilder { return newField(name, TypeSmallInt) }

// TinyInt declares a tinyint field.
func TinyInt(name string) *FieldBuilder { return newField(name, TypeTinyInt) }

// Bit declares a bit field.
func Bit(name string) *FieldBuilder { return newField(name, TypeBit) }

// Decimal declares a decimal field with the given precision and scale.
func Decimal(name string, precision, scale int) *FieldBuilder {
	b := newField(name, TypeDecimal)
	b.desc.Precision, b.desc.Scale = precision, scale
	return b
}

// Numeric declares a numeric field with the given precision and scale.
func Numeric(name string, precision, scale int) *FieldBuilder {
	b := newField(name, TypeNumeric)
	b.desc.Precision, b.desc.Scale = precision, scale
	return b
}

// Money declares a money field.
func Money(name string) *FieldBuilder { return newField(name, TypeMoney) }

// SmallMoney declares a smallmoney field.
func SmallMoney(name string) *FieldBuilder { return newField(name, TypeSmallMoney) }

// Float declares a float field.
func Float(name string) *FieldBuilder { return newField(name, TypeFloat) }

// Real declares a real field.
func Real(name string) *FieldBuilder { return newField(name, TypeReal) }

// Char declares a char field of the given length.
func Char(name string, size int) *FieldBuilder {
	b := newField(name, TypeChar)
	b.desc.Size = size
	return b
}

// NChar declares an nchar field of the given length.
func NChar(name string, size int) *FieldBuilder {
	b := newField(name, TypeNChar)
	b.desc.Size = size
	return b
}

// VarChar declares a varchar field.
func VarChar(name string) *FieldBuilder { return newField(name, TypeVarChar) }

// NVarChar declares an nvarchar field.
func NVarChar(name string) *FieldBuilder { return newField(name, TypeNVarChar) }

// Text declares a text field.
func Text(name string) *FieldBuilder { return newField(name, TypeText) }

// NText declares an ntext field.
func NText(name string) *FieldBuilder { return newField(name, TypeNText) }

// Binary declares a binary field of the given length.
func Binary(name string, size int) *FieldBuilder {
	b := newField(name, TypeBinary)
	b.desc.Size = size
	return b
}

// VarBinary declares a varbinary field.
func VarBinary(name string) *FieldBuilder { return newField(name, TypeVarBinary) }

// Image declares an image field.
func Image(name string) *FieldBuilder { return newField(name, TypeImage) }

// Date declares a date field.
func Date(name string) *FieldBuilder { return newField(name, TypeDate) }

// DateTime declares a datetime field.
func DateTime(name string) *FieldBuilder { return newField(name, TypeDateTime) }

// DateTime2 declares a datetime2 field.
func DateTime2(name string) *FieldBuilder { return newField(name, TypeDateTime2) }

// SmallDateTime declares a smalldatetime field.
func SmallDateTime(name string) *FieldBuilder { return newField(name, TypeSmallDateTime) }

// DateTimeOffset declares a datetimeoffset field.
func DateTimeOffset(name string) *FieldBuilder { return newField(name, TypeDateTimeOffset) }

// Time declares a time field.
func Time(name string) *FieldBuilder { return newField(name, TypeTime) }

// UUID declares a uniqueidentifier field.
func UUID(name string) *FieldBuilder { return newField(name, TypeUniqueIdentifier) }

// XML declares an xml field.
func XML(name string) *FieldBuilder { return newField(name, TypeXML) }

// HierarchyID declares a hierarchyid field.
func HierarchyID(name string) *FieldBuilder { return newField(name, TypeHierarchyID) }

// Column overrides the backing column name.
func (b *FieldBuilder) Column(name string) *FieldBuilder {
	b.desc.Column = name
	return b
}

// Owner overrides the owning table and schema. Registration rejects
// owners different from the entity's own table.
func (b *FieldBuilder) Owner(table, schemaName string) *FieldBuilder {
	b.desc.OwnerTable, b.desc.OwnerSchema = table, schemaName
	return b
}

// Len sets the declared length.
func (b *FieldBuilder) Len(n int) *FieldBuilder {
	b.desc.Size = n
	return b
}

// Nullable marks the column as accepting NULL.
func (b *FieldBuilder) Nullable() *FieldBuilder {
	b.desc.Nullable = true
	return b
}

// Key marks the field as part of the primary key.
func (b *FieldBuilder) Key() *FieldBuilder {
	b.desc.PrimaryKey = true
	return b
}

// Identity marks the column as an identity column. Identity columns
// are excluded from inserts and reported back via OUTPUT.
func (b *FieldBuilder) Identity() *FieldBuilder {
	b.desc.Identity = true
	return b
}

// AutoGenerated marks the column as database-generated; it is excluded
// from inserts and updates.
func (b *FieldBuilder) AutoGenerated() *FieldBuilder {
	b.desc.AutoGenerated = true
	return b
}

// SkipOnUpdate excludes the field from SET lists when no explicit
// select clause names it.
func (b *FieldBuilder) SkipOnUpdate() *FieldBuilder {
	b.desc.SkipOnUpdate = true
	return b
}

// Def is an unregistered entity definition. Register it against a
// prototype type to obtain the finalized Entity.
type Def struct {
	table      string
	schemaName string
	fields     []*FieldBuilder
}

// New begins an entity definition for the given table. An empty table
// name derives the table from the prototype type name at registration.
func New(table string, fields ...*FieldBuilder) *Def {
	return &Def{table: table, fields: fields}
}

// Schema sets the schema qualifier of the entity's table.
func (d *Def) Schema(name string) *Def {
	d.schemaName = name
	return d
}

// Entity is the finalized, immutable metadata of a mapped type.
type Entity struct {
	Table  string
	Schema string
	fields []*Field
	byName map[string]*Field
	keys   []*Field
}

// Fields returns the field descriptors in declaration order.
// The returned slice must not be modified.
func (e *Entity) Fields() []*Field { return e.fields }

// Field resolves a property name case-insensitively.
func (e *Entity) Field(name string) (*Field, bool) {
	f, ok := e.byName[strings.ToLower(name)]
	return f, ok
}

// Keys returns the primary-key fields in declaration order.
func (e *Entity) Keys() []*Field { return e.keys }

// Identity returns the identity field, if any.
func (e *Entity) Identity() *Field {
	for _, f := range e.fields {
		if f.Identity {
			return f
		}
	}
	return nil
}

// Build finalizes the definition into an Entity without registering
// it. The table argument overrides the definition's table when the
// definition was created without one.
func (d *Def) Build(table string) (*Entity, error) {
	if d.table != "" {
		table = d.table
	}
	return d.build(table)
}

func (d *Def) build(table string) (*Entity, error) {
	if table == "" {
		return nil, fmt.Errorf("schema: entity has no table name")
	}
	e := &Entity{
		Table:  table,
		Schema: d.schemaName,
		byName: make(map[string]*Field, len(d.fields)),
	}
	for _, fb := range d.fields {
		f := fb.desc // copy; builders are reusable
		if f.Name == "" {
			return nil, fmt.Errorf("schema: table %s: field with empty name", table)
		}
		if !f.Type.Valid() {
			return nil, fmt.Errorf("schema: table %s: field %s: %w", table, f.Name, ErrUnsupportedNativeType)
		}
		if f.Column == "" {
			f.Column = f.Name
		}
		if f.OwnerTable == "" {
			f.OwnerTable = table
		}
		if f.OwnerSchema == "" {
			f.OwnerSchema = d.schemaName
		}
		// No join support: a column owned by another table could never
		// be satisfied by the single-table statements this module emits.
		if f.OwnerTable != table || f.OwnerSchema != d.schemaName {
			return nil, fmt.Errorf("schema: table %s: field %s is owned by %s.%s; foreign columns are not supported",
				table, f.Name, f.OwnerSchema, f.OwnerTable)
		}
		key := strings.ToLower(f.Name)
		if _, dup := e.byName[key]; dup {
			return nil, fmt.Errorf("schema: table %s: duplicate field %s", table, f.Name)
		}
		e.byName[key] = &f
		e.fields = append(e.fields, &f)
		if f.PrimaryKey {
			e.keys = append(e.keys, &f)
		}
	}
	if len(e.fields) == 0 {
		return nil, fmt.Errorf("schema: table %s: entity has no fields", table)
	}
	return e, nil
}
