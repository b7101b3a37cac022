package schema

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type Author struct {
	AuthorID  int
	FirstName string
	LastName  string
	Website   *string
}

type Customer struct {
	CustomerID int
	Category   string
	Score1     float64
}

func authorDef() *Def {
	return New("Authors",
		Int("AuthorId").Key().Identity(),
		VarChar("FirstName").Len(50),
		VarChar("LastName").Len(50),
		VarChar("Website").Len(200).Nullable(),
	).Schema("dbo")
}

func TestRegisterAndDescribe(t *testing.T) {
	reg := NewRegistry()
	_, err := reg.Register(Author{}, authorDef())
	require.NoError(t, err)

	e, err := reg.Describe(Author{})
	require.NoError(t, err)
	assert.Equal(t, "Authors", e.Table)
	assert.Equal(t, "dbo", e.Schema)
	require.Len(t, e.Fields(), 4)

	// Pointer prototypes resolve to the same entity.
	e2, err := reg.Describe(&Author{})
	require.NoError(t, err)
	assert.Same(t, e, e2)

	// Case-insensitive property lookup.
	f, ok := e.Field("firstname")
	require.True(t, ok)
	assert.Equal(t, "FirstName", f.Name)
	assert.Equal(t, "FirstName", f.Column)
	assert.Equal(t, "Authors", f.OwnerTable)
	assert.Equal(t, "dbo", f.OwnerSchema)

	_, ok = e.Field("nope")
	assert.False(t, ok)

	require.Len(t, e.Keys(), 1)
	assert.Equal(t, "AuthorId", e.Keys()[0].Name)
	require.NotNil(t, e.Identity())
	assert.Equal(t, "AuthorId", e.Identity().Name)
}

func TestDescribeUnregistered(t *testing.T) {
	reg := NewRegistry()
	_, err := reg.Describe(Customer{})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrNotAnEntity)
}

func TestRegisterDefaultTableName(t *testing.T) {
	reg := NewRegistry()
	e, err := reg.Register(Customer{}, New("",
		Int("CustomerId").Key(),
		VarChar("Category"),
		Float("Score1"),
	))
	require.NoError(t, err)
	assert.Equal(t, "Customers", e.Table)
	assert.Empty(t, e.Schema)
}

func TestRegisterRejectsForeignOwner(t *testing.T) {
	reg := NewRegistry()
	_, err := reg.Register(Author{}, New("Authors",
		Int("AuthorId").Key(),
		VarChar("FirstName").Owner("People", "dbo"),
	))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "foreign columns are not supported")
}

func TestRegisterRejectsUnknownStructField(t *testing.T) {
	reg := NewRegistry()
	_, err := reg.Register(Author{}, New("Authors",
		Int("AuthorId").Key(),
		VarChar("MiddleName"),
	))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "MiddleName")
}

func TestRegisterRejectsDuplicates(t *testing.T) {
	reg := NewRegistry()
	_, err := reg.Register(Author{}, New("Authors",
		Int("AuthorId").Key(),
		VarChar("authorid"),
	))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "duplicate field")

	_, err = reg.Register(Author{}, authorDef())
	require.NoError(t, err)
	_, err = reg.Register(Author{}, authorDef())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "already registered")
}

func TestFieldBuilderFlags(t *testing.T) {
	reg := NewRegistry()
	type Doc struct {
		ID       int
		Body     string
		Revision int
	}
	e, err := reg.Register(Doc{}, New("Docs",
		Int("Id").Key().Identity(),
		NVarChar("Body").Len(4000).Column("body_text"),
		Int("Revision").AutoGenerated().SkipOnUpdate(),
	))
	require.NoError(t, err)

	body, ok := e.Field("Body")
	require.True(t, ok)
	assert.Equal(t, "body_text", body.Column)
	assert.Equal(t, 4000, body.Size)

	rev, ok := e.Field("Revision")
	require.True(t, ok)
	assert.True(t, rev.AutoGenerated)
	assert.True(t, rev.SkipOnUpdate)
	assert.Equal(t, 2, rev.StructIndex())
}

func TestLoadYAML(t *testing.T) {
	src := `
entities:
  - name: Author
    table: Authors
    schema: dbo
    fields:
      - name: AuthorId
        type: int
        primaryKey: true
        identity: true
      - name: FirstName
        type: varchar
        length: 50
      - name: LastName
        type: varchar
        length: 50
      - name: Website
        type: varchar
        length: 200
        nullable: true
`
	defs, err := LoadYAML(strings.NewReader(src))
	require.NoError(t, err)
	require.Contains(t, defs, "Author")

	reg := NewRegistry()
	e, err := reg.Register(Author{}, defs["Author"])
	require.NoError(t, err)
	assert.Equal(t, "Authors", e.Table)
	assert.Equal(t, "dbo", e.Schema)

	website, ok := e.Field("Website")
	require.True(t, ok)
	assert.True(t, website.Nullable)
	assert.Equal(t, 200, website.Size)
}

func TestLoadYAMLBadType(t *testing.T) {
	src := `
entities:
  - name: Thing
    table: Things
    fields:
      - name: Id
        type: jsonb
`
	_, err := LoadYAML(strings.NewReader(src))
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUnsupportedNativeType)
}
