package schema

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseNativeType(t *testing.T) {
	names := []string{
		"int", "bigint", "smallint", "tinyint", "bit",
		"decimal", "numeric", "money", "smallmoney",
		"float", "real",
		"char", "nchar", "varchar", "nvarchar", "text", "ntext",
		"binary", "varbinary", "image",
		"date", "datetime", "datetime2", "smalldatetime", "datetimeoffset", "time",
		"uniqueidentifier", "xml", "hierarchyid",
	}
	for _, name := range names {
		t.Run(name, func(t *testing.T) {
			nt, err := ParseNativeType(name)
			require.NoError(t, err)
			assert.True(t, nt.Valid())
			assert.Equal(t, name, nt.String())
		})
	}
}

func TestParseNativeTypeUnknown(t *testing.T) {
	for _, name := range []string{"", "jsonb", "INT", "blob"} {
		_, err := ParseNativeType(name)
		require.Error(t, err, name)
		assert.ErrorIs(t, err, ErrUnsupportedNativeType)
	}
}

func TestNativeTypeFamilies(t *testing.T) {
	assert.True(t, TypeTinyInt.Integer())
	assert.True(t, TypeBit.Integer())
	assert.False(t, TypeFloat.Integer())

	assert.True(t, TypeMoney.Decimal())
	assert.True(t, TypeNumeric.Decimal())
	assert.False(t, TypeReal.Decimal())

	assert.True(t, TypeReal.Floating())
	assert.False(t, TypeDecimal.Floating())

	assert.True(t, TypeNText.Textual())
	assert.True(t, TypeHierarchyID.Textual())
	assert.False(t, TypeImage.Textual())

	assert.True(t, TypeImage.Binary())
	assert.False(t, TypeText.Binary())

	assert.True(t, TypeSmallDateTime.Temporal())
	assert.True(t, TypeDateTimeOffset.Temporal())
	assert.False(t, TypeUniqueIdentifier.Temporal())
}
