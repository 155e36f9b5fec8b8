// FILE: lixenwraith/confres/coerce_test.go
package confres

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestStringCoercion tests the per-kind table used for environment strings
func TestStringCoercion(t *testing.T) {
	t.Run("Bool", func(t *testing.T) {
		truthy := []string{"true", "TRUE", "True", "1", "yes", "YES", " yes "}
		for _, raw := range truthy {
			v, err := fromString[KindBool](raw)
			require.NoError(t, err, raw)
			assert.Equal(t, true, v, raw)
		}

		falsy := []string{"false", "FALSE", "0", "no", "No"}
		for _, raw := range falsy {
			v, err := fromString[KindBool](raw)
			require.NoError(t, err, raw)
			assert.Equal(t, false, v, raw)
		}

		for _, raw := range []string{"", "on", "off", "y", "2", "truthy"} {
			_, err := fromString[KindBool](raw)
			assert.ErrorIs(t, err, ErrCoerce, raw)
		}
	})

	t.Run("Int", func(t *testing.T) {
		v, err := fromString[KindInt]("16")
		require.NoError(t, err)
		assert.Equal(t, 16, v)

		v, err = fromString[KindInt](" -3 ")
		require.NoError(t, err)
		assert.Equal(t, -3, v)

		for _, raw := range []string{"notanumber", "", "1.5", "0x10", "99999999999999999999999"} {
			_, err := fromString[KindInt](raw)
			assert.ErrorIs(t, err, ErrCoerce, raw)
		}
	})

	t.Run("StringsPassThrough", func(t *testing.T) {
		for _, kind := range []Kind{KindString, KindOptionalString} {
			v, err := fromString[kind](" spaced value ")
			require.NoError(t, err)
			assert.Equal(t, " spaced value ", v)
		}
	})

	t.Run("EveryKindHasCoercer", func(t *testing.T) {
		for _, f := range fieldTable {
			assert.NotNil(t, fromString[f.Kind], f.Name)
		}
	})
}

// TestNativeCoercion tests coercion of typed values from files and overrides
func TestNativeCoercion(t *testing.T) {
	stringField := Field{Name: "s", Kind: KindString}
	optionalField := Field{Name: "o", Kind: KindOptionalString}
	boolField := Field{Name: "b", Kind: KindBool}
	intField := Field{Name: "i", Kind: KindInt}

	tests := []struct {
		name    string
		field   Field
		input   any
		want    any
		wantErr bool
	}{
		{"string", stringField, "x", "x", false},
		{"string rejects int", stringField, 5, nil, true},
		{"string rejects nil", stringField, nil, nil, true},
		{"optional nil", optionalField, nil, nil, false},
		{"optional string", optionalField, "k", "k", false},
		{"optional rejects bool", optionalField, true, nil, true},
		{"bool native", boolField, true, true, false},
		{"bool from string", boolField, "no", false, false},
		{"bool rejects int", boolField, 1, nil, true},
		{"bool rejects nil", boolField, nil, nil, true},
		{"int native", intField, 7, 7, false},
		{"int64 from toml", intField, int64(16), 16, false},
		{"uint8", intField, uint8(3), 3, false},
		{"integral float", intField, 16.0, 16, false},
		{"fractional float", intField, 16.5, nil, true},
		{"NaN", intField, math.NaN(), nil, true},
		{"json integer", intField, json.Number("12"), 12, false},
		{"json integral float", intField, json.Number("12.0"), 12, false},
		{"json fraction", intField, json.Number("12.25"), nil, true},
		{"int from string", intField, "42", 42, false},
		{"int rejects bool", intField, true, nil, true},
		{"int rejects nil", intField, nil, nil, true},
		{"uint overflow", intField, uint64(math.MaxUint64), nil, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := coerce(tt.field, tt.input)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrCoerce)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
