package assayfield

import (
	"encoding/json"
	"errors"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func histologySchema() Schema {
	return Schema{
		Fields: []Definition{
			{Name: "slides", Type: TypeInteger, Required: true},
			{Name: "stain", Type: TypeString},
			{Name: "fixed_on", Type: TypeDate},
			{Name: "thickness", Type: TypeFloat},
			{Name: "archived", Type: TypeBoolean},
		},
	}
}

func TestValidateCoercesDeclaredFields(t *testing.T) {
	out, err := Validate(histologySchema(), map[string]interface{}{
		"slides":    float64(4),
		"stain":     "H&E",
		"fixed_on":  "2024-03-05T10:00:00Z",
		"thickness": json.Number("4.5"),
		"archived":  false,
		"extra":     "kept",
	})
	require.NoError(t, err)
	assert.Equal(t, int64(4), out["slides"])
	assert.Equal(t, "2024-03-05", out["fixed_on"])
	assert.Equal(t, 4.5, out["thickness"])
	assert.Equal(t, false, out["archived"])
	assert.Equal(t, "kept", out["extra"])
}

func TestValidateMissingRequiredField(t *testing.T) {
	_, err := Validate(histologySchema(), map[string]interface{}{"stain": "H&E"})
	require.Error(t, err)
	var fe *FieldError
	require.True(t, errors.As(err, &fe))
	assert.Equal(t, "slides", fe.Field)
}

func TestValidateRequiredFieldsWithoutDefinition(t *testing.T) {
	schema := Schema{RequiredFields: []string{"protocol"}}

	_, err := Validate(schema, map[string]interface{}{})
	var fe *FieldError
	require.True(t, errors.As(err, &fe))
	assert.Equal(t, "protocol", fe.Field)

	out, err := Validate(schema, map[string]interface{}{"protocol": 12})
	require.NoError(t, err)
	assert.Equal(t, 12, out["protocol"])
}

func TestValidateBlankStringCountsAsMissing(t *testing.T) {
	schema := Schema{Fields: []Definition{{Name: "stain", Type: TypeString}}, RequiredFields: []string{"stain"}}
	_, err := Validate(schema, map[string]interface{}{"stain": "  "})
	assert.Error(t, err)
}

func TestCoerce(t *testing.T) {
	ms := time.Date(2024, 1, 31, 12, 0, 0, 0, time.UTC).UnixMilli()
	cases := []struct {
		name    string
		typ     Type
		in      interface{}
		want    interface{}
		wantErr bool
	}{
		{"integer from int", TypeInteger, 7, int64(7), false},
		{"integer from integral float", TypeInteger, 3.0, int64(3), false},
		{"integer rejects fraction", TypeInteger, 3.5, nil, true},
		{"integer rejects string", TypeInteger, "3", nil, true},
		{"integer rejects 2^63", TypeInteger, math.Pow(2, 63), nil, true},
		{"integer rejects -2^63 float", TypeInteger, -math.Pow(2, 63), nil, true},
		{"integer from large json number", TypeInteger, json.Number("9223372036854775807"), int64(math.MaxInt64), false},
		{"float from int", TypeFloat, 2, 2.0, false},
		{"boolean rejects string", TypeBoolean, "true", nil, true},
		{"text", TypeText, "long form", "long form", false},
		{"string rejects number", TypeString, 1, nil, true},
		{"date from time", TypeDate, time.Date(2023, 12, 1, 23, 0, 0, 0, time.UTC), "2023-12-01", false},
		{"date from day string", TypeDate, "2023-12-01", "2023-12-01", false},
		{"date from epoch millis", TypeDate, ms, "2024-01-31", false},
		{"date from epoch millis float", TypeDate, float64(ms), "2024-01-31", false},
		{"date rejects garbage", TypeDate, "next tuesday", nil, true},
		{"date rejects bool", TypeDate, true, nil, true},
		{"unknown type", Type("BLOB"), "x", nil, true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := Coerce(tc.typ, tc.in)
			if tc.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestNormalizeRestoresIntegers(t *testing.T) {
	out := Normalize(histologySchema(), map[string]interface{}{"slides": float64(4), "stain": 9})
	assert.Equal(t, int64(4), out["slides"])
	assert.Equal(t, 9, out["stain"])
	assert.Nil(t, Normalize(histologySchema(), nil))
}

func TestNormalizeDecodedJSONNumbers(t *testing.T) {
	out := Normalize(histologySchema(), map[string]interface{}{
		"slides":    json.Number("4"),
		"thickness": json.Number("4.5"),
		"fixed_on":  "2024-03-05",
	})
	assert.Equal(t, int64(4), out["slides"])
	assert.Equal(t, 4.5, out["thickness"])
	assert.Equal(t, "2024-03-05", out["fixed_on"])
}
