package fingerprint

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCompute_Deterministic(t *testing.T) {
	inputs := map[string]interface{}{
		"idea":     "dog walking",
		"audience": []interface{}{"busy professionals", "pet owners"},
	}

	fp1, err := Compute("business_name", "modelA", inputs)
	require.NoError(t, err)
	fp2, err := Compute("business_name", "modelA", inputs)
	require.NoError(t, err)

	assert.Equal(t, fp1, fp2)
	assert.Len(t, fp1, 64, "expected full hex-encoded SHA-256")
}

func TestCompute_WhitespaceInsensitive(t *testing.T) {
	fp1, err := Compute("bio", "m", map[string]interface{}{"idea": "  dog   walking "})
	require.NoError(t, err)
	fp2, err := Compute("bio", "m", map[string]interface{}{"idea": "dog walking"})
	require.NoError(t, err)

	assert.Equal(t, fp1, fp2)
}

func TestCompute_TagOrderInsensitive(t *testing.T) {
	fp1, err := Compute("bio", "m", map[string]interface{}{
		"audience": []interface{}{"Pet Owners", "busy professionals"},
	})
	require.NoError(t, err)
	fp2, err := Compute("bio", "m", map[string]interface{}{
		"audience": []interface{}{"busy professionals", "pet owners"},
	})
	require.NoError(t, err)

	assert.Equal(t, fp1, fp2, "tag order and case should not affect the fingerprint")
}

func TestCompute_DifferentInputsDiffer(t *testing.T) {
	base := map[string]interface{}{"idea": "dog walking"}

	fp1, err := Compute("business_name", "modelA", base)
	require.NoError(t, err)

	tests := []struct {
		name   string
		stage  string
		model  string
		inputs map[string]interface{}
	}{
		{"different idea", "business_name", "modelA", map[string]interface{}{"idea": "cat sitting"}},
		{"different stage", "tagline", "modelA", base},
		{"different model", "business_name", "modelB", base},
		{"extra field", "business_name", "modelA", map[string]interface{}{"idea": "dog walking", "vibe": "playful"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fp, err := Compute(tt.stage, tt.model, tt.inputs)
			require.NoError(t, err)
			assert.NotEqual(t, fp1, fp)
		})
	}
}

func TestCompute_NilInputs(t *testing.T) {
	fp1, err := Compute("logo", "m", nil)
	require.NoError(t, err)
	fp2, err := Compute("logo", "m", map[string]interface{}{})
	require.NoError(t, err)

	assert.Equal(t, fp1, fp2, "nil and empty inputs should fingerprint identically")
}

func TestNormalize_NestedMap(t *testing.T) {
	got := Normalize(map[string]interface{}{
		"identity": map[string]interface{}{"name": "  Spark   Co "},
		"count":    float64(3),
	})

	nested, ok := got["identity"].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, "Spark Co", nested["name"])
	assert.Equal(t, float64(3), got["count"])
}
