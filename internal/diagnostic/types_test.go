package diagnostic

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDiagnosticsLifecycle(t *testing.T) {
	var d Diagnostics

	assert.True(t, d.IsValid())
	require.NoError(t, d.Error())

	d.AddWarning("unknown_meta", "meta tag \"Componnt\" is not declared", "Service", "", "Component")
	d.AddInfo("note", "schema has no attributes", "Marker", "")
	assert.True(t, d.IsValid())

	d.AddError("duplicate_schema", "duplicate schema \"Alpha\"", "Alpha", "")
	assert.True(t, d.HasErrors())
	assert.Equal(t, []string{"duplicate_schema"}, d.Codes())

	err := d.Error()
	require.Error(t, err)
	assert.Equal(t, "[Alpha]: [duplicate_schema] duplicate schema \"Alpha\"", err.Error())

	all := d.All()
	require.Len(t, all, 3)
	assert.Equal(t, SeverityError, all[0].Severity)
	assert.Equal(t, SeverityWarning, all[1].Severity)
	assert.Equal(t, SeverityInfo, all[2].Severity)
}

func TestDiagnosticString(t *testing.T) {
	d := Diagnostic{
		Code:        "missing_alias_target",
		Message:     "alias target not found",
		Subject:     "Alpha",
		Attribute:   "one",
		Suggestions: []string{"two"},
	}

	assert.Equal(t, "[Alpha] one: [missing_alias_target] alias target not found (did you mean two?)", d.String())
	assert.Equal(t, "plain", Diagnostic{Message: "plain"}.String())
}

func TestMerge(t *testing.T) {
	var a, b Diagnostics

	a.AddError("e1", "first", "", "")
	b.AddError("e2", "second", "", "")
	b.AddWarning("w1", "warn", "", "")

	a.Merge(b)
	assert.Equal(t, []string{"e1", "e2"}, a.Codes())
	assert.Len(t, a.Warnings, 1)
	assert.Equal(t, "warning", SeverityWarning.String())
	assert.Equal(t, "unknown", Severity(42).String())
}
