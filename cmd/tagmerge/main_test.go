package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

const tagsFile = "testdata/tags.yaml"

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()

	cmd := newRootCmd()

	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)

	err := cmd.Execute()

	return out.String(), err
}

func TestVersion(t *testing.T) {
	out, err := run(t, "version")
	require.NoError(t, err)
	assert.Contains(t, out, "tagmerge dev")
}

func TestCheck(t *testing.T) {
	tests := []struct {
		name     string
		model    string
		wantErr  bool
		contains []string
	}{
		{
			name:     "valid file",
			model:    tagsFile,
			contains: []string{"0 error(s), 1 warning(s)", "unknown_element", "[com.acme.Service]: [built] 2 meta-tag(s)"},
		},
		{
			name:     "alias misconfiguration",
			model:    "testdata/broken.yaml",
			wantErr:  true,
			contains: []string{"mismatched_kind", "1 error(s), 0 warning(s)"},
		},
		{
			name:     "invalid declarations",
			model:    "testdata/invalid.yaml",
			wantErr:  true,
			contains: []string{"duplicate_attribute"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := run(t, "check", "-m", tt.model)
			if tt.wantErr {
				require.ErrorIs(t, err, errCheckFailed)
			} else {
				require.NoError(t, err)
			}

			for _, s := range tt.contains {
				assert.Contains(t, out, s)
			}
		})
	}
}

func TestCheckMissingFile(t *testing.T) {
	_, err := run(t, "check", "-m", "testdata/nope.yaml")
	require.Error(t, err)
	assert.NotErrorIs(t, err, errCheckFailed)
}

func TestGet(t *testing.T) {
	out, err := run(t, "get", "-m", tagsFile, "--strategy", "exhaustive",
		"-e", "com.acme.OrderService", "-s", "Component")
	require.NoError(t, err)

	var doc struct {
		Schema    string         `yaml:"schema"`
		Source    string         `yaml:"source"`
		Aggregate int            `yaml:"aggregate"`
		Depth     int            `yaml:"depth"`
		MetaTypes []string       `yaml:"meta_types"`
		Values    map[string]any `yaml:"values"`
	}

	require.NoError(t, yaml.Unmarshal([]byte(out), &doc))
	assert.Equal(t, "com.acme.Component", doc.Schema)
	assert.Equal(t, "com.acme.BaseService", doc.Source)
	assert.Equal(t, 2, doc.Aggregate)
	assert.Equal(t, 1, doc.Depth)
	assert.Equal(t, []string{"com.acme.Service", "com.acme.Component"}, doc.MetaTypes)
	assert.Equal(t, map[string]any{"value": "base"}, doc.Values)
}

func TestGetText(t *testing.T) {
	out, err := run(t, "get", "-m", tagsFile, "-o", "text", "--strategy", "superclass",
		"-e", "com.acme.OrderService", "-s", "Timeout")
	require.NoError(t, err)
	assert.Equal(t,
		"@com.acme.Timeout(millis=250, unit=com.acme.Unit.MILLISECONDS, retries=[0.5, 1.5]) on com.acme.BaseService (aggregate 1, depth 0)\n",
		out)
}

func TestGetMissing(t *testing.T) {
	out, err := run(t, "get", "-m", tagsFile, "-e", "com.acme.OrderService", "-s", "Timeout")
	require.NoError(t, err)
	assert.Equal(t, "schema: Timeout\npresent: false\n", out)

	out, err = run(t, "get", "-m", tagsFile, "-o", "text", "-e", "com.acme.OrderService", "-s", "Timeout")
	require.NoError(t, err)
	assert.Equal(t, "<missing>\n", out)
}

func TestGetErrors(t *testing.T) {
	_, err := run(t, "get", "-m", tagsFile, "-e", "com.acme.Nothing", "-s", "Component")
	require.ErrorContains(t, err, "unknown element")

	_, err = run(t, "get", "-m", tagsFile, "--strategy", "sideways", "-e", "com.acme.OrderService", "-s", "Component")
	require.ErrorContains(t, err, "invalid config")

	_, err = run(t, "get", "-m", tagsFile, "-e", "com.acme.OrderService")
	require.Error(t, err)
}

func TestStream(t *testing.T) {
	tests := []struct {
		name string
		args []string
		want []string
	}{
		{name: "exhaustive", args: []string{"--strategy", "exhaustive"}, want: []string{"dev", "qa", "prod", "api"}},
		{name: "first run", args: []string{"--strategy", "exhaustive", "--first-run"}, want: []string{"dev", "qa", "prod"}},
		{name: "direct", want: []string{"dev", "qa", "prod"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			args := append([]string{"stream", "-m", tagsFile, "-e", "com.acme.OrderService", "-s", "com.acme.Profile"}, tt.args...)

			out, err := run(t, args...)
			require.NoError(t, err)

			var docs []struct {
				Values map[string]string `yaml:"values"`
			}

			require.NoError(t, yaml.Unmarshal([]byte(out), &docs))

			var got []string
			for _, d := range docs {
				got = append(got, d.Values["value"])
			}

			assert.Equal(t, tt.want, got)
		})
	}
}

func TestDump(t *testing.T) {
	out, err := run(t, "dump", "-m", tagsFile, "-s", "Service")
	require.NoError(t, err)
	assert.Contains(t, out, `Schema: (string) (len=16) "com.acme.Service"`)
	assert.Contains(t, out, `"com.acme.Component.value"`)
	assert.Contains(t, out, `"com.acme.Indexed"`)

	_, err = run(t, "dump", "-m", tagsFile, "-s", "Nothing")
	require.Error(t, err)
}

func TestConfigFile(t *testing.T) {
	model, err := filepath.Abs(tagsFile)
	require.NoError(t, err)

	cfg := filepath.Join(t.TempDir(), "tagmerge.yaml")
	require.NoError(t, os.WriteFile(cfg, []byte("model: "+model+"\nstrategy: inherited\noutput: text\n"), 0o644))

	out, err := run(t, "--config", cfg, "get", "-e", "com.acme.OrderService", "-s", "Service")
	require.NoError(t, err)
	assert.Equal(t, "@com.acme.Service(value=\"base\", name=\"base\") on com.acme.BaseService (aggregate 1, depth 0)\n", out)

	_, err = run(t, "--config", filepath.Join(t.TempDir(), "missing.yaml"), "version")
	require.Error(t, err)

	t.Setenv("TAGMERGE_OUTPUT", "json")
	_, err = run(t, "--config", cfg, "version")
	require.ErrorContains(t, err, "invalid config")
}
