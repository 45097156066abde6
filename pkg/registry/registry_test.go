package registry_test

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/goccy/go-yaml"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentstation/careroster/pkg/clients"
	"github.com/agentstation/careroster/pkg/errors"
	"github.com/agentstation/careroster/pkg/registry"
)

func sampleRegistry(t *testing.T) *clients.Registry {
	t.Helper()

	a := clients.New("AZ-2")
	a.Name = "佐藤 花子"
	a.Gender = clients.GenderFemale
	a.MedicalHistory = "高血圧\n糖尿病"
	a.ChangeEvents = []clients.ChangeEvent{{
		ID:            "ev-1",
		Kind:          clients.EventNewEnrollment,
		EffectiveDate: "2025-04-01",
		Provenance:    clients.ProvenanceMachine,
	}}

	b := clients.New("AZ-1")
	b.Name = "田中 一郎"

	reg, err := clients.NewRegistry(a, b)
	require.NoError(t, err)
	return reg
}

func TestEncodeIsDeterministic(t *testing.T) {
	reg := sampleRegistry(t)

	first, err := registry.Encode(reg)
	require.NoError(t, err)
	second, err := registry.Encode(reg.Clone())
	require.NoError(t, err)
	assert.Equal(t, string(first), string(second))

	decoded, err := registry.Decode(first, "test")
	require.NoError(t, err)
	third, err := registry.Encode(decoded)
	require.NoError(t, err)
	assert.Equal(t, string(first), string(third), "encode(decode(x)) must reproduce x")

	assert.Contains(t, string(first), "version: 1")
	assert.Less(t, bytes.Index(first, []byte(`id: "AZ-1"`)), bytes.Index(first, []byte(`id: "AZ-2"`)), "clients are ordered by ID")
}

func TestEncodePreservesFreeText(t *testing.T) {
	tests := []struct {
		name  string
		value string
	}{
		{name: "leading indentation", value: "  既往歴\n高血圧"},
		{name: "crlf line breaks", value: "高血圧\r\n糖尿病"},
		{name: "trailing newlines", value: "高血圧\n\n"},
		{name: "tab", value: "高血圧\t(2019)"},
		{name: "infinity keyword", value: ".inf"},
		{name: "nan keyword", value: ".nan"},
		{name: "bool keyword", value: "yes"},
		{name: "numeric", value: "0123"},
		{name: "comment marker", value: "要観察 # 夜間"},
		{name: "quotes and backslash", value: `"a" \ 'b'`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := clients.New("AZ-7")
			c.Name = "山本 和子"
			c.MedicalHistory = tt.value
			c.Address = tt.value
			reg, err := clients.NewRegistry(c)
			require.NoError(t, err)

			data, err := registry.Encode(reg)
			require.NoError(t, err)
			decoded, err := registry.Decode(data, tt.name)
			require.NoError(t, err)

			got, ok := decoded.Get("AZ-7")
			require.True(t, ok)
			assert.Equal(t, tt.value, got.MedicalHistory)
			assert.Equal(t, tt.value, got.Address)

			again, err := registry.Encode(decoded)
			require.NoError(t, err)
			assert.Equal(t, string(data), string(again))
		})
	}
}

func TestDecodeReadsBlockScalars(t *testing.T) {
	c := clients.New("AZ-3")
	c.Name = "鈴木 次郎"
	c.MedicalHistory = "高血圧\n糖尿病"
	legacy, err := yaml.MarshalWithOptions(registry.Document{Version: 1, Clients: []clients.Client{c}},
		yaml.UseLiteralStyleIfMultiline(true))
	require.NoError(t, err)
	require.Contains(t, string(legacy), "medical_history: |-")

	reg, err := registry.Decode(legacy, "block")
	require.NoError(t, err)

	got, ok := reg.Get("AZ-3")
	require.True(t, ok)
	assert.Equal(t, "高血圧\n糖尿病", got.MedicalHistory)
}

func TestDecodeEmpty(t *testing.T) {
	reg, err := registry.Decode([]byte("  \n"), "empty")
	require.NoError(t, err)
	assert.Equal(t, 0, reg.Len())

	data, err := registry.Encode(nil)
	require.NoError(t, err)
	reg, err = registry.Decode(data, "nil")
	require.NoError(t, err)
	assert.Equal(t, 0, reg.Len())
}

func TestDecodeRejects(t *testing.T) {
	tests := []struct {
		name  string
		input string
		check func(error) bool
	}{
		{
			name:  "duplicate ids",
			input: "version: 1\nclients:\n  - id: AZ-1\n    name: a\n  - id: AZ-1\n    name: b\n",
			check: errors.IsValidationError,
		},
		{
			name:  "future version",
			input: "version: 99\nclients: []\n",
			check: errors.IsValidationError,
		},
		{
			name:  "corrupt yaml",
			input: "version: [1\nclients: {",
			check: func(err error) bool { return err != nil },
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := registry.Decode([]byte(tt.input), tt.name)
			require.Error(t, err)
			assert.True(t, tt.check(err), "unexpected error: %v", err)
		})
	}
}

func TestFileRoundTrip(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "nested", "registry.yaml")
	store := registry.NewFile(path)

	empty, err := store.Load(ctx)
	require.NoError(t, err, "missing file loads as empty registry")
	assert.Equal(t, 0, empty.Len())

	reg := sampleRegistry(t)
	require.NoError(t, store.Save(ctx, reg))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())

	loaded, err := store.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, reg.IDs(), loaded.IDs())

	got, ok := loaded.Get("AZ-2")
	require.True(t, ok)
	assert.Equal(t, "高血圧\n糖尿病", got.MedicalHistory)
	assert.Equal(t, clients.GenderFemale, got.Gender)

	entries, err := os.ReadDir(filepath.Dir(path))
	require.NoError(t, err)
	assert.Len(t, entries, 1, "no temp files left behind")
}

func TestFileLoadCorrupt(t *testing.T) {
	path := filepath.Join(t.TempDir(), "registry.yaml")
	require.NoError(t, os.WriteFile(path, []byte("clients: {{{"), 0o600))

	_, err := registry.NewFile(path).Load(context.Background())
	assert.Error(t, err)
}

func TestFileHonorsCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	store := registry.NewFile(filepath.Join(t.TempDir(), "registry.yaml"))
	assert.ErrorIs(t, store.Save(ctx, sampleRegistry(t)), context.Canceled)
	_, err := store.Load(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestOpen(t *testing.T) {
	ctx := context.Background()

	s, err := registry.Open(ctx, "file:///tmp/roster/registry.yaml")
	require.NoError(t, err)
	assert.Equal(t, "/tmp/roster/registry.yaml", s.Location())

	s, err = registry.Open(ctx, "registry.yaml")
	require.NoError(t, err)
	assert.IsType(t, &registry.File{}, s)

	s, err = registry.Open(ctx, "s3://roster-bucket/prod/registry.yaml",
		registry.WithStaticCredentials("AKIA", "SECRET"))
	require.NoError(t, err)
	assert.Equal(t, "s3://roster-bucket/prod/registry.yaml", s.Location())

	_, err = registry.Open(ctx, "s3://bucket-only")
	assert.Error(t, err)
	_, err = registry.Open(ctx, "")
	assert.Error(t, err)
}
