package dump

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"floorview/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func TestParseFormat(t *testing.T) {
	tests := []struct {
		in      string
		want    Format
		wantErr bool
	}{
		{"", FormatJSON, false},
		{"JSON", FormatJSON, false},
		{" yaml ", FormatYAML, false},
		{"yml", FormatYAML, false},
		{"csv", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseFormat(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestEncode_JSONKeepsUnicodeAndIndents(t *testing.T) {
	var buf bytes.Buffer
	cats := []models.Category{{ID: 1, Title: "游戏 <综合>", ModeratorNames: "甲、乙"}}

	require.NoError(t, Encode(&buf, FormatJSON, cats))

	out := buf.String()
	assert.Contains(t, out, `"title": "游戏 <综合>"`)
	assert.Contains(t, out, "\n        \"id\": 1,")
	assert.NotContains(t, out, `\u`)
}

func TestEncode_YAML(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Encode(&buf, FormatYAML, models.Tag{ID: 3, Name: "攻略"}))

	var got models.Tag
	require.NoError(t, yaml.Unmarshal(buf.Bytes(), &got))
	assert.Equal(t, models.Tag{ID: 3, Name: "攻略"}, got)
}

func TestEncode_UnknownFormat(t *testing.T) {
	assert.Error(t, Encode(&bytes.Buffer{}, Format("xml"), 1))
}

func TestWriteFile(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested")

	path, err := WriteFile(dir, "categories", FormatYAML, []models.Tag{{ID: 1, Name: "全部"}})
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "categories.yaml"), path)

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(raw), "name: 全部")
}

func TestWriteFile_RemovesFileWhenEncodingFails(t *testing.T) {
	dir := t.TempDir()

	_, err := WriteFile(dir, "broken", FormatJSON, map[string]any{"ch": make(chan int)})
	require.Error(t, err)

	_, statErr := os.Stat(filepath.Join(dir, "broken.json"))
	assert.True(t, os.IsNotExist(statErr))
}
