package dictionary

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestApplyIsCaseInsensitive(t *testing.T) {
	d := New(map[string]string{"AI": "エーアイ"})

	assert.Equal(t, "エーアイ is", d.Apply("ai is"))
	assert.Equal(t, "エーアイ is", d.Apply("AI is"))
	assert.Equal(t, "エーアイ is", d.Apply("Ai is"))
}

func TestApplyEmptyDictionaryIsIdentity(t *testing.T) {
	inputs := []string{"", "plain text", "AI と TTS", "  spaced  "}
	for _, d := range []*Dictionary{New(nil), New(map[string]string{}), nil, {}} {
		for _, in := range inputs {
			assert.Equal(t, in, d.Apply(in))
		}
	}
}

func TestApplyLongestKeyFirst(t *testing.T) {
	d := New(map[string]string{
		"AI":      "エーアイ",
		"AI chip": "エーアイチップ",
	})
	assert.Equal(t, "新しいエーアイチップとエーアイ", d.Apply("新しいAI chipとAI"))
}

func TestApplyDoesNotRescanReadings(t *testing.T) {
	d := New(map[string]string{
		"TTS": "text to speech",
		"text": "テキスト",
	})
	assert.Equal(t, "text to speech and テキスト", d.Apply("TTS and text"))
}

func TestNewSkipsBlankEntries(t *testing.T) {
	d := New(map[string]string{"": "x", "y": " ", " go ": " ゴー "})
	assert.Equal(t, 1, d.Len())

	r, ok := d.Lookup("GO")
	require.True(t, ok)
	assert.Equal(t, "ゴー", r)
}

func TestParse(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    map[string]string
		wantErr error
	}{
		{
			name:  "header is skipped",
			input: "word,reading\nAI,エーアイ\nGitHub,ギットハブ\n",
			want:  map[string]string{"ai": "エーアイ", "github": "ギットハブ"},
		},
		{
			name:  "fields are trimmed and extra columns ignored",
			input: "word,reading,note\n  TTS , ティーティーエス ,speech\n",
			want:  map[string]string{"tts": "ティーティーエス"},
		},
		{
			name:  "rows with blank fields are dropped",
			input: "word,reading\nAI,\n,reading\nonly\n\nok,オーケー\n",
			want:  map[string]string{"ok": "オーケー"},
		},
		{
			name:  "header only",
			input: "word,reading\n",
			want:  map[string]string{},
		},
		{
			name:    "empty source",
			input:   "",
			wantErr: ErrNoHeader,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d, err := Parse(strings.NewReader(tt.input))
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, len(tt.want), d.Len())
			for surface, reading := range tt.want {
				got, ok := d.Lookup(surface)
				assert.True(t, ok, "missing %q", surface)
				assert.Equal(t, reading, got)
			}
		})
	}
}

func TestLoaderFetchHTTP(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/csv")
		_, _ = w.Write([]byte("word,reading\nAI,エーアイ\n"))
	}))
	defer srv.Close()

	d, err := Loader{Source: srv.URL}.Fetch(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "エーアイです", d.Apply("AIです"))
}

func TestLoaderFetchFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "dict.csv")
	require.NoError(t, os.WriteFile(path, []byte("word,reading\nGo,ゴー\n"), 0o600))

	d, err := Loader{Source: path}.Fetch(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, d.Len())
}

func TestLoaderLoadFailsSoft(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "gone", http.StatusNotFound)
	}))
	defer srv.Close()

	tests := []struct {
		name   string
		source string
	}{
		{"http error status", srv.URL},
		{"missing file", filepath.Join(t.TempDir(), "missing.csv")},
		{"unreachable host", "http://127.0.0.1:1/dict.csv"},
		{"no source", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := Loader{Source: tt.source}.Load(context.Background())
			require.NotNil(t, d)
			assert.Equal(t, 0, d.Len())
			assert.Equal(t, "AI", d.Apply("AI"))
		})
	}
}
