package manifest_test

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/abdidvp/automigrate/internal/adapters/outbound/manifest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const samplePackage = `{
    "name": "web",
    "scripts": {
        "storybook": "start-storybook -p 6006",
        "build-storybook": "build-storybook"
    },
    "dependencies": {
        "react": "^18.2.0"
    },
    "devDependencies": {
        "@storybook/react": "^6.5.16",
        "zzz": "1.0.0"
    }
}
`

func TestParse_InvalidJSON(t *testing.T) {
	_, err := manifest.Parse([]byte(`{"name": `))
	assert.Error(t, err)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := manifest.Load(filepath.Join(t.TempDir(), "package.json"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestDocument_BytesPreservesLayout(t *testing.T) {
	doc, err := manifest.Parse([]byte(samplePackage))
	require.NoError(t, err)
	assert.Equal(t, samplePackage, string(doc.Bytes()), "unedited document should round-trip byte for byte")
}

func TestDocument_Readers(t *testing.T) {
	doc, err := manifest.Parse([]byte(samplePackage))
	require.NoError(t, err)

	name, ok := doc.String("name")
	assert.True(t, ok)
	assert.Equal(t, "web", name)

	v, ok := doc.DependencyVersion("@storybook/react")
	assert.True(t, ok)
	assert.Equal(t, "^6.5.16", v)

	assert.True(t, doc.HasDependency("react"))
	assert.False(t, doc.HasDependency("vite"))
	assert.True(t, doc.Has("scripts", "storybook"))
	assert.False(t, doc.Has("scripts", "test"))

	assert.Equal(t, map[string]string{
		"storybook":       "start-storybook -p 6006",
		"build-storybook": "build-storybook",
	}, doc.Scripts())
}

func TestDocument_Strings(t *testing.T) {
	doc, err := manifest.Parse([]byte(`{"extends": ["eslint:recommended", "plugin:react/recommended"], "single": "x", "n": 3}`))
	require.NoError(t, err)

	assert.Equal(t, []string{"eslint:recommended", "plugin:react/recommended"}, doc.Strings("extends"))
	assert.Equal(t, []string{"x"}, doc.Strings("single"))
	assert.Nil(t, doc.Strings("n"))
	assert.Nil(t, doc.Strings("missing"))
}

func TestDocument_AddDevDependencyKeepsOrder(t *testing.T) {
	doc, err := manifest.Parse([]byte(samplePackage))
	require.NoError(t, err)

	require.NoError(t, doc.AddDevDependency("@storybook/builder-vite", "^7.6.17"))

	out := string(doc.Bytes())
	assert.Contains(t, out, `"zzz": "1.0.0",
        "@storybook/builder-vite": "^7.6.17"`, "new entries are appended, existing order is untouched")
	assert.Less(t, strings.Index(out, `"name"`), strings.Index(out, `"scripts"`))
}

func TestDocument_AddDevDependencyAlreadyDeclared(t *testing.T) {
	doc, err := manifest.Parse([]byte(samplePackage))
	require.NoError(t, err)

	require.NoError(t, doc.AddDevDependency("react", "^19.0.0"))
	assert.Equal(t, samplePackage, string(doc.Bytes()))
}

func TestDocument_AddDevDependencyCreatesSection(t *testing.T) {
	doc, err := manifest.Parse([]byte("{\n  \"name\": \"web\"\n}\n"))
	require.NoError(t, err)

	require.NoError(t, doc.AddDevDependency("eslint-plugin-storybook", "^0.8.0"))

	m, err := doc.Manifest()
	require.NoError(t, err)
	assert.Equal(t, "^0.8.0", m.DevDependencies["eslint-plugin-storybook"])
	assert.Equal(t, "web", m.Name)
}

func TestDocument_RemoveDependency(t *testing.T) {
	doc, err := manifest.Parse([]byte(samplePackage))
	require.NoError(t, err)

	doc.RemoveDependency("@storybook/react")
	doc.RemoveDependency("not-there")

	m, err := doc.Manifest()
	require.NoError(t, err)
	assert.NotContains(t, m.DevDependencies, "@storybook/react")
	assert.Equal(t, "1.0.0", m.DevDependencies["zzz"])
	assert.Equal(t, "^18.2.0", m.Dependencies["react"])
}

func TestDocument_SetScript(t *testing.T) {
	doc, err := manifest.Parse([]byte(samplePackage))
	require.NoError(t, err)

	require.NoError(t, doc.Set("storybook dev -p 6006", manifest.SectionScripts, "storybook"))

	assert.Equal(t, "storybook dev -p 6006", doc.Scripts()["storybook"])
	assert.Contains(t, string(doc.Bytes()), `"storybook": "storybook dev -p 6006",`, "script keeps its position")
}

func TestDocument_SetEscapesValues(t *testing.T) {
	doc, err := manifest.Parse([]byte(`{"scripts": {"a": "x"}}`))
	require.NoError(t, err)

	require.NoError(t, doc.Set(`echo "hi"`, "scripts", "a"))

	var raw map[string]map[string]string
	require.NoError(t, json.Unmarshal(doc.Bytes(), &raw))
	assert.Equal(t, `echo "hi"`, raw["scripts"]["a"])
}

func TestDocument_TabIndent(t *testing.T) {
	in := "{\n\t\"name\": \"web\"\n}"
	doc, err := manifest.Parse([]byte(in))
	require.NoError(t, err)
	require.NoError(t, doc.Set("1.0.0", "version"))

	assert.Equal(t, "{\n\t\"name\": \"web\",\n\t\"version\": \"1.0.0\"\n}", string(doc.Bytes()))
}

func TestEdit_WritesOnlyOnChange(t *testing.T) {
	path := filepath.Join(t.TempDir(), "package.json")
	require.NoError(t, os.WriteFile(path, []byte(samplePackage), 0o644))

	changed, err := manifest.Edit(path, func(doc *manifest.Document) error {
		return doc.AddDevDependency("react", "^19.0.0")
	})
	require.NoError(t, err)
	assert.False(t, changed)

	changed, err = manifest.Edit(path, func(doc *manifest.Document) error {
		doc.RemoveDependency("zzz")
		return nil
	})
	require.NoError(t, err)
	assert.True(t, changed)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.NotContains(t, string(data), "zzz")
}

func TestDocument_AddDevDependencyKeepsInlineArrays(t *testing.T) {
	in := "{\n  \"name\": \"web\",\n  \"files\": [\"dist\", \"lib\"],\n  \"keywords\": [],\n  \"devDependencies\": {\n    \"storybook\": \"^7.6.0\"\n  }\n}\n"
	doc, err := manifest.Parse([]byte(in))
	require.NoError(t, err)

	require.NoError(t, doc.AddDevDependency("@storybook/addon-mdx-gfm", "^7.6.17"))

	assert.Equal(t, "{\n  \"name\": \"web\",\n  \"files\": [\"dist\", \"lib\"],\n  \"keywords\": [],\n  \"devDependencies\": {\n    \"storybook\": \"^7.6.0\",\n    \"@storybook/addon-mdx-gfm\": \"^7.6.17\"\n  }\n}\n", string(doc.Bytes()))
}

func TestDocument_LineEndingsAndBOM(t *testing.T) {
	in := "\xEF\xBB\xBF{\r\n  \"name\": \"web\",\r\n  \"files\": [\"dist\"],\r\n  \"scripts\": {\r\n    \"storybook\": \"start-storybook\"\r\n  }\r\n}\r\n"

	out, err := manifest.Transform([]byte(in), func(*manifest.Document) error { return nil })
	require.NoError(t, err)
	assert.Equal(t, in, string(out), "an untouched document is written back byte for byte")

	out, err = manifest.Transform([]byte(in), func(doc *manifest.Document) error {
		return doc.Set("storybook dev", manifest.SectionScripts, "storybook")
	})
	require.NoError(t, err)
	assert.Equal(t, "\xEF\xBB\xBF{\r\n  \"name\": \"web\",\r\n  \"files\": [\"dist\"],\r\n  \"scripts\": {\r\n    \"storybook\": \"storybook dev\"\r\n  }\r\n}\r\n", string(out))

	out, err = manifest.Transform([]byte(in), func(doc *manifest.Document) error {
		return doc.AddDevDependency("storybook", "^7.6.17")
	})
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(out), "\xEF\xBB\xBF{\r\n"))
	assert.Contains(t, string(out), "  },\r\n  \"devDependencies\": {\r\n    \"storybook\": \"^7.6.17\"\r\n  }\r\n}\r\n")
	assert.NotContains(t, strings.ReplaceAll(string(out), "\r\n", ""), "\n", "every line ending stays CRLF")
}

func TestDocument_Delete(t *testing.T) {
	tests := []struct {
		name string
		keys []string
		want string
	}{
		{
			name: "first member",
			keys: []string{"devDependencies", "a"},
			want: "{\n  \"devDependencies\": {\n    \"b\": \"2\",\n    \"c\": \"3\"\n  },\n  \"x\": {\"only\": 1}\n}\n",
		},
		{
			name: "middle member",
			keys: []string{"devDependencies", "b"},
			want: "{\n  \"devDependencies\": {\n    \"a\": \"1\",\n    \"c\": \"3\"\n  },\n  \"x\": {\"only\": 1}\n}\n",
		},
		{
			name: "last member",
			keys: []string{"devDependencies", "c"},
			want: "{\n  \"devDependencies\": {\n    \"a\": \"1\",\n    \"b\": \"2\"\n  },\n  \"x\": {\"only\": 1}\n}\n",
		},
		{
			name: "only member",
			keys: []string{"x", "only"},
			want: "{\n  \"devDependencies\": {\n    \"a\": \"1\",\n    \"b\": \"2\",\n    \"c\": \"3\"\n  },\n  \"x\": {}\n}\n",
		},
		{
			name: "missing",
			keys: []string{"devDependencies", "zzz"},
			want: "{\n  \"devDependencies\": {\n    \"a\": \"1\",\n    \"b\": \"2\",\n    \"c\": \"3\"\n  },\n  \"x\": {\"only\": 1}\n}\n",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc, err := manifest.Parse([]byte("{\n  \"devDependencies\": {\n    \"a\": \"1\",\n    \"b\": \"2\",\n    \"c\": \"3\"\n  },\n  \"x\": {\"only\": 1}\n}\n"))
			require.NoError(t, err)
			doc.Delete(tt.keys...)
			assert.Equal(t, tt.want, string(doc.Bytes()))
		})
	}
}

func TestDocument_Acknowledge(t *testing.T) {
	doc, err := manifest.Parse([]byte("{\n  \"name\": \"web\"\n}\n"))
	require.NoError(t, err)

	require.NoError(t, doc.Acknowledge("storyshotsMigration"))
	assert.Equal(t, "{\n  \"name\": \"web\",\n  \"automigrate\": {\n    \"acknowledged\": [\n      \"storyshotsMigration\"\n    ]\n  }\n}\n", string(doc.Bytes()))

	require.NoError(t, doc.Acknowledge("mdxgfm"))
	require.NoError(t, doc.Acknowledge("storyshotsMigration"))

	m, err := doc.Manifest()
	require.NoError(t, err)
	assert.Equal(t, []string{"storyshotsMigration", "mdxgfm"}, m.Automigrate.Acknowledged)
	assert.True(t, m.Acknowledged("mdxgfm"))
	assert.False(t, m.Acknowledged("sbBinary"))
}
