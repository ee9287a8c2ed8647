package main

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/pathlab/coderunner/platform"
)

func TestGetLanguageFromFlag(t *testing.T) {
	t.Parallel()

	lang, err := getLanguage("js", "")
	require.NoError(t, err)
	require.Equal(t, platform.JavaScript, lang)

	lang, err = getLanguage("python", "whatever.js")
	require.NoError(t, err)
	require.Equal(t, platform.Python, lang)
}

func TestGetLanguageFromExtension(t *testing.T) {
	t.Parallel()

	lang, err := getLanguage("", "script.py")
	require.NoError(t, err)
	require.Equal(t, platform.Python, lang)

	for _, name := range []string{"app.js", "app.mjs", "app.cjs", "APP.JS"} {
		lang, err = getLanguage("", name)
		require.NoError(t, err)
		require.Equal(t, platform.JavaScript, lang, "file %q", name)
	}
}

func TestGetLanguageUnknown(t *testing.T) {
	t.Parallel()

	_, err := getLanguage("", "")
	require.Error(t, err)

	_, err = getLanguage("", "notes.txt")
	require.Error(t, err)

	_, err = getLanguage("ruby", "")
	require.ErrorIs(t, err, platform.ErrUnknownLanguage)
}
