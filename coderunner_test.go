package coderunner

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/pathlab/coderunner/platform"
	"github.com/pathlab/coderunner/player"
)

func TestNewPlayerRegistersBothLanguages(t *testing.T) {
	t.Parallel()

	p := NewPlayer(nil)
	require.NotNil(t, p)

	tmpl, err := p.SwitchLanguage(platform.JavaScript)
	require.NoError(t, err)
	require.NotEmpty(t, tmpl)

	tmpl, err = p.SwitchLanguage(platform.Python)
	require.NoError(t, err)
	require.NotEmpty(t, tmpl)
}

func TestRunJavaScript(t *testing.T) {
	t.Parallel()

	result, err := RunJavaScript(context.Background(), nil, `console.log("Hello, world!");`)
	require.NoError(t, err)
	require.False(t, result.Failed())
	require.Equal(t, []string{"Hello, world!"}, result.OutputLines)
}

func TestRunJavaScriptNoOutput(t *testing.T) {
	t.Parallel()

	result, err := RunJavaScript(context.Background(), nil, `const unused = 1;`)
	require.NoError(t, err)
	require.Equal(t, []string{platform.NoOutputMessage}, result.OutputLines)
}

func TestNewPlayerPhaseStream(t *testing.T) {
	t.Parallel()

	var kinds []platform.PhaseKind
	p := NewPlayer(nil, player.WithPhaseFunc(func(phase platform.Phase) {
		kinds = append(kinds, phase.Kind)
	}))

	_, err := p.Run(context.Background(), `console.log("hi")`, platform.JavaScript)
	require.NoError(t, err)
	require.Equal(t, []platform.PhaseKind{
		platform.PhaseDetecting,
		platform.PhaseLoadingPackages,
		platform.PhaseRunning,
		platform.PhaseSucceeded,
	}, kinds)
}
