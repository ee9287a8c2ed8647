package javascript

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRewriteImports(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		code string
		want string
	}{
		{
			name: "default import",
			code: `import _ from "lodash";`,
			want: `const _ = __loadedPackage("lodash");`,
		},
		{
			name: "namespace import",
			code: `import * as R from "ramda";`,
			want: `const R = __loadedPackage("ramda");`,
		},
		{
			name: "named import",
			code: `import { chunk, uniq } from "lodash";`,
			want: `const {chunk, uniq} = __loadedPackage("lodash");`,
		},
		{
			name: "named import with rename",
			code: `import { chunk as split } from "lodash";`,
			want: `const {chunk: split} = __loadedPackage("lodash");`,
		},
		{
			name: "default plus named",
			code: `import _, { chunk } from "lodash";`,
			want: `const _ = __loadedPackage("lodash"); const {chunk} = __loadedPackage("lodash");`,
		},
		{
			name: "dynamic import",
			code: `const mod = await import("lodash");`,
			want: `const mod = await Promise.resolve(__loadedPackage("lodash"));`,
		},
		{
			name: "require call",
			code: `const _ = require("lodash");`,
			want: `const _ = __loadedPackage("lodash");`,
		},
		{
			name: "single quotes",
			code: `import _ from 'lodash'`,
			want: `const _ = __loadedPackage("lodash");`,
		},
		{
			name: "plain code untouched",
			code: `console.log("no imports here");`,
			want: `console.log("no imports here");`,
		},
		{
			name: "rewritten call not re-rewritten by require pass",
			code: `import _ from "lodash";
const x = require("moment");`,
			want: `const _ = __loadedPackage("lodash");
const x = __loadedPackage("moment");`,
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			require.Equal(t, tt.want, rewriteImports(tt.code))
		})
	}
}

func TestRewriteNamedBindings(t *testing.T) {
	t.Parallel()

	require.Equal(t, "chunk", rewriteNamedBindings("chunk"))
	require.Equal(t, "chunk, zip: zipper", rewriteNamedBindings(" chunk , zip as zipper "))
	require.Equal(t, "", rewriteNamedBindings(" , "))
}
