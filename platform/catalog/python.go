package catalog

import "github.com/pathlab/coderunner/platform"

// DefaultPython returns the python registry. The default engine image is a
// plain CPython build that bundles only the standard library, so every
// default entry is a pure-python wheel installed through the runtime's
// package installer. RuntimeBuiltin entries are for callers that pair a
// custom catalog with an engine image that bundles extra packages
// (WithCatalog + WithEngineURL); builtins are verified importable by the
// bulk builtin-load probe at load time, so a catalog/image mismatch
// surfaces as a named load error instead of a silent execution failure.
//
// Native-extension packages (numpy, pandas, scipy) are deliberately absent:
// the default image does not ship them and they publish no pure-python
// wheel, so neither load path can satisfy them. They are reported as
// unsupported and the run proceeds without them.
func DefaultPython() *Catalog {
	entries := []Entry{
		{CanonicalName: "tabulate", Method: FallbackInstaller, Locator: "tabulate"},
		{CanonicalName: "emoji", Method: FallbackInstaller, Locator: "emoji"},
		{CanonicalName: "pyfiglet", Method: FallbackInstaller, Locator: "pyfiglet"},
		{CanonicalName: "art", Method: FallbackInstaller, Locator: "art"},
		{CanonicalName: "colorama", Method: FallbackInstaller, Locator: "colorama"},
		{CanonicalName: "python-dateutil", Method: FallbackInstaller, Locator: "python-dateutil"},
		{CanonicalName: "beautifulsoup4", Method: FallbackInstaller, Locator: "beautifulsoup4"},
		{CanonicalName: "pillow", Method: FallbackInstaller, Locator: "pillow"},
	}

	// Import-time identifiers that differ from the distributable name.
	aliases := map[string]string{
		"bs4":      "beautifulsoup4",
		"dateutil": "python-dateutil",
		"PIL":      "pillow",
	}

	return New(platform.Python, entries, aliases)
}
