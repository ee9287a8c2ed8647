package catalog

import "github.com/pathlab/coderunner/platform"

// DefaultJavaScript returns the JavaScript registry: fixed, versioned CDN
// artifacts and the global binding each one installs.
func DefaultJavaScript() *Catalog {
	entries := []Entry{
		{
			CanonicalName: "lodash",
			Method:        CDNScript,
			Locator:       "https://cdnjs.cloudflare.com/ajax/libs/lodash.js/4.17.21/lodash.min.js",
			Binding:       "_",
		},
		{
			CanonicalName: "underscore",
			Method:        CDNScript,
			Locator:       "https://cdnjs.cloudflare.com/ajax/libs/underscore.js/1.13.7/underscore-min.js",
			Binding:       "_",
		},
		{
			CanonicalName: "moment",
			Method:        CDNScript,
			Locator:       "https://cdnjs.cloudflare.com/ajax/libs/moment.js/2.30.1/moment.min.js",
			Binding:       "moment",
		},
		{
			CanonicalName: "dayjs",
			Method:        CDNScript,
			Locator:       "https://cdnjs.cloudflare.com/ajax/libs/dayjs/1.11.13/dayjs.min.js",
			Binding:       "dayjs",
		},
		{
			CanonicalName: "axios",
			Method:        CDNScript,
			Locator:       "https://cdnjs.cloudflare.com/ajax/libs/axios/1.7.9/axios.min.js",
			Binding:       "axios",
		},
		{
			CanonicalName: "ramda",
			Method:        CDNScript,
			Locator:       "https://cdnjs.cloudflare.com/ajax/libs/ramda/0.30.1/ramda.min.js",
			Binding:       "R",
		},
		{
			CanonicalName: "mathjs",
			Method:        CDNScript,
			Locator:       "https://cdnjs.cloudflare.com/ajax/libs/mathjs/13.2.3/math.min.js",
			Binding:       "math",
		},
		{
			CanonicalName: "d3",
			Method:        CDNScript,
			Locator:       "https://cdnjs.cloudflare.com/ajax/libs/d3/7.9.0/d3.min.js",
			Binding:       "d3",
		},
		{
			CanonicalName: "chart.js",
			Method:        CDNScript,
			Locator:       "https://cdnjs.cloudflare.com/ajax/libs/Chart.js/4.4.7/chart.umd.min.js",
			Binding:       "Chart",
		},
		{
			CanonicalName: "uuid",
			Method:        CDNScript,
			Locator:       "https://cdnjs.cloudflare.com/ajax/libs/uuid/10.0.0/uuidv4.min.js",
			Binding:       "uuidv4",
		},
		{
			CanonicalName: "validator",
			Method:        CDNScript,
			Locator:       "https://cdnjs.cloudflare.com/ajax/libs/validator/13.12.0/validator.min.js",
			Binding:       "validator",
		},
	}

	aliases := map[string]string{
		"lodash-es": "lodash",
		"chartjs":   "chart.js",
	}

	return New(platform.JavaScript, entries, aliases)
}
