package player

import "github.com/pathlab/coderunner/platform"

// Default editor templates per language, used when a task ships no starter
// code and when the user switches language.
const (
	javascriptTemplate = `console.log("Hello, world!");`
	pythonTemplate     = `print("Hello, world!")`
)

// DefaultTemplate returns the code buffer contents for a fresh editor in the
// given language. Unknown languages get an empty buffer.
func DefaultTemplate(lang platform.Language) string {
	switch lang {
	case platform.JavaScript:
		return javascriptTemplate
	case platform.Python:
		return pythonTemplate
	default:
		return ""
	}
}
