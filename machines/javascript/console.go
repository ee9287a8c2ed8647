package javascript

import (
	"sync"

	"github.com/dop251/goja"

	"github.com/pathlab/coderunner/platform"
)

// capturePrinter buffers every console call as one output line. Error and
// warn lines are tagged so the UI can style them. Nothing is flushed until
// execution completes; the executor reads the buffer once at the end.
type capturePrinter struct {
	mu    sync.Mutex
	lines []string
}

func newCapturePrinter() *capturePrinter {
	return &capturePrinter{}
}

func (p *capturePrinter) Log(s string) {
	p.append(s)
}

func (p *capturePrinter) Warn(s string) {
	p.append(platform.WarnLinePrefix + s)
}

func (p *capturePrinter) Error(s string) {
	p.append(platform.ErrorLinePrefix + s)
}

func (p *capturePrinter) append(s string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.lines = append(p.lines, s)
}

// Lines returns a copy of the captured output in emission order.
func (p *capturePrinter) Lines() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, len(p.lines))
	copy(out, p.lines)
	return out
}

// aliasConsoleInfo maps console.info onto console.log when the console
// module does not provide it, so info output is captured like log output.
func aliasConsoleInfo(vm *goja.Runtime) {
	consoleVal := vm.GlobalObject().Get("console")
	if consoleVal == nil || goja.IsUndefined(consoleVal) {
		return
	}
	obj := consoleVal.ToObject(vm)
	if info := obj.Get("info"); info == nil || goja.IsUndefined(info) {
		_ = obj.Set("info", obj.Get("log"))
	}
}
