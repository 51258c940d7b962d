package luart

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// writeScript drops a Lua source file into a temp dir and returns its path.
func writeScript(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write script: %v", err)
	}
	return path
}

func TestLoadInstrumented_Errors(t *testing.T) {
	rt := NewRuntime()
	defer rt.Close()

	t.Run("missing file", func(t *testing.T) {
		_, err := rt.LoadInstrumented(filepath.Join(t.TempDir(), "nope.lua"))
		var lerr *LoadError
		if !errors.As(err, &lerr) {
			t.Fatalf("error = %v, want *LoadError", err)
		}
	})

	t.Run("syntax error", func(t *testing.T) {
		path := writeScript(t, "bad.lua", "local = =\n")
		_, err := rt.LoadInstrumented(path)
		var lerr *LoadError
		if !errors.As(err, &lerr) {
			t.Fatalf("error = %v, want *LoadError", err)
		}
	})
}

func TestLoadInstrumented_SourceName(t *testing.T) {
	rt := NewRuntime()
	defer rt.Close()

	path := writeScript(t, "t.lua", "local x = 1\n")
	chunk, err := rt.LoadInstrumented(path)
	if err != nil {
		t.Fatalf("LoadInstrumented() error = %v", err)
	}
	if !filepath.IsAbs(chunk.Path) {
		t.Errorf("chunk path %q is not absolute", chunk.Path)
	}
	if !strings.HasSuffix(chunk.Path, "t.lua") {
		t.Errorf("chunk path = %q", chunk.Path)
	}
}

func TestRun_LineHookVisitsLines(t *testing.T) {
	rt := NewRuntime()
	defer rt.Close()

	path := writeScript(t, "lines.lua", `local x = 1
local y = 2
local function add(a, b)
  local sum = a + b
  return sum
end
local r = add(x, y)
print(r)
`)

	var visited []int
	rt.SetLineHook(func(line int) { visited = append(visited, line) })
	rt.SetPrint(func(string) {})

	chunk, err := rt.LoadInstrumented(path)
	if err != nil {
		t.Fatalf("LoadInstrumented() error = %v", err)
	}
	if _, err := rt.Run(chunk, nil); err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	want := []int{1, 2, 3, 7, 4, 5, 8}
	if len(visited) != len(want) {
		t.Fatalf("visited lines = %v, want %v", visited, want)
	}
	for i := range want {
		if visited[i] != want[i] {
			t.Fatalf("visited lines = %v, want %v", visited, want)
		}
	}
}

func TestRun_ReturnValue(t *testing.T) {
	tests := []struct {
		name   string
		script string
		want   int
	}{
		{"numeric return", "return 7\n", 7},
		{"no return", "local x = 1\n", 0},
		{"non-numeric return", `return "done"` + "\n", 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rt := NewRuntime()
			defer rt.Close()

			path := writeScript(t, "ret.lua", tt.script)
			chunk, err := rt.LoadInstrumented(path)
			if err != nil {
				t.Fatalf("LoadInstrumented() error = %v", err)
			}
			code, err := rt.Run(chunk, nil)
			if err != nil {
				t.Fatalf("Run() error = %v", err)
			}
			if code != tt.want {
				t.Errorf("Run() code = %d, want %d", code, tt.want)
			}
		})
	}
}

func TestRun_Arguments(t *testing.T) {
	rt := NewRuntime()
	defer rt.Close()

	path := writeScript(t, "args.lua", `local a, b = ...
if a == "x" and b == "y" then
  return 1
end
return 0
`)
	chunk, err := rt.LoadInstrumented(path)
	if err != nil {
		t.Fatalf("LoadInstrumented() error = %v", err)
	}
	code, err := rt.Run(chunk, []string{"x", "y"})
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if code != 1 {
		t.Error("script did not receive its arguments")
	}
}

func TestRun_RuntimeError(t *testing.T) {
	rt := NewRuntime()
	defer rt.Close()

	path := writeScript(t, "boom.lua", `error("boom")`+"\n")
	chunk, err := rt.LoadInstrumented(path)
	if err != nil {
		t.Fatalf("LoadInstrumented() error = %v", err)
	}

	_, err = rt.Run(chunk, nil)
	var rerr *RuntimeError
	if !errors.As(err, &rerr) {
		t.Fatalf("Run() error = %v, want *RuntimeError", err)
	}
	if !strings.Contains(rerr.Message, "boom") {
		t.Errorf("message = %q, want it to mention boom", rerr.Message)
	}
}

func TestRun_PrintBinding(t *testing.T) {
	rt := NewRuntime()
	defer rt.Close()

	path := writeScript(t, "print.lua", `print("hello", 42, true)`+"\n")

	var got []string
	rt.SetPrint(func(text string) { got = append(got, text) })

	chunk, err := rt.LoadInstrumented(path)
	if err != nil {
		t.Fatalf("LoadInstrumented() error = %v", err)
	}
	if _, err := rt.Run(chunk, nil); err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	if len(got) != 1 {
		t.Fatalf("print fired %d times, want 1", len(got))
	}
	want := `"hello", "42", "true"`
	if got[0] != want {
		t.Errorf("print rendering = %q, want %q", got[0], want)
	}
}

func TestSandboxExcludesLoaders(t *testing.T) {
	rt := NewRuntime()
	defer rt.Close()

	path := writeScript(t, "sandbox.lua", `if dofile == nil and loadfile == nil and load == nil and os == nil and io == nil then
  return 1
end
return 0
`)
	chunk, err := rt.LoadInstrumented(path)
	if err != nil {
		t.Fatalf("LoadInstrumented() error = %v", err)
	}
	code, err := rt.Run(chunk, nil)
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if code != 1 {
		t.Error("sandbox leaked a loader or system module")
	}
}

func TestRunAfterClose(t *testing.T) {
	rt := NewRuntime()
	path := writeScript(t, "t.lua", "return 1\n")
	chunk, err := rt.LoadInstrumented(path)
	if err != nil {
		t.Fatalf("LoadInstrumented() error = %v", err)
	}

	rt.Close()

	if _, err := rt.Run(chunk, nil); !errors.Is(err, ErrClosed) {
		t.Errorf("Run() after close error = %v, want ErrClosed", err)
	}
	if _, err := rt.LoadInstrumented(path); !errors.Is(err, ErrClosed) {
		t.Errorf("LoadInstrumented() after close error = %v, want ErrClosed", err)
	}
}
