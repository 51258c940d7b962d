package luart

import (
	"strings"

	lua "github.com/yuin/gopher-lua"
)

// tempNamePrefix marks compiler-internal locals in gopher-lua's debug info,
// e.g. "(for generator)" and "(for control)".
const tempNamePrefix = "("

// Frame is one captured call-stack frame. ID equals the interpreter stack
// level at capture time. SourcePath is empty for frames that are not backed
// by a file chunk.
type Frame struct {
	ID         int
	Name       string
	SourcePath string
	Line       int
}

// Variable is one captured local. Type is set only for innermost-frame
// locals.
type Variable struct {
	Name  string
	Value string
	Type  string
}

// Snapshot is the materialized view of the paused call stack. It lives from
// the pause that built it until the matching resume.
//
// Locals maps a frame id to the 1-based index of that frame's variable list
// in Variables; the index doubles as the DAP variablesReference.
type Snapshot struct {
	Frames    []Frame
	Locals    map[int]int
	Variables [][]Variable
}

// VariablesAt returns the variable list behind a 1-based reference, or nil.
func (s *Snapshot) VariablesAt(ref int) []Variable {
	if ref < 1 || ref > len(s.Variables) {
		return nil
	}
	return s.Variables[ref-1]
}

// BuildSnapshot walks the interpreter stack outward from startLevel and
// captures every frame up to the hosting adapter code. Frames whose chunk is
// not file-backed (no "@" source marker) are counted for id assignment but
// contribute no source path.
func (rt *Runtime) BuildSnapshot(startLevel int) *Snapshot {
	snap := &Snapshot{Locals: make(map[int]int)}

	for level := startLevel; ; level++ {
		dbg, ok := rt.L.GetStack(level)
		if !ok {
			break
		}
		if _, err := rt.L.GetInfo("Sln", dbg, lua.LNil); err != nil {
			break
		}

		frame := Frame{ID: level, Line: dbg.CurrentLine}
		if strings.HasPrefix(dbg.Source, "@") {
			frame.SourcePath = dbg.Source[1:]
		}
		frame.Name = frameName(dbg)

		snap.Variables = append(snap.Variables, rt.frameLocals(dbg, level == startLevel))
		snap.Locals[level] = len(snap.Variables)
		snap.Frames = append(snap.Frames, frame)
	}

	return snap
}

// frameLocals enumerates a frame's locals by ascending index until the
// interpreter reports no name. The innermost frame drops compiler-internal
// temporaries and records type names; outer frames pass everything through.
func (rt *Runtime) frameLocals(dbg *lua.Debug, innermost bool) []Variable {
	vars := []Variable{}
	for i := 1; ; i++ {
		name, lv := rt.L.GetLocal(dbg, i)
		if name == "" {
			break
		}
		if innermost && strings.HasPrefix(name, tempNamePrefix) {
			continue
		}
		v := Variable{Name: name, Value: lv.String()}
		if innermost {
			v.Type = lv.Type().String()
		}
		vars = append(vars, v)
	}
	return vars
}

// frameName picks the editor-facing frame label.
func frameName(dbg *lua.Debug) string {
	if dbg.Name != "" {
		return dbg.Name
	}
	if dbg.What == "main" {
		return "main chunk"
	}
	return "?"
}
