package tools

import (
	"github.com/mooselabs/unitymcp/internal/command"
	"github.com/mooselabs/unitymcp/internal/editor"
)

// ToolManageEditor is the wire name of the editor state tool.
const ToolManageEditor = "manage_editor"

// EditorControl handles manage_editor commands: entering and leaving play
// mode, pausing, and reading the editor state flags.
type EditorControl struct {
	host editor.StateHost
}

// NewEditorControl creates the editor state tool over the given host.
func NewEditorControl(host editor.StateHost) *EditorControl {
	return &EditorControl{host: host}
}

// Router returns the action router for this tool.
func (t *EditorControl) Router() *command.Router {
	r := command.NewRouter(ToolManageEditor, "get_state")
	r.Handle("play", t.play)
	r.Handle("pause", t.pause)
	r.Handle("stop", t.stop)
	r.Handle("get_state", t.getState)
	return r
}

// play enters play mode. Already playing is not an error; a compile in
// progress is.
func (t *EditorControl) play(p command.Params) command.Response {
	if t.host.IsCompiling() {
		return command.Errorf("cannot enter play mode while compiling")
	}
	if t.host.IsPlaying() {
		return command.Successf("Editor is already in play mode")
	}
	t.host.SetPlaying(true)
	return command.Successf("Entered play mode")
}

// pause toggles the play mode pause flag.
func (t *EditorControl) pause(p command.Params) command.Response {
	if !t.host.IsPlaying() {
		return command.Errorf("cannot pause: editor is not in play mode")
	}
	if t.host.IsPaused() {
		t.host.SetPaused(false)
		return command.Successf("Resumed play mode")
	}
	t.host.SetPaused(true)
	return command.Successf("Paused play mode")
}

// stop exits play mode. Not playing is not an error.
func (t *EditorControl) stop(p command.Params) command.Response {
	if !t.host.IsPlaying() {
		return command.Successf("Editor is not in play mode")
	}
	t.host.SetPlaying(false)
	return command.Successf("Exited play mode")
}

// stateData is the payload for the get_state action.
type stateData struct {
	IsPlaying   bool `json:"is_playing"`
	IsPaused    bool `json:"is_paused"`
	IsCompiling bool `json:"is_compiling"`
}

// getState reports the editor state flags.
func (t *EditorControl) getState(p command.Params) command.Response {
	return command.SuccessData("Editor state retrieved", stateData{
		IsPlaying:   t.host.IsPlaying(),
		IsPaused:    t.host.IsPaused(),
		IsCompiling: t.host.IsCompiling(),
	})
}
