package tools

import (
	"strings"

	"github.com/mooselabs/unitymcp/internal/command"
	"github.com/mooselabs/unitymcp/internal/editor"
)

// ToolMenuItem is the wire name of the menu item tool.
const ToolMenuItem = "manage_menu_item"

// Menu handles manage_menu_item commands against the editor's menu host.
type Menu struct {
	host editor.MenuHost
}

// NewMenu creates the menu item tool over the given host.
func NewMenu(host editor.MenuHost) *Menu {
	return &Menu{host: host}
}

// Router returns the action router for this tool.
func (t *Menu) Router() *command.Router {
	r := command.NewRouter(ToolMenuItem, "list")
	r.Handle("execute", t.execute)
	r.Handle("list", t.list)
	r.Handle("exists", t.exists)
	return r
}

// execute runs a menu item by its full path.
func (t *Menu) execute(p command.Params) command.Response {
	path := p.String("menu_path", "menuPath")
	if path == "" {
		return command.Errorf("menu_path is required for the execute action")
	}
	if err := t.host.ExecuteMenuItem(path); err != nil {
		return command.Errorf("execute menu item %q: %s", path, err)
	}
	return command.Successf("Executed menu item: %s", path)
}

// list returns known menu item paths, optionally filtered by a substring
// match on the lowercased path.
func (t *Menu) list(p command.Params) command.Response {
	items := t.host.MenuItems(p.Bool("refresh", false))

	if search := strings.ToLower(p.String("search")); search != "" {
		// The host does not promise a private slice; never filter in place.
		filtered := make([]string, 0, len(items))
		for _, item := range items {
			if strings.Contains(strings.ToLower(item), search) {
				filtered = append(filtered, item)
			}
		}
		items = filtered
	}

	return command.SuccessData("Found menu items", map[string]any{
		"menu_items": items,
		"count":      len(items),
	})
}

// exists reports whether a menu item path is known, without executing it.
func (t *Menu) exists(p command.Params) command.Response {
	path := p.String("menu_path", "menuPath")
	if path == "" {
		return command.Errorf("menu_path is required for the exists action")
	}
	found := t.host.MenuExists(path)
	msg := "Menu item not found: " + path
	if found {
		msg = "Menu item exists: " + path
	}
	return command.SuccessData(msg, map[string]any{"exists": found})
}
