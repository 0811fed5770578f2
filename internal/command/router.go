package command

import (
	"fmt"
	"sort"
	"strings"

	"github.com/mooselabs/unitymcp/internal/audit"
	"github.com/mooselabs/unitymcp/internal/clog"
)

// HandlerFunc handles a single recognized action. Handlers report all
// expected failures through the error variant of the envelope; panics are
// recovered by the router's boundary.
type HandlerFunc func(p Params) Response

// Router dispatches command requests for one tool against a fixed set of
// recognized actions. A request whose action is absent falls back to the
// tool's designated default action; unrecognized actions produce an error
// response enumerating the valid actions.
//
// Dispatch never lets a failure escape: a panicking handler is recovered,
// logged, and converted to an error response. A malformed command must
// degrade to a reported error, not take the host down.
type Router struct {
	tool     string
	fallback string
	handlers map[string]HandlerFunc
	auditLog *audit.Logger
}

// NewRouter creates a router for the named tool. The fallback action is
// used when a request carries no action; it must be registered with Handle
// before the first dispatch.
func NewRouter(tool, fallback string) *Router {
	return &Router{
		tool:     tool,
		fallback: fallback,
		handlers: make(map[string]HandlerFunc),
	}
}

// SetAuditLogger attaches an audit logger. When set, every dispatch and
// its outcome is recorded. Pass nil to disable.
func (r *Router) SetAuditLogger(l *audit.Logger) {
	r.auditLog = l
}

// Tool returns the tool name this router dispatches for.
func (r *Router) Tool() string {
	return r.tool
}

// Handle registers a handler for an action. Action names are stored
// lowercase; registering the same action twice replaces the handler.
func (r *Router) Handle(action string, h HandlerFunc) {
	r.handlers[strings.ToLower(action)] = h
}

// Actions returns the sorted list of recognized actions.
func (r *Router) Actions() []string {
	actions := make([]string, 0, len(r.handlers))
	for a := range r.handlers {
		actions = append(actions, a)
	}
	sort.Strings(actions)
	return actions
}

// Dispatch routes a request to the handler for its action and returns the
// response envelope. The action is matched case-insensitively and defaults
// to the router's fallback when absent.
func (r *Router) Dispatch(p Params) (resp Response) {
	action := strings.ToLower(p.String("action"))
	if action == "" {
		action = r.fallback
	}

	handler, ok := r.handlers[action]
	if !ok {
		valid := strings.Join(r.Actions(), ", ")
		if r.auditLog != nil {
			_ = r.auditLog.LogRejected(r.tool, action, "unknown action")
		}
		return Errorf("unknown action: %q. Valid actions are: %s", action, valid)
	}

	// Failure boundary: nothing a handler does may escape to the caller.
	defer func() {
		if rec := recover(); rec != nil {
			clog.Error("command %s/%s panicked: %v", r.tool, action, rec)
			if r.auditLog != nil {
				_ = r.auditLog.LogError(r.tool, action, fmt.Sprintf("%v", rec))
			}
			resp = Errorf("unexpected error handling %s: %v", action, rec)
		}
	}()

	if r.auditLog != nil {
		_ = r.auditLog.LogDispatch(r.tool, action)
	}

	resp = handler(p)

	if r.auditLog != nil {
		if resp.Success {
			_ = r.auditLog.LogComplete(r.tool, action)
		} else {
			_ = r.auditLog.LogError(r.tool, action, resp.Error)
		}
	}
	return resp
}
