package validation

import (
	"strings"

	"github.com/gclaussn/go-procdoc/model"
)

func validateInterlock(e *model.Element, d *model.Document, r *Result) {
	interlock, ok := e.Interlock()
	if !ok {
		return
	}

	name := displayName(e)

	if strings.TrimSpace(interlock.ResourceId) == "" {
		r.addError(CategoryInterlock, e.Id, "interlock %s has no resource ID", name).
			Suggestion = "set the ID of the resource, which is locked"
	}
	if !interlock.Type.IsValid() {
		r.addError(CategoryInterlock, e.Id, "interlock %s has an invalid type %q", name, interlock.Type).
			Suggestion = "use one of MUTEX or SEMAPHORE"
	}
	if interlock.MaxCount <= 0 {
		r.addError(CategoryInterlock, e.Id, "interlock %s has a max count of %d, which must be greater than 0", name, interlock.MaxCount)
	}
	if interlock.Timeout < 0 {
		r.addError(CategoryInterlock, e.Id, "interlock %s has a negative timeout of %d", name, interlock.Timeout)
	}

	if interlock.OnLockedTarget != "" && !d.HasElement(interlock.OnLockedTarget) {
		r.addWarning(CategoryInterlock, e.Id, "interlock %s references a non-existent locked target %s", name, interlock.OnLockedTarget)
	}

	if interlock.Type == model.LockSemaphore && interlock.MaxCount == 1 {
		r.addWarning(CategoryInterlock, e.Id, "semaphore %s has a max count of 1 and behaves like a MUTEX", name).
			Suggestion = "change the type or increase the max count"
	}

	if interlock.ResourceId != "" {
		if n := countSharingInterlocks(d, e.Id, interlock.ResourceId); n != 0 {
			r.addWarning(CategoryInterlock, e.Id, "interlock %s coordinates with %d other locks on resource %s", name, n, interlock.ResourceId)
		}
	}

	if interlock.Timeout > 0 && interlock.OnLockedTarget == "" {
		r.addWarning(CategoryInterlock, e.Id, "interlock %s has a timeout configured, but no fallback", name).
			Suggestion = "set a locked target, which is continued when the timeout is exceeded"
	}
}

// countSharingInterlocks returns the number of other interlocks, which lock the same resource.
func countSharingInterlocks(d *model.Document, elementId string, resourceId string) int {
	var n int
	for _, e := range d.ElementsByType(model.ElementInterlock) {
		if interlock, ok := e.Interlock(); ok && e.Id != elementId && interlock.ResourceId == resourceId {
			n++
		}
	}
	return n
}
