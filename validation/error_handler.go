package validation

import "github.com/gclaussn/go-procdoc/model"

func validateErrorHandler(e *model.Element, d *model.Document, r *Result) {
	handler, ok := e.ErrorHandler()
	if !ok {
		return
	}

	name := displayName(e)

	if !handler.Type.IsValid() {
		r.addError(CategoryErrorHandler, e.Id, "error handler %s has an invalid type %q", name, handler.Type).
			Suggestion = "use one of RETRY, FALLBACK, NOTIFY or ABORT"
	}
	if handler.RetryCount < 0 {
		r.addError(CategoryErrorHandler, e.Id, "error handler %s has a negative retry count of %d", name, handler.RetryCount)
	} else if handler.RetryCount > 0 && handler.RetryDelay <= 0 {
		r.addError(CategoryErrorHandler, e.Id, "error handler %s retries %d times, but has no retry delay", name, handler.RetryCount).
			Suggestion = "set a retry delay greater than 0"
	}

	if handler.Timeout < 0 {
		r.addError(CategoryErrorHandler, e.Id, "error handler %s has a negative timeout of %d", name, handler.Timeout)
	} else if handler.Timeout == 0 {
		r.addInfo(CategoryErrorHandler, e.Id, "error handler %s has the timeout disabled", name)
	}

	if handler.OnErrorTarget != "" && !d.HasElement(handler.OnErrorTarget) {
		r.addError(CategoryErrorHandler, e.Id, "error handler %s references a non-existent error target %s", name, handler.OnErrorTarget)
	}
	if handler.OnSuccessTarget != "" && !d.HasElement(handler.OnSuccessTarget) {
		r.addWarning(CategoryErrorHandler, e.Id, "error handler %s references a non-existent success target %s", name, handler.OnSuccessTarget)
	}

	if d.IncomingCount(e.Id) == 0 {
		r.addWarning(CategoryErrorHandler, e.Id, "error handler %s has no incoming connections", name)
	}
}
