package internal

// Handler declares routes on a router.
//
// Example:
//
//	type SignupHandler struct {
//	    users *repository.Users
//	}
//
//	func (h *SignupHandler) Routes(r mailkit.Router) {
//	    r.POST("/signup", h.signup)
//	}
type Handler interface {
	Routes(r Router)
}

// HandlerFunc is the signature for route handlers.
// Returning a non-nil error hands it to the app's ErrorHandler.
type HandlerFunc func(c Context) error

// Middleware wraps a HandlerFunc to add cross-cutting concerns.
//
// Example:
//
//	func RequireMail(next mailkit.HandlerFunc) mailkit.HandlerFunc {
//	    return func(c mailkit.Context) error {
//	        if c.Mail() == nil {
//	            return c.Error(http.StatusServiceUnavailable, "mail is not configured")
//	        }
//	        return next(c)
//	    }
//	}
type Middleware func(next HandlerFunc) HandlerFunc

// ErrorHandler handles errors returned from handlers.
type ErrorHandler func(Context, error) error
