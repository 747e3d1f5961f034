// Package middlewares provides HTTP middleware for mailkit applications.
//
// RequestID tags each request with an ID; pair it with RequestIDExtractor so
// log records written while sending mail carry the same request_id:
//
//	log := logger.New(middlewares.RequestIDExtractor())
//	app := mailkit.New(
//	    mailkit.WithLogger(log),
//	    mailkit.WithMiddleware(
//	        middlewares.RequestID(),
//	        middlewares.Recover(),
//	        middlewares.Timeout(10*time.Second),
//	    ),
//	)
//
// Recover and Timeout return *PanicError and *TimeoutError to the app's
// ErrorHandler.
package middlewares
