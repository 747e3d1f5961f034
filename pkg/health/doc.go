// Package health provides liveness and readiness probes.
//
// Readiness runs named checks concurrently under a shared timeout and
// reports each result:
//
//	r.Get("/health/live", health.LivenessHandler())
//	r.Get("/health/ready", health.ReadinessHandler(health.Checks{
//	    "mail": mailer.Healthcheck(),
//	}))
//
// Responses are plain text unless the client asks for JSON with
// "Accept: application/json" or "?format=json".
package health
