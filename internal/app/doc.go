// Package app wires the dashboard server together and manages its lifecycle.
//
// # Initialization Flow
//
//  1. Load configuration (.env, YAML file, PENYUSUTAN_* environment)
//  2. Initialize logging and OpenTelemetry
//  3. Create the session store and the upload pipeline
//  4. Initialize services with their dependencies
//  5. Build the chi router: middleware, API, /metrics and the frontend
//  6. Configure the HTTP server
//
// # Usage
//
//	application, err := app.NewApplication(frontendFS)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	if err := application.Run(); err != nil {
//	    log.Fatal(err)
//	}
//
// # Graceful Shutdown
//
// Run returns after SIGINT or SIGTERM once in-flight requests have drained,
// the session store has been closed and telemetry has been flushed. The
// package never calls os.Exit.
package app
