// Package middleware groups the Fiber middleware used by the start command.
//
// The middleware itself lives in subpackages:
//
//   - rayid: tags every request with an X-Ray-ID (kept from the client or a
//     fresh UUID) and stores it under the "ray_id" local for logger.WithRayID.
//   - auth: rejects requests whose X-API-Key header (or api_key query value)
//     does not match server.api_key. An empty key turns the check off.
//
// The start command installs rayid first, then request logging, then auth, so
// rejected requests are still traceable.
package middleware
