// Package api hosts the optional status server that runs alongside a scrape.
// Routes:
//   - GET /healthz for liveness probes.
//   - GET /metrics for Prometheus scraping.
//   - GET /api/progress for the latest progress snapshot.
package api
