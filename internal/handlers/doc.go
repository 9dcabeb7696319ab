// Package handlers implements the HTTP API: pipeline triggers and
// deletion, asset and player queries, capability inspection, settings,
// batch reprocessing, and health/version endpoints. Handlers stay
// thin; all domain behavior lives in the packages they call into.
package handlers
