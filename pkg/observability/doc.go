/*
Package observability provides ready-made hooks for monitoring typomata machines.

It includes Prometheus metrics for transitions, failures and handler latency,
structured logging hooks on top of log/slog, and Chain to fan a single hook
slot out to several consumers.
*/
package observability
