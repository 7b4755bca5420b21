/*
Package observability provides Prometheus instrumentation for Doers and runners.

Metrics.Hooks returns domain.LifecycleHooks that count every transition and
hook failure; Metrics also satisfies runner.Metrics to expose the number of
live Doers.
*/
package observability
