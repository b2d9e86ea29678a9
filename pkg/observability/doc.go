/*
Package observability provides tools for monitoring the cohort engine.

It turns lifecycle events into Prometheus metrics and structured log lines, and
lets several hook sets be attached to one engine.

	metrics, err := observability.NewMetrics(prometheus.DefaultRegisterer)
	if err != nil {
		log.Fatal(err)
	}
	hooks := observability.Combine(metrics.Hooks(), observability.LogHooks(logger))
	eng, err := cohort.New(model, cohort.WithLifecycleHooks(hooks))
*/
package observability
