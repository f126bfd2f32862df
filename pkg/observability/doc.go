/*
Package observability exposes Courier activity as Prometheus metrics and structured logs.

Metrics are fed through the hook structs of the conversation engine and the session
manager, so neither package depends on Prometheus:

	m := observability.NewMetrics()
	engine, _ := conversation.NewEngine(sessions, states, packages, claims,
		conversation.WithHooks(m.EngineHooks(logger)))
*/
package observability
