// Package shutdown coordinates cleanup when the CLI exits.
//
// Commands derive their context from WithSignals so an interrupt cancels
// in-flight requests. Resources that must be released (the session store,
// an open Badger database) register a hook with a Handler; the hooks run
// once, in reverse order of registration, under a shared deadline.
//
//	ctx, stop := shutdown.WithSignals(context.Background())
//	defer stop()
//
//	h := shutdown.NewHandler(5 * time.Second)
//	h.OnShutdown("session", store.Close)
//	defer h.Shutdown()
package shutdown
