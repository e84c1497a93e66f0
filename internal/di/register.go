package di

import "github.com/samber/do/v2"

// RegisterSingletons registers all service providers as singletons.
// Services are registered in dependency order:
// 1. Config (no dependencies)
// 2. Logger (depends on Config)
// 3. Cache (depends on Config)
// 4. Limiter (depends on Config)
// 5. Backend (depends on Config, Logger)
// 6. Breaker (depends on Config, Logger)
// 7. Gateway (depends on Backend, Limiter, Breaker, Cache, Logger)
// 8. Store (depends on Gateway, Config, Logger)
// 9. Dispatcher (depends on Gateway, Config, Logger)
// 10. Sidekick (depends on Gateway, Store, Dispatcher, Limiter, Config, Logger)
// 11. Handler (depends on Sidekick, Config)
// 12. Server (depends on Handler, Config).
func RegisterSingletons(i do.Injector) {
	do.Provide(i, NewConfig)
	do.Provide(i, NewLogger)
	do.Provide(i, NewCache)
	do.Provide(i, NewLimiter)
	do.Provide(i, NewBackend)
	do.Provide(i, NewBreaker)
	do.Provide(i, NewGateway)
	do.Provide(i, NewStore)
	do.Provide(i, NewDispatcher)
	do.Provide(i, NewSidekick)
	do.Provide(i, NewToolHandler)
	do.Provide(i, NewHTTPServer)
}
