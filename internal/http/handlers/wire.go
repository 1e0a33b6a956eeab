package handlers

import (
	"sync"

	"github.com/alsahsbsajid/ProductionAppFleetSync-sub000/internal/cache"
	intconfig "github.com/alsahsbsajid/ProductionAppFleetSync-sub000/internal/config"
	"github.com/alsahsbsajid/ProductionAppFleetSync-sub000/internal/repositories"
	"github.com/alsahsbsajid/ProductionAppFleetSync-sub000/internal/services"
	"github.com/alsahsbsajid/ProductionAppFleetSync-sub000/internal/tollsearch"
)

// Shared handler state. The toll service is a single instance so the
// refresh in-flight guard spans all requests; everything else is built per
// request with the request id attached.
var (
	wireMu    sync.RWMutex
	appCache  *cache.Cache
	tollSvc   *services.TollService
	jwtSecret []byte
)

// Configure wires the shared dependencies. Called once from the router.
func Configure(env intconfig.Env, c *cache.Cache) {
	wireMu.Lock()
	defer wireMu.Unlock()

	appCache = c
	jwtSecret = []byte(env.JWTSecret)
	tollSvc = services.NewTollService(
		repositories.RentalRepository{},
		repositories.TollNoticeRepository{},
		tollsearch.NewClient(env.TollAPIBaseURL, env.TollAPIKey),
		c,
	)
}

func sharedCache() *cache.Cache {
	wireMu.RLock()
	defer wireMu.RUnlock()
	return appCache
}

func tollService() *services.TollService {
	wireMu.RLock()
	defer wireMu.RUnlock()
	return tollSvc
}

func authSecret() []byte {
	wireMu.RLock()
	defer wireMu.RUnlock()
	return jwtSecret
}
