package routes

import (
	"github.com/imjustneko/Travel-web/auth"
	"github.com/imjustneko/Travel-web/catalog"
	"github.com/imjustneko/Travel-web/favorites"
	"github.com/imjustneko/Travel-web/livefeed"
	"github.com/imjustneko/Travel-web/middleware"
	"github.com/imjustneko/Travel-web/profile"
	"github.com/imjustneko/Travel-web/ratelim"
	"github.com/imjustneko/Travel-web/reservations"
	"github.com/imjustneko/Travel-web/reviews"
	"github.com/imjustneko/Travel-web/search"
	"github.com/imjustneko/Travel-web/subscription"
	"github.com/imjustneko/Travel-web/uploads"

	"github.com/julienschmidt/httprouter"
)

// Deps carries the handlers and middleware the routes are built from.
type Deps struct {
	Auth    *middleware.Auth
	Limiter *ratelim.RateLimiter

	Identity      *auth.Handler
	Profile       *profile.Handler
	Catalog       *catalog.Handler
	Reservations  *reservations.Handler
	Reviews       *reviews.Handler
	Subscriptions *subscription.Handler
	Favorites     *favorites.Handler
	Search        *search.Handler
	Uploads       *uploads.Handler
	Live          *livefeed.Hub
}

func RoutesWrapper(router *httprouter.Router, d Deps) {
	AddMiscRoutes(router)
	AddStaticRoutes(router, d)
	AddAuthRoutes(router, d)
	AddProfileRoutes(router, d)
	AddCatalogRoutes(router, d)
	AddAdminRoutes(router, d)
	AddReservationRoutes(router, d)
	AddReviewsRoutes(router, d)
	AddSubscriptionRoutes(router, d)
	AddFavoriteRoutes(router, d)
	AddSearchRoutes(router, d)
}

// New builds a router with every route registered.
func New(d Deps) *httprouter.Router {
	router := httprouter.New()
	RoutesWrapper(router, d)
	return router
}
