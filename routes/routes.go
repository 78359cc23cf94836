package routes

import (
	"fmt"
	"net/http"

	"github.com/imjustneko/Travel-web/metrics"
	"github.com/imjustneko/Travel-web/models"
	"github.com/imjustneko/Travel-web/utils"

	"github.com/julienschmidt/httprouter"
)

type middlewareFunc func(httprouter.Handle) httprouter.Handle

// chain applies mws so that the first one runs outermost.
func chain(mws ...middlewareFunc) middlewareFunc {
	return func(final httprouter.Handle) httprouter.Handle {
		for i := len(mws) - 1; i >= 0; i-- {
			final = mws[i](final)
		}
		return final
	}
}

// handle registers h and records its metrics under the route pattern.
func handle(router *httprouter.Router, method, path string, h httprouter.Handle) {
	router.Handle(method, path, metrics.Instrument(method, path, h))
}

func (d Deps) user() middlewareFunc {
	return d.Auth.Authenticate
}

func (d Deps) admin() middlewareFunc {
	return d.Auth.RequireAdmin
}

func (d Deps) limited() middlewareFunc {
	return d.Limiter.Limit
}

func Index(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	utils.RespondWithJSON(w, http.StatusOK, utils.M{"message": "Travel App API v2 is running!"})
}

func Health(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	fmt.Fprint(w, "200")
}

func AddMiscRoutes(router *httprouter.Router) {
	router.GET("/", Index)
	router.GET("/health", Health)
	router.Handler(http.MethodGet, "/metrics", metrics.Handler())
}

func AddStaticRoutes(router *httprouter.Router, d Deps) {
	router.GET("/uploads/*filepath", d.Uploads.Serve())
}

func AddAuthRoutes(router *httprouter.Router, d Deps) {
	handle(router, "POST", "/api/auth/register", d.limited()(d.Identity.Register))
	handle(router, "POST", "/api/auth/login", d.limited()(d.Identity.Login))
	handle(router, "POST", "/api/auth/logout", chain(d.limited(), d.user())(d.Identity.Logout))
	handle(router, "POST", "/api/auth/token/refresh", chain(d.limited(), d.user())(d.Identity.Refresh))
}

func AddProfileRoutes(router *httprouter.Router, d Deps) {
	handle(router, "GET", "/api/user/profile", d.user()(d.Profile.Get))
	handle(router, "PUT", "/api/user/profile", chain(d.limited(), d.user())(d.Profile.Update))
}

// categoryPaths maps each listing path segment to its category.
var categoryPaths = []struct {
	path     string
	category models.Category
}{
	{"rooms", models.CategoryRoom},
	{"dining", models.CategoryDining},
	{"activities", models.CategoryActivity},
	{"events", models.CategoryEvent},
	{"offers", models.CategoryOffer},
}

func AddCatalogRoutes(router *httprouter.Router, d Deps) {
	handle(router, "GET", "/api/home", d.Catalog.Home)
	handle(router, "GET", "/api/destinations", d.Catalog.ListAll)
	handle(router, "GET", "/api/destinations/:id", d.Catalog.GetOne)
	for _, cp := range categoryPaths {
		handle(router, "GET", "/api/"+cp.path, d.Catalog.ListCategory(cp.category))
		handle(router, "GET", "/api/"+cp.path+"/:id", d.Catalog.GetCategory(cp.category))
	}
}

func AddAdminRoutes(router *httprouter.Router, d Deps) {
	admin := d.admin()
	write := chain(d.limited(), admin)

	handle(router, "GET", "/api/admin/destinations", admin(d.Catalog.AdminList))
	handle(router, "POST", "/api/admin/destinations", write(d.Catalog.Create))
	handle(router, "PUT", "/api/admin/destinations/:id", write(d.Catalog.Update))
	handle(router, "DELETE", "/api/admin/destinations/:id", write(d.Catalog.Delete))
	handle(router, "POST", "/api/admin/upload", write(d.Uploads.Upload))
	handle(router, "GET", "/api/admin/live", admin(d.Live.Serve))
}

// mineOr serves the "my" collection and by-id lookups from one pattern,
// since httprouter cannot register a static segment beside a wildcard.
func mineOr(mine, byID httprouter.Handle) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
		if ps.ByName("id") == "my" {
			mine(w, r, ps)
			return
		}
		byID(w, r, ps)
	}
}

func AddReservationRoutes(router *httprouter.Router, d Deps) {
	user := d.user()
	write := chain(d.limited(), user)

	handle(router, "POST", "/api/reservations", write(d.Reservations.Create))
	handle(router, "GET", "/api/reservations/:id", user(mineOr(d.Reservations.ListMine, d.Reservations.Get)))
	handle(router, "GET", "/api/reservations/:id/receipt", user(d.Reservations.Receipt))
	handle(router, "PUT", "/api/reservations/:id/cancel", write(d.Reservations.Cancel))
	handle(router, "DELETE", "/api/reservations/:id", chain(d.limited(), d.admin())(d.Reservations.Delete))
}

func AddReviewsRoutes(router *httprouter.Router, d Deps) {
	user := d.user()
	write := chain(d.limited(), user)

	handle(router, "POST", "/api/reviews", write(d.Reviews.Create))
	handle(router, "GET", "/api/reviews/item/:itemId", d.Reviews.ListForItem)
	handle(router, "GET", "/api/reviews/user/my", user(d.Reviews.ListMine))
	handle(router, "DELETE", "/api/reviews/:id", write(d.Reviews.Delete))
}

func AddSubscriptionRoutes(router *httprouter.Router, d Deps) {
	user := d.user()
	write := chain(d.limited(), user)

	handle(router, "PUT", "/api/subscription/upgrade", write(d.Subscriptions.Upgrade))
	handle(router, "PUT", "/api/subscription/downgrade", write(d.Subscriptions.Downgrade))
	handle(router, "GET", "/api/subscription/status", user(d.Subscriptions.Status))
}

func AddFavoriteRoutes(router *httprouter.Router, d Deps) {
	user := d.user()
	write := chain(d.limited(), user)

	handle(router, "POST", "/api/favorites", write(d.Favorites.Add))
	handle(router, "GET", "/api/favorites", user(d.Favorites.List))
	handle(router, "DELETE", "/api/favorites/:itemId", write(d.Favorites.Remove))
}

func AddSearchRoutes(router *httprouter.Router, d Deps) {
	handle(router, "GET", "/api/search", d.Search.Search)
}
