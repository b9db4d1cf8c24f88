package trips

import (
	"context"
	"log"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	"github.com/spotterai/spotter/internal/auth"
	"github.com/spotterai/spotter/internal/errresponse"
	"github.com/spotterai/spotter/internal/model"
)

type ctxKey int8

const (
	ctxKeyTrip ctxKey = iota
)

// TripCtx middleware is used to load a Trip object from the URL
// parameters passed through as the request. The lookup is scoped to the
// authenticated driver; a trip owned by someone else reads as a 404.
func (rs *Resource) TripCtx(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		claims := auth.ClaimsFromContext(r.Context())

		id, err := strconv.ParseInt(chi.URLParam(r, "tripID"), 10, 64)
		if err != nil {
			err = render.Render(w, r, errresponse.ErrNotFound)
			if err != nil {
				log.Println(err)
			}

			return
		}

		trip, err := model.GetTrip(r.Context(), rs.DB, id, claims.UID)
		if err != nil {
			err = render.Render(w, r, errresponse.ErrNotFound)
			if err != nil {
				log.Println(err)
			}

			return
		}

		ctx := context.WithValue(r.Context(), ctxKeyTrip, trip)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// TripFromContext returns the trip TripCtx loaded. Handlers below the
// middleware can assume it is present; if not, the Recoverer will save us.
func TripFromContext(ctx context.Context) *model.Trip {
	return ctx.Value(ctxKeyTrip).(*model.Trip)
}
