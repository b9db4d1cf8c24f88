package server

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	"github.com/spotterai/spotter/internal/auth"
	"github.com/spotterai/spotter/internal/errresponse"
	"github.com/spotterai/spotter/internal/model"
)

// A completely separate router for administrator routes

func (a *App) adminRouter() chi.Router {
	r := chi.NewRouter()
	r.Use(auth.AdminOnly)

	r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		_, err := w.Write([]byte("admin: index"))
		if err != nil {
			a.sugarLogger.Errorw(err.Error())
		}
	})

	r.Get("/users", a.adminListUsers)
	r.Get("/trips", a.adminListTrips)

	return r
}

func (a *App) adminListUsers(w http.ResponseWriter, r *http.Request) {
	users, err := model.ListUsers(r.Context(), a.db)
	if err != nil {
		err = render.Render(w, r, errresponse.ErrInternal(err))
		if err != nil {
			a.sugarLogger.Errorw(err.Error())
		}

		return
	}

	list := []render.Renderer{}
	for _, u := range users {
		list = append(list, auth.NewUserResponse(u))
	}

	if err := render.RenderList(w, r, list); err != nil {
		err = render.Render(w, r, errresponse.ErrRender(err))
		if err != nil {
			a.sugarLogger.Errorw(err.Error())
		}

		return
	}
}

func (a *App) adminListTrips(w http.ResponseWriter, r *http.Request) {
	all, err := model.ListAllTrips(r.Context(), a.db)
	if err != nil {
		err = render.Render(w, r, errresponse.ErrInternal(err))
		if err != nil {
			a.sugarLogger.Errorw(err.Error())
		}

		return
	}

	render.Respond(w, r, all)
}
