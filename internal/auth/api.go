package auth

import (
	"database/sql"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	"github.com/pkg/errors"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/spotterai/spotter/internal/errresponse"
	"github.com/spotterai/spotter/internal/model"
)

// Resource bundles what the auth endpoints need.
type Resource struct {
	DB      *sql.DB
	Tokens  *Tokens
	Revoked *RevocationStore
	Log     *zap.SugaredLogger
}

// Routes mounts register, login, refresh and me.
func (rs *Resource) Routes() chi.Router {
	r := chi.NewRouter()

	r.Post("/register", rs.Register)
	r.Post("/login", rs.Login)
	r.Post("/refresh", rs.Refresh)

	r.Group(func(r chi.Router) {
		r.Use(rs.Authenticator)
		r.Get("/me", rs.Me)
	})

	return r
}

// Register creates an account and returns the public profile.
func (rs *Resource) Register(w http.ResponseWriter, r *http.Request) {
	data := &RegisterRequest{}
	if err := render.Bind(r, data); err != nil {
		err = render.Render(w, r, errresponse.ErrInvalidRequest(err))
		if err != nil {
			rs.Log.Errorw(err.Error())
		}

		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(data.Password), bcrypt.DefaultCost)
	if err != nil {
		err = render.Render(w, r, errresponse.ErrInternal(err))
		if err != nil {
			rs.Log.Errorw(err.Error())
		}

		return
	}

	u := &model.User{
		Username:     data.Username,
		Email:        data.Email,
		PasswordHash: string(hash),
		FirstName:    data.FirstName,
		LastName:     data.LastName,
		IsDriver:     data.IsDriver == nil || *data.IsDriver,
	}

	if err := model.CreateUser(r.Context(), rs.DB, u); err != nil {
		if errors.Is(err, model.ErrDuplicate) {
			err = render.Render(w, r, errresponse.ErrConflict(errors.New("username or email already taken")))
		} else {
			err = render.Render(w, r, errresponse.ErrInternal(err))
		}

		if err != nil {
			rs.Log.Errorw(err.Error())
		}

		return
	}

	render.Status(r, http.StatusCreated)

	err = render.Render(w, r, NewUserResponse(u))
	if err != nil {
		rs.Log.Errorw(err.Error())
	}
}

// Login verifies credentials and issues a token pair.
func (rs *Resource) Login(w http.ResponseWriter, r *http.Request) {
	data := &LoginRequest{}
	if err := render.Bind(r, data); err != nil {
		err = render.Render(w, r, errresponse.ErrInvalidRequest(err))
		if err != nil {
			rs.Log.Errorw(err.Error())
		}

		return
	}

	u, err := model.GetUserByUsername(r.Context(), rs.DB, data.Username)
	if err != nil {
		// Same answer for unknown user and wrong password.
		err = render.Render(w, r, errresponse.ErrUnauthorized)
		if err != nil {
			rs.Log.Errorw(err.Error())
		}

		return
	}

	if bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(data.Password)) != nil {
		err = render.Render(w, r, errresponse.ErrUnauthorized)
		if err != nil {
			rs.Log.Errorw(err.Error())
		}

		return
	}

	rs.renderPair(w, r, u)
}

// Refresh rotates a refresh token: the presented jti is burned and a new
// pair issued. Reusing a burned token gets a 401.
func (rs *Resource) Refresh(w http.ResponseWriter, r *http.Request) {
	data := &RefreshRequest{}
	if err := render.Bind(r, data); err != nil {
		err = render.Render(w, r, errresponse.ErrInvalidRequest(err))
		if err != nil {
			rs.Log.Errorw(err.Error())
		}

		return
	}

	claims, err := rs.Tokens.Parse(data.Refresh, TokenRefresh)
	if err != nil {
		err = render.Render(w, r, errresponse.ErrUnauthorized)
		if err != nil {
			rs.Log.Errorw(err.Error())
		}

		return
	}

	revoked, err := rs.Revoked.IsRevoked(claims.ID)
	if err != nil {
		err = render.Render(w, r, errresponse.ErrInternal(err))
		if err != nil {
			rs.Log.Errorw(err.Error())
		}

		return
	}

	if revoked {
		err = render.Render(w, r, errresponse.ErrUnauthorized)
		if err != nil {
			rs.Log.Errorw(err.Error())
		}

		return
	}

	u, err := model.GetUser(r.Context(), rs.DB, claims.UID)
	if err != nil {
		err = render.Render(w, r, errresponse.ErrUnauthorized)
		if err != nil {
			rs.Log.Errorw(err.Error())
		}

		return
	}

	if err := rs.Revoked.Revoke(claims.ID, claims.ExpiresAt.Time); err != nil {
		err = render.Render(w, r, errresponse.ErrInternal(err))
		if err != nil {
			rs.Log.Errorw(err.Error())
		}

		return
	}

	rs.renderPair(w, r, u)
}

// Me returns the authenticated profile.
func (rs *Resource) Me(w http.ResponseWriter, r *http.Request) {
	claims := ClaimsFromContext(r.Context())

	u, err := model.GetUser(r.Context(), rs.DB, claims.UID)
	if err != nil {
		err = render.Render(w, r, errresponse.ErrNotFound)
		if err != nil {
			rs.Log.Errorw(err.Error())
		}

		return
	}

	err = render.Render(w, r, NewUserResponse(u))
	if err != nil {
		rs.Log.Errorw(err.Error())
	}
}

func (rs *Resource) renderPair(w http.ResponseWriter, r *http.Request, u *model.User) {
	access, refresh, err := rs.Tokens.IssuePair(u)
	if err != nil {
		err = render.Render(w, r, errresponse.ErrInternal(err))
		if err != nil {
			rs.Log.Errorw(err.Error())
		}

		return
	}

	err = render.Render(w, r, &TokenResponse{Access: access, Refresh: refresh})
	if err != nil {
		rs.Log.Errorw(err.Error())
	}
}
