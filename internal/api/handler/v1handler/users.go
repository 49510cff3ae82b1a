package v1handler

import (
	"io"
	"net/http"
	"net/url"

	"userdir/pkg/serrors"
)

// maxBodyBytes bounds the size of a registration body.
const maxBodyBytes = 1 << 20

// GetUser handles GET /users/{userName}.
func (h *Handler) GetUser(w http.ResponseWriter, r *http.Request) {
	ctx, done := h.observe(r, "GetUser")

	user, err := h.deps.Directory.GetUser(ctx, r.PathValue("userName"))
	if err != nil {
		done(h.writeError(ctx, w, err), err)

		return
	}

	writeJSON(w, http.StatusOK, DomainUserToV1(user))
	done(http.StatusOK, nil)
}

// CreateUser returns the handler for POST /users. The Location of the new
// user is built below prefix.
func (h *Handler) CreateUser(prefix string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, done := h.observe(r, "CreateUser")

		buf, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
		if err != nil {
			err = serrors.Wrap(serrors.ErrInvalidInput, err, "could not read request body")
			done(h.writeError(ctx, w, err), err)

			return
		}

		req, err := DecodeCreateUserRequest(buf)
		if err != nil {
			err = serrors.Wrap(serrors.ErrInvalidInput, err, "invalid request body")
			done(h.writeError(ctx, w, err), err)

			return
		}

		user, err := h.deps.Directory.RegisterUser(ctx, req.ToDomain())
		if err != nil {
			done(h.writeError(ctx, w, err), err)

			return
		}

		w.Header().Set("Location", prefix+"/users/"+url.PathEscape(user.UserName))
		writeJSON(w, http.StatusCreated, DomainUserToV1(user))
		done(http.StatusCreated, nil)
	}
}
