package http

import (
	"net/http"
)

type UserHandler struct{}

func NewUserHandler() *UserHandler {
	return &UserHandler{}
}

// GetMe godoc
// @Summary      Returns the authenticated user
// @Tags         users
// @Security     Bearer
// @Produce      json
// @Success      200
// @Failure      401
// @Failure      403
// @Router       /me [get]
func (h *UserHandler) GetMe(w http.ResponseWriter, r *http.Request) {
	user, ok := UserFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "Access token is missing")
		return
	}

	writeSuccess(w, "Fetch current user", map[string]any{
		"user": user.Public(),
	})
}
