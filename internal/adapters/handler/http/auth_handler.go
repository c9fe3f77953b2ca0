package http

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/vncsmyrnk/auth-service/internal/core/domain"
	"github.com/vncsmyrnk/auth-service/internal/core/ports"
	"go.uber.org/zap"
)

type AuthHandler struct {
	authService ports.AuthService
	validate    *validator.Validate
	logger      *zap.Logger
}

func NewAuthHandler(authService ports.AuthService, logger *zap.Logger) *AuthHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AuthHandler{
		authService: authService,
		validate:    newValidator(),
		logger:      logger,
	}
}

// SignUp godoc
// @Summary      Creates an account
// @Tags         auth
// @Accept       json
// @Produce      json
// @Success      200
// @Failure      409
// @Failure      422
// @Router       /auth/sign-up [post]
func (h *AuthHandler) SignUp(w http.ResponseWriter, r *http.Request) {
	var req signUpRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		writeError(w, http.StatusUnprocessableEntity, validationMessage(err))
		return
	}

	user, err := h.authService.SignUp(r.Context(), ports.SignUpInput{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
		IsAdult:  *req.IsAdult,
	})
	if err != nil {
		if errors.Is(err, domain.ErrDuplicateEmail) {
			writeError(w, http.StatusConflict, fmt.Sprintf("The email address provided %s already exists", req.Email))
			return
		}
		internalError(w, r, h.logger, err)
		return
	}

	writeSuccess(w, "Account created successfully", map[string]any{
		"user": user.Public(),
	})
}

// SignIn godoc
// @Summary      Signs a user in
// @Description  Returns an access token and a refresh token. The refresh token is stored on the user.
// @Tags         auth
// @Accept       json
// @Produce      json
// @Success      200
// @Failure      400
// @Router       /auth/sign-in [post]
func (h *AuthHandler) SignIn(w http.ResponseWriter, r *http.Request) {
	var req signInRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		writeError(w, http.StatusUnprocessableEntity, validationMessage(err))
		return
	}

	result, err := h.authService.SignIn(r.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidCredentials) {
			writeError(w, http.StatusBadRequest, "The email address or password you entered is incorrect")
			return
		}
		internalError(w, r, h.logger, err)
		return
	}

	writeSuccess(w, "Sign-in successfully", map[string]any{
		"user":         result.User,
		"accessToken":  result.Tokens.AccessToken,
		"refreshToken": result.Tokens.RefreshToken,
	})
}

// Refresh godoc
// @Summary      Exchanges a refresh token for a new token pair
// @Tags         auth
// @Accept       json
// @Produce      json
// @Success      200
// @Failure      401
// @Failure      403
// @Router       /auth/refresh [post]
func (h *AuthHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	var req refreshRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	pair, err := h.authService.Refresh(r.Context(), req.RefreshToken)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrMissingToken):
			writeError(w, http.StatusUnauthorized, "Refresh token is missing")
		case errors.Is(err, domain.ErrInvalidToken):
			writeError(w, http.StatusForbidden, "Refresh token is invalid")
		default:
			internalError(w, r, h.logger, err)
		}
		return
	}

	writeSuccess(w, "Access token generated successfully", pair)
}

// Logout godoc
// @Summary      Logs the authenticated user out
// @Description  Clears the stored refresh token and marks the user offline. Issued access tokens stay valid until they expire.
// @Tags         auth
// @Security     Bearer
// @Success      200
// @Failure      401
// @Failure      403
// @Router       /logout [post]
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	user, ok := UserFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "Access token is missing")
		return
	}

	if err := h.authService.Logout(r.Context(), user.ID); err != nil {
		internalError(w, r, h.logger, err)
		return
	}

	writeSuccess(w, "Logout successfully", nil)
}
