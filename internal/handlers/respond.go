package handlers

import (
	"GophShare/internal/middleware"
	"GophShare/internal/service"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
)

var validate = validator.New()

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// requireUser достаёт id пользователя или отвечает 401.
func requireUser(w http.ResponseWriter, r *http.Request) (int64, bool) {
	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return 0, false
	}
	return userID, true
}

// decodeJSON читает тело в dst и проверяет теги validate.
func decodeJSON(r *http.Request, dst any) error {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return fmt.Errorf("invalid request body: %w", err)
	}
	if err := validate.Struct(dst); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			return fmt.Errorf("field %s failed on '%s'", verrs[0].Field(), verrs[0].Tag())
		}
		return err
	}
	return nil
}

// writeServiceError сопоставляет виды ошибок сервисов со статусами.
func writeServiceError(w http.ResponseWriter, logger *zap.SugaredLogger, op string, err error) {
	var notEmpty *service.NotEmptyError
	switch {
	case errors.As(err, &notEmpty):
		writeJSON(w, http.StatusConflict, map[string]any{
			"error":   notEmpty.Error(),
			"folders": notEmpty.Folders,
			"files":   notEmpty.Files,
		})
	case errors.Is(err, service.ErrExpired):
		http.Error(w, service.ErrExpired.Error(), http.StatusNotFound)
	case errors.Is(err, service.ErrNotFound):
		http.Error(w, "not found", http.StatusNotFound)
	case errors.Is(err, service.ErrForbidden):
		http.Error(w, "forbidden", http.StatusForbidden)
	case errors.Is(err, service.ErrDuplicateName),
		errors.Is(err, service.ErrSelfParent),
		errors.Is(err, service.ErrCircularReference):
		http.Error(w, err.Error(), http.StatusConflict)
	case errors.Is(err, service.ErrValidation):
		http.Error(w, err.Error(), http.StatusBadRequest)
	case errors.Is(err, service.ErrUnavailable):
		logger.Warnw(op+": storage unavailable", "error", err)
		w.Header().Set("Retry-After", "1")
		http.Error(w, service.ErrUnavailable.Error(), http.StatusServiceUnavailable)
	default:
		logger.Errorw(op+": service error", "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
	}
}

// pathID достаёт id сущности из пути. Не-uuid не может принадлежать ни одной записи,
// поэтому сразу 404, до обращения к хранилищу.
func pathID(w http.ResponseWriter, r *http.Request, key string) (string, bool) {
	id := chi.URLParam(r, key)
	if err := validate.Var(id, "required,uuid"); err != nil {
		http.Error(w, "not found", http.StatusNotFound)
		return "", false
	}
	return id, true
}

// boolQuery true для "1", "true", "yes".
func boolQuery(r *http.Request, key string) bool {
	switch r.URL.Query().Get(key) {
	case "1", "true", "yes":
		return true
	}
	return false
}

// optionalID разбирает поле с id, где null означает «в корень».
// present=false, если поля в запросе нет.
func optionalID(raw json.RawMessage) (id *string, toRoot, present bool, err error) {
	if raw == nil {
		return nil, false, false, nil
	}
	if string(raw) == "null" {
		return nil, true, true, nil
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return nil, false, true, fmt.Errorf("id must be a string or null")
	}
	if err := validate.Var(s, "uuid"); err != nil {
		return nil, false, true, fmt.Errorf("id must be a uuid")
	}
	return &s, false, true, nil
}
