package req

import (
	"encoding/json"
	"io"
	"net/http"

	"github.com/Dhoini/Subscription-service/pkg/logger"
	"github.com/Dhoini/Subscription-service/pkg/res"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

// Decode декодирует JSON из io.ReadCloser в структуру типа T.
func Decode[T any](body io.ReadCloser) (T, error) {
	var payload T
	if err := json.NewDecoder(body).Decode(&payload); err != nil {
		return payload, err
	}
	return payload, nil
}

// IsValid валидирует структуру типа T.
func IsValid[T any](payload T) error {
	return validate.Struct(payload)
}

// HandleBody декодирует, валидирует и обрабатывает тело запроса.
// При ошибке сам пишет ответ 400 и возвращает err - обработчику достаточно выйти.
func HandleBody[T any](c *gin.Context, log *logger.Logger) (*T, error) {
	body, err := Decode[T](c.Request.Body)
	if err != nil {
		log.Warnw("Failed to decode request body", "error", err, "path", c.Request.URL.Path)
		res.JsonResponse(c.Writer, res.ErrorResponse{Error: "invalid request body"}, http.StatusBadRequest)
		c.Abort()
		return nil, err
	}

	if err := IsValid(body); err != nil {
		log.Warnw("Request body validation failed", "error", err, "path", c.Request.URL.Path)
		res.JsonResponse(c.Writer, res.ErrorResponse{Error: "invalid request data", Details: err.Error()}, http.StatusBadRequest)
		c.Abort()
		return nil, err
	}

	return &body, nil
}
