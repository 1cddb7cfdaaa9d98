package response

import (
	"encoding/json"
	"errors"
	"net/http"

	"pms/infras/otel"
	"pms/shared/constant"
	"pms/shared/failure"
	"pms/shared/logger"

	"github.com/rs/zerolog/log"
)

// Data, Error and Message are the three response envelopes. Exactly one
// key is present in every body.
type Data[T any] struct {
	Data *T `json:"data,omitempty"`
}

type Error struct {
	Error *string `json:"error,omitempty"`
}

type Message struct {
	Message *string `json:"message,omitempty"`
}

func WithMessage(writer http.ResponseWriter, code int, message string) {
	write(writer, code, Message{Message: &message})
}

func WithJSON(writer http.ResponseWriter, code int, payload any) {
	write(writer, code, Data[any]{Data: &payload})
}

// WithError maps err to its failure code. Anything that is not a Failure is
// reported without detail, so driver and network errors never reach the
// client.
func WithError(writer http.ResponseWriter, err error) {
	var fail *failure.Failure
	if !errors.As(err, &fail) {
		message := http.StatusText(http.StatusInternalServerError)
		write(writer, http.StatusInternalServerError, Error{Error: &message})

		return
	}

	message := err.Error()
	write(writer, fail.Code, Error{Error: &message})
}

// WithTracedError records err on the handler span and logs it before
// responding. Client errors log at warn level with no stack.
func WithTracedError(writer http.ResponseWriter, scope otel.Scope, err error, msg string) {
	scope.TraceError(err)

	if code := failure.GetCode(err); code < http.StatusInternalServerError {
		log.Warn().Err(err).Int("status", code).Msg(msg)
	} else {
		log.Error().Err(err).Msg(msg)
		logger.ErrorWithStack(err)
	}

	WithError(writer, err)
}

func WithRequestLimitExceeded(writer http.ResponseWriter) {
	WithMessage(writer, http.StatusTooManyRequests, constant.ResponseErrorRequestLimitExceeded)
}

func WithPreparingShutdown(writer http.ResponseWriter) {
	WithMessage(writer, http.StatusServiceUnavailable, constant.ResponseErrorPrepareShutdown)
}

func WithUnhealthy(writer http.ResponseWriter) {
	WithMessage(writer, http.StatusServiceUnavailable, constant.ResponseErrorUnhealthy)
}

func write(writer http.ResponseWriter, code int, payload any) {
	body, err := json.Marshal(payload)
	if err != nil {
		logger.ErrorWithStack(err)
		writer.WriteHeader(http.StatusInternalServerError)

		return
	}

	writer.Header().Set(constant.RequestHeaderContentType, constant.ContentTypeJSON)
	writer.WriteHeader(code)

	if _, err = writer.Write(body); err != nil {
		logger.ErrorWithStack(err)
	}
}
