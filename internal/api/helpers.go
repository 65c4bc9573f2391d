package api

import (
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/goccy/go-json"
	"github.com/labstack/echo/v5"

	"github.com/samcharles93/savekit/pkg/bin"
	"github.com/samcharles93/savekit/pkg/gta3"
	"github.com/samcharles93/savekit/pkg/save"
	"github.com/samcharles93/savekit/pkg/sniff"
)

var errTooLarge = errors.New("request body too large")

func writeBadRequest(c *echo.Context, msg string) error {
	return writeError(c, http.StatusBadRequest, "invalid_request_error", msg, "")
}

func writeError(c *echo.Context, status int, errType, msg, phase string) error {
	return c.JSON(status, map[string]any{
		"error": ErrorBody{
			Message: msg,
			Type:    errType,
			Phase:   phase,
		},
	})
}

// writeSaveError maps an engine error to a status code by its cause.
func writeSaveError(c *echo.Context, err error) error {
	phase := string(save.PhaseOf(err))
	switch {
	case errors.Is(err, ErrInvalidRequest), errors.Is(err, save.ErrUnsupported):
		return writeError(c, http.StatusBadRequest, "invalid_request_error", err.Error(), phase)
	case errors.Is(err, ErrNotFound):
		return writeError(c, http.StatusNotFound, "not_found_error", err.Error(), phase)
	case errors.Is(err, save.ErrBusy):
		return writeError(c, http.StatusConflict, "conflict_error", err.Error(), phase)
	case errors.Is(err, sniff.ErrUnrecognizedFormat),
		errors.Is(err, save.ErrTruncated),
		errors.Is(err, save.ErrChecksumMismatch),
		errors.Is(err, bin.ErrOutOfData),
		errors.Is(err, bin.ErrEntitySizeMismatch):
		return writeError(c, http.StatusUnprocessableEntity, "save_error", err.Error(), phase)
	case phase == string(save.PhaseFraming) || phase == string(save.PhaseDecode):
		return writeError(c, http.StatusUnprocessableEntity, "save_error", err.Error(), phase)
	default:
		return writeError(c, http.StatusInternalServerError, "server_error", err.Error(), phase)
	}
}

// readSave reads a raw save file from the request body.
func readSave(c *echo.Context) ([]byte, error) {
	data, err := io.ReadAll(io.LimitReader(c.Request().Body, gta3.MaxFileSize+1))
	if err != nil {
		return nil, newInvalidRequest(fmt.Sprintf("read body: %v", err))
	}
	if len(data) > gta3.MaxFileSize {
		return nil, errTooLarge
	}
	if len(data) == 0 {
		return nil, newInvalidRequest("request body is empty")
	}
	return data, nil
}

func writeReadError(c *echo.Context, err error) error {
	if errors.Is(err, errTooLarge) {
		return writeError(c, http.StatusRequestEntityTooLarge, "invalid_request_error",
			fmt.Sprintf("save files are at most %d bytes", gta3.MaxFileSize), "")
	}
	return writeBadRequest(c, err.Error())
}

func decodeJSON[T any](r io.Reader) (T, error) {
	var out T
	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&out); err != nil {
		return out, err
	}
	return out, nil
}
