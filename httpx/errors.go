package httpx

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/formdeck/formdeck/log"
	"github.com/formdeck/formdeck/model"
)

// Will log an error, and send an HTTP response with status 500 and default text
func LogInternalError(w http.ResponseWriter, code string, err error) {
	log.Errorf("%s: %s", code, err)
	http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
}

// Will log a debug message, and send an HTTP response with status 404 and default text
func LogNotFound(w http.ResponseWriter, code string, id any) {
	log.Debugf("%s: not found (%v)", code, id)
	w.WriteHeader(http.StatusNotFound)
}

// Will log an error code at the given level, and send
// an HTTP response with status and default text
func LogStatus(w http.ResponseWriter, status int, level log.Level, code string) {
	log.Log(level, code)
	http.Error(w, http.StatusText(status), status)
}

// Will log an error code and message at the given level,
// and send an HTTP response with the given status and formatted message
func LogStatusMsg(w http.ResponseWriter, status int, level log.Level, code string, msg string, args ...any) {
	errMsg := fmt.Sprintf(msg, args...)
	log.Log(level, code+":", errMsg)
	http.Error(w, errMsg, status)
}

// LogError maps a core error to its HTTP status: validation errors to
// 400, unknown entities to 404, transaction conflicts to 409 and
// anything else (including integrity violations) to 500.
func LogError(w http.ResponseWriter, code string, err error) {
	var validation model.ValidationError
	var notFound model.NotFoundError
	var conflict model.ConcurrencyError

	switch {
	case errors.As(err, &validation):
		LogStatusMsg(w, http.StatusBadRequest, log.DebugLevel, code, "%s", validation.Error())
	case errors.As(err, &notFound):
		LogNotFound(w, code, notFound.ID)
	case errors.As(err, &conflict):
		LogStatus(w, http.StatusConflict, log.WarnLevel, code)
	default:
		LogInternalError(w, code, err)
	}
}
