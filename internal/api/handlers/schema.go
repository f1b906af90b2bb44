package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/xeipuuv/gojsonschema"
)

const maxBodyBytes = 1 << 20

// MustSchema compiles a JSON schema or panics. Intended for package-level vars.
func MustSchema(src string) *gojsonschema.Schema {
	schema, err := gojsonschema.NewSchema(gojsonschema.NewStringLoader(src))
	if err != nil {
		panic("invalid request schema: " + err.Error())
	}
	return schema
}

// DecodeValid reads the request body, validates it against schema and decodes it into v.
// Writes a 400 (or 413) and returns false when the handler should stop.
func DecodeValid(w http.ResponseWriter, r *http.Request, schema *gojsonschema.Schema, v any) bool {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			WriteError(w, http.StatusRequestEntityTooLarge, "RequestTooLarge", "Request body too large (max 1MB)")
			return false
		}
		WriteError(w, http.StatusBadRequest, "InvalidRequest", "Invalid request body")
		return false
	}

	result, err := schema.Validate(gojsonschema.NewBytesLoader(body))
	if err != nil {
		WriteError(w, http.StatusBadRequest, "InvalidRequest", "Invalid request body")
		return false
	}
	if !result.Valid() {
		messages := make([]string, 0, len(result.Errors()))
		for _, desc := range result.Errors() {
			messages = append(messages, desc.String())
		}
		WriteError(w, http.StatusBadRequest, "InvalidRequest", strings.Join(messages, "; "))
		return false
	}

	if err := json.Unmarshal(body, v); err != nil {
		WriteError(w, http.StatusBadRequest, "InvalidRequest", "Invalid request body")
		return false
	}
	return true
}
