package middleware

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/ducnguyen0213/lucky-wheel-all/utils"
)

// ValidateJSON decodes the request body into dst and runs the struct
// validator. The error response has already been written when it returns a
// non-nil error.
func ValidateJSON(w http.ResponseWriter, r *http.Request, dst interface{}) error {
	if ct := r.Header.Get("Content-Type"); !strings.HasPrefix(ct, "application/json") {
		utils.WriteJSON(w, http.StatusUnsupportedMediaType, utils.APIResponse{
			Success: false, Message: "Content-Type must be application/json",
		})
		return http.ErrNotSupported
	}
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		utils.WriteJSON(w, http.StatusBadRequest, utils.APIResponse{
			Success: false, Message: "Invalid JSON body",
		})
		return err
	}
	if err := utils.ValidateStruct(dst); err != nil {
		utils.WriteJSON(w, http.StatusBadRequest, utils.APIResponse{
			Success: false, Message: err.Error(),
		})
		return err
	}
	return nil
}
