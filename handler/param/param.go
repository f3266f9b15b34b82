package param

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi"
	"github.com/gorilla/schema"
	"github.com/spf13/cast"
)

var decoder = schema.NewDecoder()

func init() {
	decoder.SetAliasTag("json")
	decoder.IgnoreUnknownKeys(true)
}

// Binding binds query values or the json body onto v depending on the
// request method.
func Binding(r *http.Request, v interface{}) error {
	switch r.Method {
	case http.MethodGet, http.MethodDelete:
		return decoder.Decode(v, r.URL.Query())
	default:
		defer r.Body.Close()
		return json.NewDecoder(r.Body).Decode(v)
	}
}

// String route param as string
func String(r *http.Request, key string) string {
	return chi.URLParam(r, key)
}

// Int query param as int, zero when absent or malformed
func Int(r *http.Request, key string) int {
	return cast.ToInt(r.URL.Query().Get(key))
}

// Uint64 query param as uint64, zero when absent or malformed
func Uint64(r *http.Request, key string) uint64 {
	return cast.ToUint64(r.URL.Query().Get(key))
}
