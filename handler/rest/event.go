package rest

import (
	"net/http"

	"synthd/core"
	"synthd/handler/param"
	"synthd/handler/render"
)

// response collateral movement events, paged by event id
func eventsHandler(events core.EventStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		limit := param.Int(r, "limit")
		if limit <= 0 || limit > 500 {
			limit = 100
		}

		items, err := events.List(ctx, param.Uint64(r, "offset"), limit)
		if err != nil {
			render.BadRequest(w, err)
			return
		}

		render.JSON(w, items)
	}
}
