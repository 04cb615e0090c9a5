package modules

import "github.com/go-chi/chi/v5"

type Module interface {
	Mount(r chi.Router)
	Cleanup()
	Shutdown()
}
