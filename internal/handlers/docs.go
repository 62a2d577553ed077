package handlers

import "net/http"

// OpenAPIJSON serves the API description as JSON.
func (h *Handlers) OpenAPIJSON(w http.ResponseWriter, r *http.Request) {
	data, err := h.docs.JSON()
	if err != nil {
		h.respondServerError(w, err)
		return
	}
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.Write(data)
}

// OpenAPIYAML serves the API description as YAML.
func (h *Handlers) OpenAPIYAML(w http.ResponseWriter, r *http.Request) {
	data, err := h.docs.YAML()
	if err != nil {
		h.respondServerError(w, err)
		return
	}
	w.Header().Set("Content-Type", "application/yaml; charset=utf-8")
	w.Write(data)
}
