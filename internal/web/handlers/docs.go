package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/vecindo/vecindo/internal/docsearch"
	"github.com/vecindo/vecindo/internal/logging"
)

// SearchDocumentsHandler proxies a query to the document-search service
// and returns the ranked chunks.
func SearchDocumentsHandler(searcher docsearch.Searcher) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if searcher == nil {
			writeError(w, http.StatusNotImplemented, "document search is not configured")
			return
		}
		communityID := chi.URLParam(r, "communityID")
		query := r.URL.Query().Get("q")
		if query == "" {
			writeError(w, http.StatusBadRequest, "q parameter is required")
			return
		}

		chunks, err := searcher.Search(r.Context(), communityID, query)
		if err != nil {
			logging.L(r.Context()).Error("document search failed", "community", communityID, "error", err)
			writeError(w, http.StatusBadGateway, err.Error())
			return
		}
		if chunks == nil {
			chunks = []docsearch.Chunk{}
		}
		writeJSON(w, http.StatusOK, map[string]any{"chunks": chunks})
	}
}
