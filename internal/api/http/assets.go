package http

import (
	"io"
	"net/http"
	"path"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/quizcraft/grammarquiz/internal/storage"
)

// MountAssets wires the answer-image upload and download routes.
func MountAssets(r chi.Router, bs storage.BlobStore) {
	// POST /assets  multipart field "file" -> {"key": "..."}
	r.Post("/", func(w http.ResponseWriter, r *http.Request) {
		f, hdr, err := r.FormFile("file")
		if err != nil {
			http.Error(w, "file required", http.StatusBadRequest)
			return
		}
		defer f.Close()

		ext := strings.ToLower(path.Ext(hdr.Filename))
		switch ext {
		case ".png", ".jpg", ".jpeg":
		default:
			http.Error(w, "png or jpeg required", http.StatusBadRequest)
			return
		}
		key := "answers/" + uuid.NewString() + ext
		if _, err := bs.Put(key, f); err != nil {
			http.Error(w, "store error: "+err.Error(), http.StatusInternalServerError)
			return
		}
		writeJSON(w, map[string]string{"key": key})
	})

	// GET /assets/*
	r.Get("/*", func(w http.ResponseWriter, r *http.Request) {
		key := strings.TrimPrefix(chi.URLParam(r, "*"), "/")
		rc, err := bs.Get(key)
		if err != nil {
			http.Error(w, "not found: "+err.Error(), http.StatusNotFound)
			return
		}
		defer rc.Close()
		head := make([]byte, 512)
		n, err := io.ReadFull(rc, head)
		if err != nil && err != io.EOF && err != io.ErrUnexpectedEOF {
			http.Error(w, "read error: "+err.Error(), http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", http.DetectContentType(head[:n]))
		_, _ = w.Write(head[:n])
		_, _ = io.Copy(w, rc)
	})
}
