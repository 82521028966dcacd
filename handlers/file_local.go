package handlers

import (
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"p9e.in/corecut/config"
)

// UploadFileLocal handles file uploads to the local filesystem for
// development environments without a GCS bucket.
func UploadFileLocal(w http.ResponseWriter, r *http.Request) {
	if err := os.MkdirAll(config.C.UploadDir, 0755); err != nil {
		writeError(w, http.StatusInternalServerError, "failed to create upload directory: "+err.Error())
		return
	}

	// Parse the multipart form (max 50MB)
	if err := r.ParseMultipartForm(50 << 20); err != nil {
		writeError(w, http.StatusBadRequest, "bad multipart form: "+err.Error())
		return
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, "missing file field: "+err.Error())
		return
	}
	defer file.Close()

	// Timestamp prefix avoids collisions between same-named photos.
	filename := fmt.Sprintf("%s-%s", time.Now().Format("20060102-150405"), header.Filename)
	path := filepath.Join(config.C.UploadDir, filename)

	dst, err := os.Create(path)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to create file: "+err.Error())
		return
	}
	defer dst.Close()

	if _, err := io.Copy(dst, file); err != nil {
		writeError(w, http.StatusInternalServerError, "failed to save file: "+err.Error())
		return
	}

	writeData(w, http.StatusCreated, map[string]string{
		"url":      fmt.Sprintf("/uploads/%s", filename),
		"filename": filename,
	})
}
