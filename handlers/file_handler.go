package handlers

import (
	"fmt"
	"io"
	"net/http"
	"time"

	"cloud.google.com/go/storage"

	"p9e.in/corecut/config"
)

// UploadFileHandler routes to GCS when a bucket is configured, local disk
// otherwise. Photos and signed PDFs both come through here.
func UploadFileHandler(w http.ResponseWriter, r *http.Request) {
	if config.C.UploadBucket != "" {
		UploadFileGCS(w, r)
		return
	}
	UploadFileLocal(w, r)
}

// UploadFileGCS stores the uploaded file as an object in the configured
// bucket and returns its public URL.
func UploadFileGCS(w http.ResponseWriter, r *http.Request) {
	// Max 50MB, same ceiling as the local path.
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

	ctx := r.Context()
	client, err := storage.NewClient(ctx)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "storage client: "+err.Error())
		return
	}
	defer client.Close()

	objectName := fmt.Sprintf("%s-%s", time.Now().Format("20060102-150405"), header.Filename)
	obj := client.Bucket(config.C.UploadBucket).Object(objectName)
	writer := obj.NewWriter(ctx)
	if ct := header.Header.Get("Content-Type"); ct != "" {
		writer.ContentType = ct
	}
	if _, err := io.Copy(writer, file); err != nil {
		writer.Close()
		writeError(w, http.StatusInternalServerError, "failed to upload file: "+err.Error())
		return
	}
	if err := writer.Close(); err != nil {
		writeError(w, http.StatusInternalServerError, "failed to finalize upload: "+err.Error())
		return
	}

	writeData(w, http.StatusCreated, map[string]string{
		"url":      fmt.Sprintf("https://storage.googleapis.com/%s/%s", config.C.UploadBucket, objectName),
		"filename": objectName,
	})
}
