package handlers

import (
	"bytes"
	"io"
	"log"
	"net/http"
	"path"

	"captain-smart/internal/utils"

	"github.com/google/uuid"
)

// Uploads are capped well below typical proxy limits; exposes carry a few
// images and at most one audio clip.
const maxUploadBytes = 10 << 20 // 10 MB

// allowedMediaTypes maps accepted content types to the object key extension.
var allowedMediaTypes = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/webp": ".webp",
	"audio/mpeg": ".mp3",
	"audio/ogg":  ".ogg",
}

// HandleMediaUpload accepts a multipart file and stores it in the media
// bucket, returning the public URL to attach to an expose.
func (s *Server) HandleMediaUpload() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s.Metrics.IncrementRequests()

		if r.Method != http.MethodPost {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}

		r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)
		if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
			respondAppError(w, utils.NewValidationError("file", "multipart body too large or malformed"))
			return
		}

		file, header, err := r.FormFile("file")
		if err != nil {
			respondAppError(w, utils.NewValidationError("file", "file field required"))
			return
		}
		defer file.Close()

		contentType := header.Header.Get("Content-Type")
		ext, ok := allowedMediaTypes[contentType]
		if !ok {
			respondAppError(w, utils.NewValidationError("file", "unsupported content type: "+contentType))
			return
		}

		// Multipart readers are not seekable; buffer before handing to S3.
		data, err := io.ReadAll(file)
		if err != nil {
			s.Metrics.IncrementErrors()
			respondAppError(w, utils.NewAppError(utils.ErrDatabase, "Failed to read upload", err))
			return
		}

		key := path.Join("exposes", uuid.NewString()+ext)
		url, err := s.Media.Upload(r.Context(), key, contentType, bytes.NewReader(data))
		if err != nil {
			s.Metrics.IncrementErrors()
			respondAppError(w, asAppError(err))
			return
		}

		log.Printf("MediaUpload: stored %s (%d bytes)", key, len(data))
		respondData(w, map[string]string{"url": url})
	}
}
