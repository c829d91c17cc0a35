package api

import (
	"context"
	"fmt"
	"net/http"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/soundstage-events/backoffice/utils"
)

const defaultUploadFolder = "general"

var folderPattern = regexp.MustCompile(`^[a-z0-9][a-z0-9_-]{0,39}$`)

var allowedUploadExt = map[string]bool{
	".jpg": true, ".jpeg": true, ".png": true, ".gif": true, ".webp": true, ".avif": true, ".svg": true,
}

func uploadFolder(raw string) (string, error) {
	folder := strings.ToLower(strings.TrimSpace(raw))
	if folder == "" {
		return defaultUploadFolder, nil
	}
	if !folderPattern.MatchString(folder) {
		return "", fmt.Errorf("folder may only contain lowercase letters, digits, '-' and '_'")
	}
	return folder, nil
}

// UploadHandler stores one image in object storage and returns its key and URL.
func (s *Server) UploadHandler(w http.ResponseWriter, r *http.Request) {
	var logMessageBuilder strings.Builder
	defer utils.FlushLogMessage(&logMessageBuilder)
	utils.AddToLogMessage(&logMessageBuilder, "[Upload API]")

	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes+1<<20)
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		utils.RespondError(w, &logMessageBuilder, "Error parsing form data", http.StatusBadRequest)
		return
	}

	folder, err := uploadFolder(r.FormValue("folder"))
	if err != nil {
		utils.RespondError(w, &logMessageBuilder, err.Error(), http.StatusBadRequest)
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		utils.RespondError(w, &logMessageBuilder, "file is required", http.StatusBadRequest)
		return
	}
	defer file.Close()

	if header.Size > maxUploadBytes {
		utils.RespondError(w, &logMessageBuilder, "File too large", http.StatusRequestEntityTooLarge)
		return
	}

	ext := strings.ToLower(filepath.Ext(header.Filename))
	if !allowedUploadExt[ext] {
		utils.RespondError(w, &logMessageBuilder, fmt.Sprintf("Unsupported file type %q", ext), http.StatusBadRequest)
		return
	}
	contentType := header.Header.Get("Content-Type")
	if contentType == "" || contentType == "application/octet-stream" {
		contentType = "image/" + strings.TrimPrefix(ext, ".")
		if ext == ".jpg" {
			contentType = "image/jpeg"
		} else if ext == ".svg" {
			contentType = "image/svg+xml"
		}
	}

	ctx, cancel := context.WithTimeout(r.Context(), 30*time.Second)
	defer cancel()

	objectKey := fmt.Sprintf("uploads/%s/%s%s", folder, uuid.New().String(), ext)
	key, err := s.Storage.Upload(ctx, file, objectKey, contentType)
	if err != nil {
		utils.AddToLogMessage(&logMessageBuilder, fmt.Sprintf("Upload failed: %v", err))
		utils.RespondError(w, &logMessageBuilder, "Error uploading file", http.StatusInternalServerError)
		return
	}

	url, err := s.Storage.URL(ctx, key)
	if err != nil {
		utils.AddToLogMessage(&logMessageBuilder, fmt.Sprintf("Resolve URL failed: %v", err))
		url = ""
	}

	utils.AddToLogMessage(&logMessageBuilder, "Uploaded "+key)
	utils.RespondJSON(w, http.StatusCreated, map[string]string{"key": key, "url": url})
}

// RemoteUploadRequest lists external images to copy into storage.
type RemoteUploadRequest struct {
	URLs   []string `json:"urls"`
	Folder string   `json:"folder"`
}

// RemoteUploadHandler mirrors external images into object storage.
func (s *Server) RemoteUploadHandler(w http.ResponseWriter, r *http.Request) {
	var logMessageBuilder strings.Builder
	defer utils.FlushLogMessage(&logMessageBuilder)
	utils.AddToLogMessage(&logMessageBuilder, "[Remote Upload API]")

	var req RemoteUploadRequest
	if err := decodeJSON(w, r, &req); err != nil {
		utils.RespondError(w, &logMessageBuilder, "Invalid request body", http.StatusBadRequest)
		return
	}
	folder, err := uploadFolder(req.Folder)
	if err != nil {
		utils.RespondError(w, &logMessageBuilder, err.Error(), http.StatusBadRequest)
		return
	}
	if len(req.URLs) == 0 {
		utils.RespondError(w, &logMessageBuilder, "urls is required", http.StatusBadRequest)
		return
	}
	for _, u := range req.URLs {
		if !utils.IsAbsoluteURL(u) {
			utils.RespondError(w, &logMessageBuilder, fmt.Sprintf("Invalid URL %q", u), http.StatusBadRequest)
			return
		}
	}

	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Minute)
	defer cancel()

	urlToKey := utils.MirrorImages(ctx, s.Storage, req.URLs, "uploads/"+folder)

	failed := []string{}
	seen := map[string]bool{}
	for _, u := range req.URLs {
		if _, ok := urlToKey[u]; !ok && !seen[u] {
			failed = append(failed, u)
		}
		seen[u] = true
	}

	utils.AddToLogMessage(&logMessageBuilder, fmt.Sprintf("Mirrored %d images, %d failed", len(urlToKey), len(failed)))
	utils.RespondJSON(w, http.StatusOK, map[string]interface{}{
		"keys":   urlToKey,
		"failed": failed,
	})
}
