package utils

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"path"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// maxRemoteImageSize caps a single mirrored image.
const maxRemoteImageSize = 15 << 20

// ImageHTTPClient is used for mirroring remote images.
var ImageHTTPClient = &http.Client{Timeout: 30 * time.Second}

// MirrorImages downloads images from URLs and uploads them to storage.
// Returns a map of Original URL -> Object Key; URLs that fail are logged and left out.
func MirrorImages(ctx context.Context, storage ObjectStorage, urls []string, folderPrefix string) map[string]string {
	urlToKey := make(map[string]string)
	var mu sync.Mutex
	var wg sync.WaitGroup

	// Limit concurrency
	semaphore := make(chan struct{}, 5)

	seen := make(map[string]bool)
	for _, url := range urls {
		if url == "" || seen[url] {
			continue
		}
		seen[url] = true
		wg.Add(1)
		go func(url string) {
			defer wg.Done()
			semaphore <- struct{}{}
			defer func() { <-semaphore }()

			objectKey := fmt.Sprintf("%s/%s%s", folderPrefix, uuid.New().String(), imageExt(url))
			if err := downloadAndUpload(ctx, storage, url, objectKey); err != nil {
				Logger.Warn("mirror image failed", zap.String("url", url), zap.Error(err))
				return
			}

			mu.Lock()
			urlToKey[url] = objectKey
			mu.Unlock()
		}(url)
	}

	wg.Wait()
	return urlToKey
}

func imageExt(url string) string {
	name := path.Base(strings.SplitN(url, "?", 2)[0])
	ext := strings.ToLower(path.Ext(name))
	switch ext {
	case ".jpg", ".jpeg", ".png", ".gif", ".webp", ".avif":
		return ext
	}
	return ".jpg"
}

func downloadAndUpload(ctx context.Context, storage ObjectStorage, url, objectKey string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return err
	}
	req.Header.Set("User-Agent", "Mozilla/5.0 (macOS) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/91.0.4472.114 Safari/537.36")

	resp, err := ImageHTTPClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("bad status: %s", resp.Status)
	}

	bodyBytes, err := io.ReadAll(io.LimitReader(resp.Body, maxRemoteImageSize+1))
	if err != nil {
		return err
	}
	if len(bodyBytes) > maxRemoteImageSize {
		return fmt.Errorf("image larger than %d bytes", maxRemoteImageSize)
	}

	contentType := resp.Header.Get("Content-Type")
	if contentType == "" {
		contentType = http.DetectContentType(bodyBytes)
	}
	if !strings.HasPrefix(contentType, "image/") {
		return fmt.Errorf("not an image: %s", contentType)
	}

	_, err = storage.Upload(ctx, bytes.NewReader(bodyBytes), objectKey, contentType)
	return err
}
