package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/gorilla/mux"
	"github.com/soundstage-events/backoffice/cache"
	"github.com/soundstage-events/backoffice/models"
	"github.com/soundstage-events/backoffice/store"
	"github.com/soundstage-events/backoffice/utils"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

var (
	byCreatedAt    = []store.SortField{{Key: "created_at", Desc: true}}
	byDisplayOrder = []store.SortField{{Key: "display_order"}, {Key: "created_at", Desc: true}}
)

// resource serves the public and admin endpoints of one content collection.
type resource[T any, PT models.Doc[T]] struct {
	srv  *Server
	name string
	repo store.Repository[T]
	sort []store.SortField

	// public exposes GET /api/{name} and /api/{name}/{id}.
	public bool
	// filter narrows public lists; visible hides single documents the same way.
	filter  func(r *http.Request) map[string]interface{}
	visible func(*T) bool

	customAdminList bool
}

func queryFilter(field string) func(r *http.Request) map[string]interface{} {
	return func(r *http.Request) map[string]interface{} {
		if v := strings.TrimSpace(r.URL.Query().Get(field)); v != "" {
			return map[string]interface{}{field: v}
		}
		return nil
	}
}

func boolQueryFilter(field string) func(r *http.Request) map[string]interface{} {
	return func(r *http.Request) map[string]interface{} {
		if v, err := strconv.ParseBool(r.URL.Query().Get(field)); err == nil {
			return map[string]interface{}{field: v}
		}
		return nil
	}
}

func fixedFilter(field string, value interface{}) func(r *http.Request) map[string]interface{} {
	return func(r *http.Request) map[string]interface{} {
		return map[string]interface{}{field: value}
	}
}

func mount[T any, PT models.Doc[T]](s *Server, public, admin *mux.Router, res *resource[T, PT]) {
	res.srv = s
	if res.sort == nil {
		res.sort = byCreatedAt
	}

	if res.public {
		public.HandleFunc("/"+res.name, res.publicList).Methods(http.MethodGet)
		public.HandleFunc("/"+res.name+"/{id}", res.publicGet).Methods(http.MethodGet)
	}

	if !res.customAdminList {
		admin.HandleFunc("/"+res.name, res.adminList).Methods(http.MethodGet)
	}
	admin.HandleFunc("/"+res.name, res.create).Methods(http.MethodPost)
	admin.HandleFunc("/"+res.name+"/{id}", res.adminGet).Methods(http.MethodGet)
	admin.HandleFunc("/"+res.name+"/{id}", res.update).Methods(http.MethodPut)
	admin.HandleFunc("/"+res.name+"/{id}", res.delete).Methods(http.MethodDelete)
}

func (res *resource[T, PT]) title() string {
	return "[" + res.name + "]"
}

// resolveImages turns stored object keys into URLs on a copy that is only sent to the client.
func (res *resource[T, PT]) resolveImages(ctx context.Context, doc *T) {
	if holder, ok := any(PT(doc)).(models.ImageHolder); ok {
		utils.ResolveImageRefs(ctx, res.srv.Storage, holder.ImageRefs())
	}
}

// apiError is a failure already translated to an HTTP status.
type apiError struct {
	Status  int
	Message string
}

func (e *apiError) Error() string { return e.Message }

func pathID(r *http.Request) (primitive.ObjectID, error) {
	id, err := primitive.ObjectIDFromHex(mux.Vars(r)["id"])
	if err != nil {
		return primitive.NilObjectID, fmt.Errorf("invalid id")
	}
	return id, nil
}

// respondCached serves a cached body or computes, caches and serves a fresh one.
func (res *resource[T, PT]) respondCached(w http.ResponseWriter, r *http.Request, logMessageBuilder *strings.Builder, build func(ctx context.Context) (interface{}, *apiError)) {
	c := res.srv.cache()
	key := cache.Key(res.name, r.URL.RequestURI())

	if body, err := c.Get(r.Context(), key); err == nil {
		utils.AddToLogMessage(logMessageBuilder, "Cache hit")
		w.Header().Set("Content-Type", "application/json")
		w.Header().Set("X-Cache", "HIT")
		w.WriteHeader(http.StatusOK)
		w.Write(body)
		return
	} else if !errors.Is(err, cache.ErrMiss) {
		utils.AddToLogMessage(logMessageBuilder, fmt.Sprintf("Cache read failed: %v", err))
	}

	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	payload, apiErr := build(ctx)
	if apiErr != nil {
		utils.RespondError(w, logMessageBuilder, apiErr.Message, apiErr.Status)
		return
	}

	body, err := json.Marshal(payload)
	if err != nil {
		utils.RespondError(w, logMessageBuilder, "Error encoding response", http.StatusInternalServerError)
		return
	}
	if err := c.Set(ctx, key, body); err != nil {
		utils.AddToLogMessage(logMessageBuilder, fmt.Sprintf("Cache write failed: %v", err))
	}

	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("X-Cache", "MISS")
	w.WriteHeader(http.StatusOK)
	w.Write(body)
}

func (res *resource[T, PT]) list(ctx context.Context, r *http.Request, filter map[string]interface{}) (*ListResponse, error) {
	page, limit := parsePagination(r)
	docs, total, err := res.repo.List(ctx, store.ListOptions{
		Filter: filter,
		Sort:   res.sort,
		Page:   page,
		Limit:  limit,
	})
	if err != nil {
		return nil, err
	}
	for i := range docs {
		res.resolveImages(ctx, &docs[i])
	}
	return &ListResponse{Data: docs, Meta: newPageMeta(page, limit, total)}, nil
}

func (res *resource[T, PT]) publicList(w http.ResponseWriter, r *http.Request) {
	var logMessageBuilder strings.Builder
	defer utils.FlushLogMessage(&logMessageBuilder)
	utils.AddToLogMessage(&logMessageBuilder, "[Public List API] "+res.title())

	res.respondCached(w, r, &logMessageBuilder, func(ctx context.Context) (interface{}, *apiError) {
		var filter map[string]interface{}
		if res.filter != nil {
			filter = res.filter(r)
		}
		resp, err := res.list(ctx, r, filter)
		if err != nil {
			utils.AddToLogMessage(&logMessageBuilder, fmt.Sprintf("List failed: %v", err))
			return nil, &apiError{http.StatusInternalServerError, "Failed to fetch data"}
		}
		utils.AddToLogMessage(&logMessageBuilder, fmt.Sprintf("Fetched page %d of %d records", resp.Meta.Page, resp.Meta.TotalRecords))
		return resp, nil
	})
}

func (res *resource[T, PT]) publicGet(w http.ResponseWriter, r *http.Request) {
	var logMessageBuilder strings.Builder
	defer utils.FlushLogMessage(&logMessageBuilder)
	utils.AddToLogMessage(&logMessageBuilder, "[Public Get API] "+res.title())

	id, err := pathID(r)
	if err != nil {
		utils.RespondError(w, &logMessageBuilder, "Invalid id", http.StatusBadRequest)
		return
	}

	res.respondCached(w, r, &logMessageBuilder, func(ctx context.Context) (interface{}, *apiError) {
		doc, err := res.repo.Get(ctx, id)
		if errors.Is(err, store.ErrNotFound) || (err == nil && res.visible != nil && !res.visible(doc)) {
			return nil, &apiError{http.StatusNotFound, "Not found"}
		}
		if err != nil {
			utils.AddToLogMessage(&logMessageBuilder, fmt.Sprintf("Get failed: %v", err))
			return nil, &apiError{http.StatusInternalServerError, "Failed to fetch data"}
		}
		res.resolveImages(ctx, doc)
		return map[string]interface{}{"data": doc}, nil
	})
}

func (res *resource[T, PT]) adminList(w http.ResponseWriter, r *http.Request) {
	var logMessageBuilder strings.Builder
	defer utils.FlushLogMessage(&logMessageBuilder)
	utils.AddToLogMessage(&logMessageBuilder, "[Admin List API] "+res.title())

	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	resp, err := res.list(ctx, r, nil)
	if err != nil {
		utils.AddToLogMessage(&logMessageBuilder, fmt.Sprintf("List failed: %v", err))
		utils.RespondError(w, &logMessageBuilder, "Failed to fetch data", http.StatusInternalServerError)
		return
	}
	utils.RespondJSON(w, http.StatusOK, resp)
}

func (res *resource[T, PT]) adminGet(w http.ResponseWriter, r *http.Request) {
	var logMessageBuilder strings.Builder
	defer utils.FlushLogMessage(&logMessageBuilder)
	utils.AddToLogMessage(&logMessageBuilder, "[Admin Get API] "+res.title())

	id, err := pathID(r)
	if err != nil {
		utils.RespondError(w, &logMessageBuilder, "Invalid id", http.StatusBadRequest)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	doc, err := res.repo.Get(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		utils.RespondError(w, &logMessageBuilder, "Not found", http.StatusNotFound)
		return
	}
	if err != nil {
		utils.AddToLogMessage(&logMessageBuilder, fmt.Sprintf("Get failed: %v", err))
		utils.RespondError(w, &logMessageBuilder, "Failed to fetch data", http.StatusInternalServerError)
		return
	}
	res.resolveImages(ctx, doc)
	utils.RespondJSON(w, http.StatusOK, map[string]interface{}{"data": doc})
}

// decodeDocument reads, normalizes and validates a request body. On failure the
// response has already been written.
func (res *resource[T, PT]) decodeDocument(w http.ResponseWriter, r *http.Request, logMessageBuilder *strings.Builder) (*T, bool) {
	doc := new(T)
	if err := decodeJSON(w, r, doc); err != nil {
		utils.RespondError(w, logMessageBuilder, "Invalid request body", http.StatusBadRequest)
		return nil, false
	}
	// ids and timestamps are owned by the server
	*PT(doc).Meta() = models.Base{}

	if n, ok := any(PT(doc)).(models.Normalizer); ok {
		n.Normalize()
	}
	if err := utils.ValidateStruct(doc); err != nil {
		var ve *utils.ValidationError
		if errors.As(err, &ve) {
			utils.RespondValidationError(w, logMessageBuilder, ve)
			return nil, false
		}
		utils.RespondError(w, logMessageBuilder, err.Error(), http.StatusBadRequest)
		return nil, false
	}
	return doc, true
}

func (res *resource[T, PT]) invalidate(ctx context.Context, logMessageBuilder *strings.Builder) {
	if !res.public {
		return
	}
	if err := res.srv.cache().InvalidatePrefix(ctx, cache.ResourcePrefix(res.name)); err != nil {
		utils.AddToLogMessage(logMessageBuilder, fmt.Sprintf("Cache invalidation failed: %v", err))
	}
}

func (res *resource[T, PT]) create(w http.ResponseWriter, r *http.Request) {
	var logMessageBuilder strings.Builder
	defer utils.FlushLogMessage(&logMessageBuilder)
	utils.AddToLogMessage(&logMessageBuilder, "[Admin Create API] "+res.title())

	doc, ok := res.decodeDocument(w, r, &logMessageBuilder)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	if err := res.repo.Create(ctx, doc); err != nil {
		utils.AddToLogMessage(&logMessageBuilder, fmt.Sprintf("Create failed: %v", err))
		utils.RespondError(w, &logMessageBuilder, "Failed to save data", http.StatusInternalServerError)
		return
	}
	res.invalidate(ctx, &logMessageBuilder)

	utils.AddToLogMessage(&logMessageBuilder, "Created "+PT(doc).Meta().ID.Hex())
	utils.RespondJSON(w, http.StatusCreated, map[string]interface{}{"data": doc})
}

func (res *resource[T, PT]) update(w http.ResponseWriter, r *http.Request) {
	var logMessageBuilder strings.Builder
	defer utils.FlushLogMessage(&logMessageBuilder)
	utils.AddToLogMessage(&logMessageBuilder, "[Admin Update API] "+res.title())

	id, err := pathID(r)
	if err != nil {
		utils.RespondError(w, &logMessageBuilder, "Invalid id", http.StatusBadRequest)
		return
	}

	doc, ok := res.decodeDocument(w, r, &logMessageBuilder)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	existing, err := res.repo.Get(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		utils.RespondError(w, &logMessageBuilder, "Not found", http.StatusNotFound)
		return
	}
	if err != nil {
		utils.AddToLogMessage(&logMessageBuilder, fmt.Sprintf("Get failed: %v", err))
		utils.RespondError(w, &logMessageBuilder, "Failed to fetch data", http.StatusInternalServerError)
		return
	}
	PT(doc).Meta().CreatedAt = PT(existing).Meta().CreatedAt

	if err := res.repo.Update(ctx, id, doc); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			utils.RespondError(w, &logMessageBuilder, "Not found", http.StatusNotFound)
			return
		}
		utils.AddToLogMessage(&logMessageBuilder, fmt.Sprintf("Update failed: %v", err))
		utils.RespondError(w, &logMessageBuilder, "Failed to save data", http.StatusInternalServerError)
		return
	}
	res.invalidate(ctx, &logMessageBuilder)

	utils.AddToLogMessage(&logMessageBuilder, "Updated "+id.Hex())
	utils.RespondJSON(w, http.StatusOK, map[string]interface{}{"data": doc})
}

func (res *resource[T, PT]) delete(w http.ResponseWriter, r *http.Request) {
	var logMessageBuilder strings.Builder
	defer utils.FlushLogMessage(&logMessageBuilder)
	utils.AddToLogMessage(&logMessageBuilder, "[Admin Delete API] "+res.title())

	id, err := pathID(r)
	if err != nil {
		utils.RespondError(w, &logMessageBuilder, "Invalid id", http.StatusBadRequest)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	if err := res.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			utils.RespondError(w, &logMessageBuilder, "Not found", http.StatusNotFound)
			return
		}
		utils.AddToLogMessage(&logMessageBuilder, fmt.Sprintf("Delete failed: %v", err))
		utils.RespondError(w, &logMessageBuilder, "Failed to delete data", http.StatusInternalServerError)
		return
	}
	res.invalidate(ctx, &logMessageBuilder)

	utils.AddToLogMessage(&logMessageBuilder, "Deleted "+id.Hex())
	utils.RespondJSON(w, http.StatusOK, map[string]string{"message": "Deleted successfully"})
}
