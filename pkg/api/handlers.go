package api

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"go.opentelemetry.io/otel/attribute"

	"foodflow/pkg/food"
	"foodflow/pkg/food/pagination"
	"foodflow/pkg/food/query"
	"foodflow/pkg/otel"
)

// Clients send the session ID from POST /login in the cookie, or in the
// header when they do not keep cookies.
const (
	sessionCookie = "session_id"
	sessionHeader = "X-Session-Id"
)

// intParam reads a numeric query parameter, falling back to def when it is
// missing or not a number.
func intParam(r *http.Request, name string, def int) int {
	v, err := strconv.Atoi(r.URL.Query().Get(name))
	if err != nil {
		return def
	}
	return v
}

func decodeRecord(w http.ResponseWriter, r *http.Request) (food.Record, bool) {
	var rec food.Record
	if err := json.NewDecoder(r.Body).Decode(&rec); err != nil {
		writeError(w, r, http.StatusBadRequest, ErrCodeInvalidRequest, "invalid request body: "+err.Error())
		return rec, false
	}
	return rec, true
}

// healthz reports liveness.
// @Summary Health check
// @Produce json
// @Success 200 {object} map[string]string
// @Router /healthz [get]
func (h *Handler) healthz(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// listAll returns the first size records of the collection.
// @Summary List records
// @Produce json
// @Param size query int false "Number of records" default(10)
// @Success 200 {array} food.Record
// @Security ApiKeyAuth
// @Router /food/all [get]
func (h *Handler) listAll(w http.ResponseWriter, r *http.Request) {
	ctx, span := otel.AddSpan(r.Context(), "listAllHandler")
	defer span.End()

	size := intParam(r, "size", defaultListSize)
	if size < 0 {
		size = defaultListSize
	}
	size = min(size, maxPageSize)
	recs, err := h.repo.List(ctx, query.All().Page(0, size).String())
	if err != nil {
		h.fail(w, r, "list records", err)
		return
	}
	writeJSON(w, http.StatusOK, recs)
}

// get returns one record or null.
// @Summary Get record
// @Produce json
// @Param id query string true "Record ID"
// @Param partitionKey query string true "Food group"
// @Success 200 {object} food.Record
// @Security ApiKeyAuth
// @Router /food [get]
func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	ctx, span := otel.AddSpan(r.Context(), "getHandler",
		attribute.String("food.id", q.Get("id")),
		attribute.String("food.partition_key", q.Get("partitionKey")),
	)
	defer span.End()

	rec, err := h.repo.Get(ctx, q.Get("id"), q.Get("partitionKey"))
	if err != nil {
		h.fail(w, r, "get record", err)
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

// getByQuery runs a read-only query such as
// SELECT * FROM c WHERE c.foodGroup = 'Spices'.
// @Summary Query records
// @Produce json
// @Param query query string true "Read-only query"
// @Success 200 {array} food.Record
// @Failure 400 {object} ErrorResponse
// @Security ApiKeyAuth
// @Router /food/GetByQuery [get]
func (h *Handler) getByQuery(w http.ResponseWriter, r *http.Request) {
	ctx, span := otel.AddSpan(r.Context(), "getByQueryHandler")
	defer span.End()

	recs, err := h.repo.List(ctx, r.URL.Query().Get("query"))
	if err != nil {
		h.fail(w, r, "query records", err)
		return
	}
	writeJSON(w, http.StatusOK, recs)
}

// add creates a record under a new ID.
// @Summary Create record
// @Accept json
// @Produce json
// @Param record body food.Record true "Record"
// @Success 201 {object} food.Record
// @Failure 400 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse
// @Security ApiKeyAuth
// @Router /food [post]
func (h *Handler) add(w http.ResponseWriter, r *http.Request) {
	ctx, span := otel.AddSpan(r.Context(), "addHandler")
	defer span.End()

	rec, ok := decodeRecord(w, r)
	if !ok {
		return
	}
	if err := h.repo.Add(ctx, &rec); err != nil {
		h.fail(w, r, "add record", err)
		return
	}
	writeJSON(w, http.StatusCreated, rec)
}

// update replaces a record or creates it.
// @Summary Upsert record
// @Accept json
// @Produce json
// @Param record body food.Record true "Record"
// @Success 200 {object} food.Record
// @Security ApiKeyAuth
// @Router /food [put]
func (h *Handler) update(w http.ResponseWriter, r *http.Request) {
	ctx, span := otel.AddSpan(r.Context(), "updateHandler")
	defer span.End()

	rec, ok := decodeRecord(w, r)
	if !ok {
		return
	}
	if err := h.repo.Update(ctx, rec); err != nil {
		h.fail(w, r, "update record", err)
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

// updatePartial changes only the description of an existing record.
// @Summary Patch description
// @Accept json
// @Produce json
// @Param record body food.Record true "Record with id, foodGroup and description"
// @Success 200
// @Failure 404 {object} ErrorResponse
// @Security ApiKeyAuth
// @Router /food/UpdatePartial [put]
func (h *Handler) updatePartial(w http.ResponseWriter, r *http.Request) {
	ctx, span := otel.AddSpan(r.Context(), "updatePartialHandler")
	defer span.End()

	rec, ok := decodeRecord(w, r)
	if !ok {
		return
	}
	if err := h.repo.PatchDescription(ctx, rec); err != nil {
		h.fail(w, r, "patch record", err)
		return
	}
	w.WriteHeader(http.StatusOK)
}

// remove deletes a record. Deleting a missing record succeeds.
// @Summary Delete record
// @Param id query string true "Record ID"
// @Param partitionKey query string true "Food group"
// @Success 204
// @Security ApiKeyAuth
// @Router /food [delete]
func (h *Handler) remove(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	ctx, span := otel.AddSpan(r.Context(), "deleteHandler", attribute.String("food.id", q.Get("id")))
	defer span.End()

	if err := h.repo.Delete(ctx, q.Get("id"), q.Get("partitionKey")); err != nil {
		h.fail(w, r, "delete record", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func pageParams(r *http.Request) (page, size int) {
	page = pagination.PageNumber(intParam(r, "page", 1))
	size = intParam(r, "rowsPerPage", defaultPageSize)
	if size <= 0 {
		size = defaultPageSize
	}
	return page, min(size, maxPageSize)
}

// pageByContinuation pages through the store's feed. Passing the returned
// continuationToken fetches the following page without re-skipping.
// @Summary Page records by continuation
// @Produce json
// @Param page query int false "Page number, from 1" default(1)
// @Param rowsPerPage query int false "Page size" default(10)
// @Param partitionKey query string false "Food group"
// @Param continuationToken query string false "Token from a previous page"
// @Success 200 {object} food.PagedResult[food.Record]
// @Security ApiKeyAuth
// @Router /food/paging [get]
func (h *Handler) pageByContinuation(w http.ResponseWriter, r *http.Request) {
	page, size := pageParams(r)
	ctx, span := otel.AddSpan(r.Context(), "pageHandler", attribute.Int("page", page), attribute.Int("rows_per_page", size))
	defer span.End()

	q := r.URL.Query()
	res, err := h.repo.PageByContinuation(ctx, food.ContinuationPageRequest{
		PageSize:     size,
		SkipPages:    page - 1,
		PartitionKey: q.Get("partitionKey"),
		Continuation: q.Get("continuationToken"),
	})
	if err != nil {
		h.fail(w, r, "page records", err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// pageByOffset reads one OFFSET/LIMIT window.
// @Summary Page records by offset
// @Produce json
// @Param page query int false "Page number, from 1" default(1)
// @Param rowsPerPage query int false "Page size" default(10)
// @Param partitionKey query string false "Food group"
// @Success 200 {object} food.PagedResult[food.Record]
// @Security ApiKeyAuth
// @Router /food/paging/offset [get]
func (h *Handler) pageByOffset(w http.ResponseWriter, r *http.Request) {
	page, size := pageParams(r)
	ctx, span := otel.AddSpan(r.Context(), "pageOffsetHandler", attribute.Int("page", page), attribute.Int("rows_per_page", size))
	defer span.End()

	res, err := h.repo.PageByOffset(ctx, food.OffsetPageRequest{
		PageSize:     size,
		Skip:         pagination.SkipCount(page, size),
		PartitionKey: r.URL.Query().Get("partitionKey"),
	})
	if err != nil {
		h.fail(w, r, "page records", err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// loginRequest represents login credentials.
type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// login creates a session and sets the session cookie.
// @Summary Login
// @Description Authenticates user and sets session cookie
// @Accept json
// @Param creds body loginRequest true "Credentials"
// @Success 200
// @Failure 400 {object} ErrorResponse
// @Router /login [post]
func (h *Handler) login(w http.ResponseWriter, r *http.Request) {
	ctx, span := otel.AddSpan(r.Context(), "loginHandler")
	defer span.End()

	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Username == "" {
		writeError(w, r, http.StatusBadRequest, ErrCodeInvalidRequest, "invalid credentials")
		return
	}
	sid, err := h.sessions.Create(ctx, req.Username)
	if err != nil {
		h.log.Error(ctx, "create session", "error", err)
		writeError(w, r, http.StatusInternalServerError, ErrCodeInternal, "session error")
		return
	}
	ttl := h.sessions.TTL()
	if ttl <= 0 {
		ttl = time.Hour
	}
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookie,
		Value:    sid,
		Path:     "/",
		Expires:  time.Now().Add(ttl),
		HttpOnly: true,
	})
	w.WriteHeader(http.StatusOK)
}
