package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/ledongthuc/pdf"

	"rog-research/internal/app"
	"rog-research/internal/cache"
	"rog-research/internal/httputil"
	"rog-research/internal/inference"
	"rog-research/internal/queue"
	"rog-research/internal/store"
	"rog-research/internal/verify"
)

const (
	modeEnhanced = "enhanced"
	modeLegacy   = "legacy"

	queryMaxAttempts = 3
)

type verifyRequest struct {
	Content string `json:"content" validate:"required"`
}

type queryRequest struct {
	Prompt string `json:"prompt" validate:"required,max=100000"`
}

type queryTaskPayload struct {
	QueryID uuid.UUID `json:"query_id"`
}

func main() {
	deps, err := app.BuildGateway()
	if err != nil {
		slog.Default().Error("failed to build dependencies", "err", err)
		os.Exit(1)
	}
	defer deps.Cache.Close()

	addr := fmt.Sprintf(":%d", deps.Config.Port)
	deps.Log.Info("gateway listening", "addr", addr, "model", deps.Config.Model)
	if err := http.ListenAndServe(addr, newRouter(deps)); err != nil {
		deps.Log.Error("server failed", "err", err)
	}
}

func newRouter(deps app.Deps) http.Handler {
	r := httputil.NewRouter(deps.Log)

	r.Post("/verify", verifyHandler(deps))
	r.Post("/verify-legacy", legacyHandler(deps))
	r.Post("/verify/upload", uploadHandler(deps))
	r.Get("/verify/reports/{id}", reportHandler(deps))
	r.Post("/api/queries", createQueryHandler(deps))
	r.Get("/api/queries/{id}", getQueryHandler(deps))
	r.Get("/healthz", httputil.HealthHandler(deps))
	return r
}

// verifyHandler runs the full analyze/review/unify pipeline.
func verifyHandler(deps app.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		content, ok := decodeContent(deps, w, r)
		if !ok {
			return
		}
		entry, cached, err := withCache(r.Context(), deps, modeEnhanced, content, func(ctx context.Context) (*cache.Entry, error) {
			rep, err := deps.Verifier.Enhanced(ctx, content)
			if err != nil {
				return nil, err
			}
			return &cache.Entry{Mode: modeEnhanced, LocalAnalysis: rep.LocalAnalysis, Review: rep.Review, Result: rep.Combined}, nil
		})
		if err != nil {
			httputil.Fail(deps.Log, w, errorMessage(err), err, statusFor(err))
			return
		}
		httputil.WriteJSON(w, http.StatusOK, map[string]any{"result": entry.Result, "cached": cached})
	}
}

// legacyHandler runs the single review prompt only.
func legacyHandler(deps app.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		content, ok := decodeContent(deps, w, r)
		if !ok {
			return
		}
		entry, cached, err := withCache(r.Context(), deps, modeLegacy, content, func(ctx context.Context) (*cache.Entry, error) {
			review, err := deps.Verifier.Review(ctx, content)
			if err != nil {
				return nil, err
			}
			return &cache.Entry{Mode: modeLegacy, Review: review, Result: review}, nil
		})
		if err != nil {
			httputil.Fail(deps.Log, w, errorMessage(err), err, statusFor(err))
			return
		}
		httputil.WriteJSON(w, http.StatusOK, map[string]any{"result": entry.Result, "cached": cached})
	}
}

func decodeContent(deps app.Deps, w http.ResponseWriter, r *http.Request) (string, bool) {
	var req verifyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.Fail(deps.Log, w, "invalid payload", err, http.StatusBadRequest)
		return "", false
	}
	if err := httputil.Validator.Struct(&req); err != nil {
		httputil.Fail(deps.Log, w, "No content provided", err, http.StatusBadRequest)
		return "", false
	}
	return req.Content, true
}

// withCache returns a cached entry for (mode, model, content) or computes and stores one.
// Cache failures are logged and never fail the request.
func withCache(ctx context.Context, deps app.Deps, mode, content string, compute func(context.Context) (*cache.Entry, error)) (*cache.Entry, bool, error) {
	key := cache.GenerateKey(mode, deps.Verifier.Model(), content)
	if hit, err := deps.Cache.GetReport(ctx, key); err != nil {
		deps.Log.Warn("cache read failed", "err", err)
	} else if hit != nil {
		deps.Log.Info("cache hit", "mode", mode)
		return hit, true, nil
	}

	entry, err := compute(ctx)
	if err != nil {
		return nil, false, err
	}
	ttl := time.Duration(deps.Config.CacheTTL) * time.Second
	if err := deps.Cache.SetReport(ctx, key, entry, ttl); err != nil {
		deps.Log.Warn("failed to cache result", "err", err)
	}
	return entry, false, nil
}

func uploadHandler(deps app.Deps) http.HandlerFunc {
	maxFileSize := deps.Config.MaxUploadSize

	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		if r.ContentLength > maxFileSize {
			httputil.Fail(deps.Log, w, fmt.Sprintf("file too large (max %d bytes)", maxFileSize), nil, http.StatusBadRequest)
			return
		}

		file, header, err := r.FormFile("file")
		if err != nil {
			httputil.Fail(deps.Log, w, "file is required", err, http.StatusBadRequest)
			return
		}
		defer file.Close()

		if header.Size > maxFileSize {
			httputil.Fail(deps.Log, w, fmt.Sprintf("file too large (max %d bytes)", maxFileSize), nil, http.StatusBadRequest)
			return
		}

		contentType := header.Header.Get("Content-Type")
		if contentType == "" {
			switch strings.ToLower(filepath.Ext(header.Filename)) {
			case ".txt":
				contentType = "text/plain"
			case ".pdf":
				contentType = "application/pdf"
			}
		}
		if contentType != "text/plain" && contentType != "application/pdf" {
			httputil.Fail(deps.Log, w, "unsupported file type (only PDF and TXT allowed)", nil, http.StatusBadRequest)
			return
		}

		raw, err := io.ReadAll(file)
		if err != nil {
			httputil.Fail(deps.Log, w, "failed to read file", err, http.StatusInternalServerError)
			return
		}
		text := extractText(deps, header.Filename, contentType, raw)
		if strings.TrimSpace(text) == "" {
			httputil.Fail(deps.Log, w, "No content provided", verify.ErrEmptyContent, http.StatusBadRequest)
			return
		}

		rep, err := deps.Verifier.Enhanced(ctx, text)
		if err != nil {
			httputil.Fail(deps.Log, w, errorMessage(err), err, statusFor(err))
			return
		}

		saved, err := deps.Store.SaveReport(ctx, store.Report{
			Source:   header.Filename,
			Model:    deps.Verifier.Model(),
			Content:  text,
			Analyses: []string{rep.LocalAnalysis, rep.Review},
			Result:   rep.Combined,
		})
		if err != nil {
			httputil.Fail(deps.Log, w, "failed to persist report", err, http.StatusInternalServerError)
			return
		}

		httputil.WriteJSON(w, http.StatusCreated, map[string]any{
			"report_id": saved.ID.String(),
			"result":    saved.Result,
		})
	}
}

func reportHandler(deps app.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := uuid.Parse(chi.URLParam(r, "id"))
		if err != nil {
			httputil.Fail(deps.Log, w, "invalid report id", err, http.StatusBadRequest)
			return
		}
		rep, err := deps.Store.GetReport(r.Context(), id)
		if errors.Is(err, store.ErrReportNotFound) {
			httputil.Fail(deps.Log, w, "report not found", err, http.StatusNotFound)
			return
		}
		if err != nil {
			httputil.Fail(deps.Log, w, "failed to load report", err, http.StatusInternalServerError)
			return
		}
		httputil.WriteJSON(w, http.StatusOK, map[string]any{
			"report_id":  rep.ID.String(),
			"source":     rep.Source,
			"model":      rep.Model,
			"analyses":   rep.Analyses,
			"result":     rep.Result,
			"created_at": rep.CreatedAt,
		})
	}
}

// createQueryHandler records a query and hands it to the worker queue.
func createQueryHandler(deps app.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		var req queryRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			httputil.Fail(deps.Log, w, "invalid payload", err, http.StatusBadRequest)
			return
		}
		if err := httputil.Validator.Struct(&req); err != nil {
			httputil.ValidationError(deps.Log, w, err)
			return
		}

		q, err := deps.Store.CreateQuery(ctx, deps.Config.Model, req.Prompt)
		if err != nil {
			httputil.Fail(deps.Log, w, "failed to persist query", err, http.StatusInternalServerError)
			return
		}
		log := deps.Log.With("query_id", q.ID)

		body, err := json.Marshal(queryTaskPayload{QueryID: q.ID})
		if err != nil {
			failQuery(ctx, log, deps, w, q.ID, "marshal payload failed", err)
			return
		}
		task := queue.Task{Type: queue.TaskTypeQuery, Payload: body, MaxAttempts: queryMaxAttempts}
		if err := queue.EnqueueWithRetry(ctx, deps.Queue, task, 3, 200*time.Millisecond); err != nil {
			failQuery(ctx, log, deps, w, q.ID, "failed to enqueue query; please retry", err)
			return
		}

		httputil.WriteJSON(w, http.StatusAccepted, map[string]any{
			"query_id": q.ID.String(),
			"status":   q.Status,
		})
	}
}

// failQuery marks a query failed before reporting the error to the client.
func failQuery(ctx context.Context, log *slog.Logger, deps app.Deps, w http.ResponseWriter, id uuid.UUID, message string, err error) {
	if upErr := deps.Store.FailQuery(ctx, id, message); upErr != nil {
		log.Error("failed to mark query failed", "err", upErr)
	}
	httputil.Fail(log, w, message, err, http.StatusInternalServerError)
}

func getQueryHandler(deps app.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := uuid.Parse(chi.URLParam(r, "id"))
		if err != nil {
			httputil.Fail(deps.Log, w, "invalid query id", err, http.StatusBadRequest)
			return
		}
		q, err := deps.Store.GetQuery(r.Context(), id)
		if errors.Is(err, store.ErrQueryNotFound) {
			httputil.Fail(deps.Log, w, "query not found", err, http.StatusNotFound)
			return
		}
		if err != nil {
			httputil.Fail(deps.Log, w, "failed to load query", err, http.StatusInternalServerError)
			return
		}
		resp := map[string]any{
			"query_id":   q.ID.String(),
			"status":     q.Status,
			"created_at": q.CreatedAt,
		}
		if q.Result != "" {
			resp["result"] = q.Result
		}
		if q.Error != "" {
			resp["error"] = q.Error
		}
		if q.CompletedAt != nil {
			resp["completed_at"] = *q.CompletedAt
		}
		httputil.WriteJSON(w, http.StatusOK, resp)
	}
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, verify.ErrEmptyContent):
		return http.StatusBadRequest
	case errors.Is(err, inference.ErrNetwork):
		return http.StatusServiceUnavailable
	case errors.Is(err, inference.ErrMalformedResponse):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func errorMessage(err error) string {
	switch {
	case errors.Is(err, verify.ErrEmptyContent):
		return "No content provided"
	case errors.Is(err, inference.ErrNetwork):
		return "inference service unavailable"
	case errors.Is(err, inference.ErrMalformedResponse):
		return "inference service returned an invalid response"
	default:
		return "verification failed"
	}
}

// extractText returns the plain text of an upload, falling back to raw bytes when PDF parsing fails.
func extractText(deps app.Deps, filename, contentType string, content []byte) string {
	if contentType == "application/pdf" {
		text, err := extractPDF(content)
		if err != nil {
			deps.Log.Warn("pdf extraction failed, using raw bytes", "err", err, "filename", filename)
			return string(content)
		}
		return text
	}
	return string(content)
}

func extractPDF(content []byte) (string, error) {
	reader := bytes.NewReader(content)
	pdfReader, err := pdf.NewReader(reader, int64(len(content)))
	if err != nil {
		return "", err
	}

	var textBuilder strings.Builder
	for pageNum := 1; pageNum <= pdfReader.NumPage(); pageNum++ {
		page := pdfReader.Page(pageNum)
		if page.V.IsNull() || page.V.Key("Contents").Kind() == pdf.Null {
			continue
		}
		text, err := page.GetPlainText(nil)
		if err != nil {
			// Skip pages that fail to extract
			continue
		}
		textBuilder.WriteString(text)
		textBuilder.WriteString("\n")
	}

	return textBuilder.String(), nil
}
