package web

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v4"
	"github.com/rs/zerolog"

	"telegram-promo-campaign/internal/domain"
	"telegram-promo-campaign/internal/domain/model"
	"telegram-promo-campaign/internal/domain/ports/repository"
	"telegram-promo-campaign/internal/usecase"
)

const defaultAnalyticsWindow = 30 * 24 * time.Hour

// codesListHandler serves the paginated, filterable code table.
// Query: used=true|false, giftId=<id>|withGift, search=<value or id>,
// page, limit.
func codesListHandler(codes repository.CodeRepository) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		q := r.URL.Query()

		query := repository.CodePageQuery{
			GiftID: q.Get("giftId"),
			Search: q.Get("search"),
		}
		if v := q.Get("used"); v != "" {
			used, err := strconv.ParseBool(v)
			if err != nil {
				http.Error(w, "Invalid 'used' filter", http.StatusBadRequest)
				return
			}
			query.Used = &used
		}
		query.Page, _ = strconv.Atoi(q.Get("page"))
		query.Limit, _ = strconv.Atoi(q.Get("limit"))
		if query.Page <= 0 {
			query.Page = 1
		}
		if query.Limit <= 0 || query.Limit > 200 {
			query.Limit = 50
		}

		page, err := codes.Paginate(ctx, repository.NoTX, query)
		if err != nil {
			http.Error(w, "Failed to list codes", http.StatusInternalServerError)
			return
		}

		response := struct {
			Data           []*model.Code `json:"data"`
			Total          int           `json:"total"`
			TotalUsedCount int           `json:"totalUsedCount"`
			Page           int           `json:"page"`
			Limit          int           `json:"limit"`
		}{
			Data:           page.Data,
			Total:          page.Total,
			TotalUsedCount: page.TotalUsedCount,
			Page:           query.Page,
			Limit:          query.Limit,
		}

		writeJSON(w, http.StatusOK, response)
	}
}

// codesUsedByHandler lists one participant's claims.
func codesUsedByHandler(codes repository.CodeRepository) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		userID := chi.URLParam(r, "userID")
		if userID == "" {
			http.Error(w, "User ID is required", http.StatusBadRequest)
			return
		}

		page, _ := strconv.Atoi(r.URL.Query().Get("page"))
		limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
		if page <= 0 {
			page = 1
		}
		if limit <= 0 || limit > 200 {
			limit = 50
		}

		rows, total, err := codes.PaginateUsedBy(ctx, repository.NoTX, userID, page, limit)
		if err != nil {
			http.Error(w, "Failed to list claims", http.StatusInternalServerError)
			return
		}

		response := struct {
			Data  []*model.Code `json:"data"`
			Total int           `json:"total"`
			Page  int           `json:"page"`
			Limit int           `json:"limit"`
		}{Data: rows, Total: total, Page: page, Limit: limit}

		writeJSON(w, http.StatusOK, response)
	}
}

type giftGiveRequest struct {
	GivenBy string `json:"givenBy"`
}

// giftGiveHandler records the physical hand-over of a gift-backed code and
// refreshes the gift counter in the same transaction, so the hand-over mark
// and the counter never drift apart.
func giftGiveHandler(codes repository.CodeRepository, gifts repository.GiftRepository, txm repository.TransactionManager, log *zerolog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
		if err != nil {
			http.Error(w, "Invalid code id", http.StatusBadRequest)
			return
		}

		var req giftGiveRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.GivenBy == "" {
			http.Error(w, "Invalid request body", http.StatusBadRequest)
			return
		}

		var code *model.Code
		err = txm.WithTx(ctx, pgx.TxOptions{}, func(ctx context.Context, tx repository.Tx) error {
			var txErr error
			code, txErr = codes.MarkGiftGiven(ctx, tx, id, req.GivenBy)
			if txErr != nil {
				return txErr
			}
			if code.GiftID != nil {
				return gifts.RefreshUsedCount(ctx, tx, *code.GiftID)
			}
			return nil
		})
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				http.NotFound(w, r)
				return
			}
			log.Error().Err(err).Int64("code_id", id).Msg("mark gift given")
			http.Error(w, "Failed to mark gift given", http.StatusInternalServerError)
			return
		}

		writeJSON(w, http.StatusOK, code)
	}
}

type codeDeleteRequest struct {
	DeletedBy string `json:"deletedBy"`
}

func codeDeleteHandler(codes repository.CodeRepository) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
		if err != nil {
			http.Error(w, "Invalid code id", http.StatusBadRequest)
			return
		}

		var req codeDeleteRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.DeletedBy == "" {
			http.Error(w, "Invalid request body", http.StatusBadRequest)
			return
		}

		if err := codes.SoftDelete(ctx, repository.NoTX, id, req.DeletedBy); err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				http.NotFound(w, r)
				return
			}
			http.Error(w, "Failed to delete code", http.StatusInternalServerError)
			return
		}

		w.WriteHeader(http.StatusNoContent)
	}
}

// analyticsHandler serves the day-bucketed claim report.
// 'from' and 'to' accept epoch milliseconds or YYYY-MM-DD; the window
// defaults to the last 30 days.
func analyticsHandler(analytics usecase.AnalyticsUseCase) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		to := time.Now().UTC()
		from := to.Add(-defaultAnalyticsWindow)

		if v := r.URL.Query().Get("from"); v != "" {
			t, err := parseTimeParam(v)
			if err != nil {
				http.Error(w, "Invalid 'from' parameter", http.StatusBadRequest)
				return
			}
			from = t
		}
		if v := r.URL.Query().Get("to"); v != "" {
			t, err := parseTimeParam(v)
			if err != nil {
				http.Error(w, "Invalid 'to' parameter", http.StatusBadRequest)
				return
			}
			to = t
		}
		if to.Before(from) {
			http.Error(w, "'to' precedes 'from'", http.StatusBadRequest)
			return
		}

		report, err := analytics.Get(ctx, from, to)
		if err != nil {
			http.Error(w, "Failed to build report", http.StatusInternalServerError)
			return
		}

		writeJSON(w, http.StatusOK, report)
	}
}

// statsHandler serves campaign-wide totals.
func statsHandler(codes repository.CodeRepository, users repository.UserRepository) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		totalUsers, err := users.CountUsers(ctx, repository.NoTX)
		if err != nil {
			http.Error(w, "Failed to count users", http.StatusInternalServerError)
			return
		}

		page, err := codes.Paginate(ctx, repository.NoTX, repository.CodePageQuery{Page: 1, Limit: 1})
		if err != nil {
			http.Error(w, "Failed to count codes", http.StatusInternalServerError)
			return
		}

		response := struct {
			TotalUsers int `json:"totalUsers"`
			TotalCodes int `json:"totalCodes"`
			UsedCodes  int `json:"usedCodes"`
		}{
			TotalUsers: totalUsers,
			TotalCodes: page.Total,
			UsedCodes:  page.TotalUsedCount,
		}

		writeJSON(w, http.StatusOK, response)
	}
}

func giftsListHandler(gifts repository.GiftRepository) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		list, err := gifts.ListActive(ctx, repository.NoTX)
		if err != nil {
			http.Error(w, "Failed to list gifts", http.StatusInternalServerError)
			return
		}

		response := struct {
			Data []*model.Gift `json:"data"`
		}{Data: list}

		writeJSON(w, http.StatusOK, response)
	}
}

func parseTimeParam(v string) (time.Time, error) {
	if ms, err := strconv.ParseInt(v, 10, 64); err == nil {
		return time.UnixMilli(ms).UTC(), nil
	}
	t, err := time.Parse("2006-01-02", v)
	if err != nil {
		return time.Time{}, err
	}
	return t.UTC(), nil
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
