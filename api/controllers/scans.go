package controllers

import (
	"net/http"

	"github.com/firesight-ai/firesight-backend/api/middleware"
	"github.com/firesight-ai/firesight-backend/api/responses"
	"github.com/firesight-ai/firesight-backend/api/validators"
	"github.com/firesight-ai/firesight-backend/internal/scans"
	pkgerrors "github.com/firesight-ai/firesight-backend/pkg/errors"
	"github.com/firesight-ai/firesight-backend/pkg/logger"
)

// ScansAnalyze scores the submitted coordinates with the external model and
// persists the result under the caller's account.
func ScansAnalyze(svc scans.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "scan service unavailable"))
			return
		}

		user := middleware.UserFromContext(r.Context())
		if user == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "authentication required"))
			return
		}

		var body scans.AnalyzeRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := svc.Analyze(r.Context(), user.ID, body)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, result)
	}
}

// ScansFeedback records the reviewer's verdict on a scan.
//
// TODO: gate this behind Auth and an ownership check; the shipped web client
// calls it without a token, so tightening it breaks feedback until the
// client attaches one.
func ScansFeedback(svc scans.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "scan service unavailable"))
			return
		}

		// A malformed id can never resolve to a scan, so it answers the
		// same way an unknown one does.
		scanID, err := validators.ParsePathUUID(r, "scanId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeNotFound, "Scan not found"))
			return
		}

		var body scans.FeedbackRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := svc.SubmitFeedback(r.Context(), scanID, body)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, result)
	}
}

// ScansMyHistory lists the caller's saved scans, newest first.
func ScansMyHistory(svc scans.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "scan service unavailable"))
			return
		}

		user := middleware.UserFromContext(r.Context())
		if user == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "authentication required"))
			return
		}

		history, err := svc.MyHistory(r.Context(), user.ID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, history)
	}
}
