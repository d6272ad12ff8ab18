package controllers

import (
	"net/http"

	"github.com/firesight-ai/firesight-backend/api/responses"
	"github.com/firesight-ai/firesight-backend/internal/scans"
	pkgerrors "github.com/firesight-ai/firesight-backend/pkg/errors"
	"github.com/firesight-ai/firesight-backend/pkg/logger"
)

// AdminMasterHistory returns every scan joined with its owner plus the
// feedback summary.
func AdminMasterHistory(svc scans.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "scan service unavailable"))
			return
		}

		result, err := svc.MasterHistory(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, result)
	}
}

// AdminTrainingData exports the scans reviewers marked incorrect.
//
// TODO: move this under the admin gate alongside master-history; the
// retraining pipeline fetches it anonymously today.
func AdminTrainingData(svc scans.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "scan service unavailable"))
			return
		}

		result, err := svc.TrainingData(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, result)
	}
}
