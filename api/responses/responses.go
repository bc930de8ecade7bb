package responses

import (
	"context"
	"encoding/json"
	"net/http"

	pkgerrors "github.com/angelmondragon/farmfresh-backend/pkg/errors"
	"github.com/angelmondragon/farmfresh-backend/pkg/logger"
	"github.com/angelmondragon/farmfresh-backend/pkg/types"
)

const contentTypeJSON = "application/json"

func WriteSuccess(w http.ResponseWriter, data any) {
	WriteSuccessStatus(w, http.StatusOK, data)
}

func WriteSuccessStatus(w http.ResponseWriter, status int, data any) {
	writeJSON(w, nil, status, types.SuccessEnvelope{Data: data})
}

// WriteError renders err as an error envelope. Errors without a code are
// reported as internal and their text never reaches the client.
func WriteError(ctx context.Context, logg *logger.Logger, w http.ResponseWriter, err error) {
	typed := pkgerrors.As(err)
	if typed == nil {
		typed = pkgerrors.Wrap(pkgerrors.CodeInternal, err, "unexpected error")
	}
	meta := pkgerrors.MetadataFor(typed.Code())

	message := meta.PublicMessage
	if meta.ClientFacing() && typed.Message() != "" {
		message = typed.Message()
	}
	var details any
	if meta.DetailsAllowed {
		details = typed.Details()
	}

	if logg != nil {
		logCtx := logg.WithFields(ctx, pkgerrors.Dump(typed).Fields())
		if meta.HTTPStatus >= http.StatusInternalServerError {
			logg.Error(logCtx, "request.failed", typed)
		} else {
			logg.Warn(logCtx, "request.rejected")
		}
	}

	writeJSON(w, logg, meta.HTTPStatus, types.NewErrorEnvelope(string(typed.Code()), message, details))
}

func writeJSON(w http.ResponseWriter, logg *logger.Logger, status int, payload any) {
	w.Header().Set("Content-Type", contentTypeJSON)
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil && logg != nil {
		logg.Error(context.Background(), "response.encode_failed", err)
	}
}
