package httpserver

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pathakanu/mindwell/internal/apperrors"
	"github.com/pathakanu/mindwell/internal/prediction"
)

type predictionErrorResponse struct {
	prediction.Result
	Error string              `json:"error"`
	Type  apperrors.ErrorType `json:"type"`
}

func (s *Server) registerPredictionRoutes(g *echo.Group) {
	g.POST("/predict", s.handlePredict)
}

// handlePredict relays the model verdict. Failures still carry the
// "Error" outcome so the client can render them like a result.
func (s *Server) handlePredict(c echo.Context) error {
	user, err := currentUser(c)
	if err != nil {
		return err
	}

	var in prediction.Input
	if err := c.Bind(&in); err != nil {
		return s.predictionFailure(c, apperrors.ValidationError("invalid request body"))
	}

	result, err := s.predictor.Predict(c.Request().Context(), in, user.Token)
	if err != nil {
		appErr := toAppError(err, "prediction failed")
		if appErr.Type == apperrors.TypeInternal {
			appErr = apperrors.ExternalError("prediction service unavailable", err)
		}
		return s.predictionFailure(c, appErr)
	}
	return sendJSON(c, http.StatusOK, result)
}

func (s *Server) predictionFailure(c echo.Context, appErr *apperrors.Error) error {
	logError(c, appErr)
	return sendJSON(c, appErr.HTTPStatus(), predictionErrorResponse{
		Result: prediction.ErrorResult,
		Error:  appErr.Message,
		Type:   appErr.Type,
	})
}
