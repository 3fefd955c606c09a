package httpserver

import (
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/pathakanu/mindwell/internal/apperrors"
	"github.com/pathakanu/mindwell/internal/twilio"
	twilioclient "github.com/twilio/twilio-go/client"
)

const twilioSignatureHeader = "X-Twilio-Signature"

type chatRequest struct {
	Message string `json:"message"`
}

func (s *Server) registerChatRoutes(g *echo.Group) {
	g.POST("/chat", s.handleChat)
	g.GET("/chat/welcome", s.handleChatWelcome)
}

func (s *Server) handleChat(c echo.Context) error {
	var req chatRequest
	if err := c.Bind(&req); err != nil {
		return apperrors.ValidationError("invalid request body")
	}
	if strings.TrimSpace(req.Message) == "" {
		return apperrors.ValidationError("message is required")
	}

	reply := s.responder.Respond(req.Message)
	s.chatEvents.ChatReplied(string(reply.Category))
	return sendJSON(c, http.StatusOK, reply)
}

func (s *Server) handleChatWelcome(c echo.Context) error {
	user, err := currentUser(c)
	if err != nil {
		return err
	}
	return sendJSON(c, http.StatusOK, map[string]string{"reply": s.responder.Welcome(user.FullName)})
}

// handleTwilioWebhook answers inbound WhatsApp messages with a TwiML reply.
func (s *Server) handleTwilioWebhook(c echo.Context) error {
	form, err := c.FormParams()
	if err != nil {
		slog.WarnContext(c.Request().Context(), "webhook: parse error", "error", err)
		return s.writeTwiML(c, http.StatusOK, "Sorry, I couldn't understand that request.")
	}

	if !s.validTwilioSignature(c, form) {
		return apperrors.UnauthorizedError("invalid twilio signature")
	}

	from := twilio.SanitizeWhatsAppNumber(form.Get("From"))
	body := strings.TrimSpace(form.Get("Body"))
	if from == "" || body == "" {
		return s.writeTwiML(c, http.StatusOK, "I need a message to work with. Please try again.")
	}

	reply := s.responder.Respond(body)
	s.chatEvents.ChatReplied(string(reply.Category))
	slog.InfoContext(c.Request().Context(), "webhook: replied", "from", from, "category", reply.Category)
	return s.writeTwiML(c, http.StatusOK, reply.Text)
}

// validTwilioSignature verifies X-Twilio-Signature when an auth token is
// configured. Without one the webhook is open, as in local development.
func (s *Server) validTwilioSignature(c echo.Context, form url.Values) bool {
	if s.config.TwilioAuthToken == "" {
		return true
	}
	signature := c.Request().Header.Get(twilioSignatureHeader)
	if signature == "" {
		return false
	}
	validator := twilioclient.NewRequestValidator(s.config.TwilioAuthToken)
	return validator.Validate(s.getBaseURL(c)+c.Request().URL.RequestURI(), formParams(form), signature)
}

func (s *Server) writeTwiML(c echo.Context, status int, message string) error {
	c.Response().Header().Set(echo.HeaderContentType, echo.MIMEApplicationXMLCharsetUTF8)
	c.Response().WriteHeader(status)
	if err := twilio.WriteTwiML(c.Response(), message); err != nil {
		slog.ErrorContext(c.Request().Context(), "twilio response encode", "error", err)
	}
	return nil
}

// formParams flattens the POST form into the map the signature validator expects.
func formParams(values url.Values) map[string]string {
	result := make(map[string]string, len(values))
	for key, value := range values {
		if len(value) > 0 {
			result[key] = value[0]
		}
	}
	return result
}
