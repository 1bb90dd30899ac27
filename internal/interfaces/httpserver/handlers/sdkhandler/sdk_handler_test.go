package sdkhandler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"justiniano-server/chat-gateway/internal/utils/platformerrors"
)

type stubGenerator struct {
	gotLanguage     string
	gotInstructions string
	code            string
	err             error
}

func (s *stubGenerator) Generate(_ context.Context, language, instructions string) (string, error) {
	s.gotLanguage = language
	s.gotInstructions = instructions
	return s.code, s.err
}

func newTestRouter(generator Generator) *gin.Engine {
	gin.SetMode(gin.TestMode)
	handler := NewSDKHandler(generator, zerolog.Nop())
	engine := gin.New()
	engine.POST("/sdk/generate", handler.GenerateSDK)
	return engine
}

func post(router *gin.Engine, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/sdk/generate", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	recorder := httptest.NewRecorder()
	router.ServeHTTP(recorder, req)
	return recorder
}

func TestGenerateSDK(t *testing.T) {
	generator := &stubGenerator{code: "import requests"}
	router := newTestRouter(generator)

	recorder := post(router, `{"language":"python","instructions":"use requests"}`)

	if recorder.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d (%s)", recorder.Code, recorder.Body.String())
	}
	var body struct {
		Language string `json:"language"`
		Code     string `json:"code"`
	}
	if err := json.Unmarshal(recorder.Body.Bytes(), &body); err != nil {
		t.Fatalf("unmarshal body: %v", err)
	}
	if body.Language != "python" || body.Code != "import requests" {
		t.Fatalf("unexpected response: %+v", body)
	}
	if generator.gotLanguage != "python" || generator.gotInstructions != "use requests" {
		t.Fatalf("generator received %q / %q", generator.gotLanguage, generator.gotInstructions)
	}
}

func TestGenerateSDKMissingLanguage(t *testing.T) {
	router := newTestRouter(&stubGenerator{})

	recorder := post(router, `{"instructions":"whatever"}`)
	if recorder.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", recorder.Code)
	}
}

func TestGenerateSDKUpstreamFailure(t *testing.T) {
	generator := &stubGenerator{
		err: platformerrors.NewError(context.Background(), platformerrors.LayerInfrastructure,
			platformerrors.ErrorTypeExternal, "completion API call failed", errors.New("boom"), ""),
	}
	router := newTestRouter(generator)

	recorder := post(router, `{"language":"go"}`)
	if recorder.Code != http.StatusBadGateway {
		t.Fatalf("expected 502, got %d", recorder.Code)
	}
}
