package http

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"learnitquick/internal/domain"
	"learnitquick/internal/generator"

	"github.com/rs/zerolog"
)

func TestModesEndpoint(t *testing.T) {
	mux := http.NewServeMux()
	NewAPIHandler(newTestService(t), zerolog.Nop()).Register(mux)

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/modes", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var infos []generator.Info
	if err := json.NewDecoder(rec.Body).Decode(&infos); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(infos) != len(domain.Modes) || infos[0].Mode != domain.ModeTables {
		t.Fatalf("unexpected catalogue %+v", infos)
	}
}

func TestProfileEndpoint(t *testing.T) {
	mux := http.NewServeMux()
	NewAPIHandler(newTestService(t), zerolog.Nop()).Register(mux)

	rec := httptest.NewRecorder()
	body := strings.NewReader(`{"name":"Mia","avatar":"🦄"}`)
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodPut, "/profile?playerId=p1", body))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 on update, got %d: %s", rec.Code, rec.Body.String())
	}

	rec = httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/profile?playerId=p1", nil))
	var profile domain.Profile
	if err := json.NewDecoder(rec.Body).Decode(&profile); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if profile.PlayerName != "Mia" || profile.PlayerAvatar != "🦄" || profile.TotalCoins != 0 {
		t.Fatalf("unexpected profile %+v", profile)
	}

	rec = httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/profile", nil))
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 without player, got %d", rec.Code)
	}
}
