package assistant

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"

	"parttimepal-backend/internal/session"
	"parttimepal-backend/internal/shared/server/middleware"
	"parttimepal-backend/internal/shared/server/respond"
)

func newTestRouter(svc *Service) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	api := r.Group("/api/v1")
	api.Use(middleware.Session(svc.Sessions.Exists, "/api/v1"+SessionsPath))
	NewHandler(svc, 1<<20).RegisterRoutes(api)
	return r
}

func doJSON(t *testing.T, r http.Handler, method, path, sessionID string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if sessionID != "" {
		req.Header.Set("X-Session-Id", sessionID)
	}
	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, req)
	return resp
}

func decodeError(t *testing.T, resp *httptest.ResponseRecorder) respond.ErrorBody {
	t.Helper()
	var payload respond.ErrorResponse
	if err := json.Unmarshal(resp.Body.Bytes(), &payload); err != nil {
		t.Fatalf("decode error: %v", err)
	}
	return payload.Error
}

func TestCreateSessionAndRequireHeader(t *testing.T) {
	svc, _ := newTestService(newStubProvider())
	r := newTestRouter(svc)

	resp := doJSON(t, r, http.MethodPost, "/api/v1/sessions", "", nil)
	if resp.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", resp.Code)
	}
	var snap session.Snapshot
	if err := json.Unmarshal(resp.Body.Bytes(), &snap); err != nil || snap.ID == "" {
		t.Fatalf("decode session: %v %s", err, resp.Body.String())
	}
	if resp.Header().Get("X-Session-Id") != snap.ID {
		t.Fatalf("expected session header")
	}

	resp = doJSON(t, r, http.MethodGet, "/api/v1/session", "", nil)
	if resp.Code != http.StatusBadRequest || decodeError(t, resp).Code != respond.CodeSessionRequired {
		t.Fatalf("expected SESSION_REQUIRED, got %d %s", resp.Code, resp.Body.String())
	}
	resp = doJSON(t, r, http.MethodGet, "/api/v1/session", "nope", nil)
	if resp.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", resp.Code)
	}
	resp = doJSON(t, r, http.MethodGet, "/api/v1/session", snap.ID, nil)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.Code)
	}
}

func TestSearchEndpoint(t *testing.T) {
	svc, _ := newTestService(newStubProvider())
	r := newTestRouter(svc)
	id := svc.CreateSession().ID

	resp := doJSON(t, r, http.MethodPost, "/api/v1/jobs/search", id, map[string]any{"keyword": ""})
	if resp.Code != http.StatusBadRequest || decodeError(t, resp).Code != respond.CodeValidation {
		t.Fatalf("expected validation error, got %d %s", resp.Code, resp.Body.String())
	}

	resp = doJSON(t, r, http.MethodPost, "/api/v1/jobs/search", id, map[string]any{
		"keyword":     "phục vụ",
		"city":        "Hà Nội",
		"workShift":   []string{"Ca tối"},
		"salaryRange": map[string]int{"min": 20000, "max": 40000},
	})
	if resp.Code != http.StatusAccepted {
		t.Fatalf("expected 202, got %d %s", resp.Code, resp.Body.String())
	}
	svc.Wait()

	resp = doJSON(t, r, http.MethodGet, "/api/v1/session", id, nil)
	var snap session.Snapshot
	_ = json.Unmarshal(resp.Body.Bytes(), &snap)
	if len(snap.Jobs) != 2 {
		t.Fatalf("expected jobs in session, got %s", resp.Body.String())
	}

	resp = doJSON(t, r, http.MethodPost, "/api/v1/jobs/"+snap.Jobs[0].ID+"/analyze", id, nil)
	if resp.Code != http.StatusAccepted {
		t.Fatalf("expected 202, got %d", resp.Code)
	}
	resp = doJSON(t, r, http.MethodPost, "/api/v1/jobs/"+snap.Jobs[1].ID+"/analyze", id, nil)
	if resp.Code != http.StatusConflict {
		t.Fatalf("expected 409 while analyzing, got %d", resp.Code)
	}
	svc.Wait()

	resp = doJSON(t, r, http.MethodGet, "/api/v1/session/runs", id, nil)
	var runsPayload struct {
		Items []map[string]any `json:"items"`
	}
	if err := json.Unmarshal(resp.Body.Bytes(), &runsPayload); err != nil || len(runsPayload.Items) != 2 {
		t.Fatalf("expected two runs, got %s", resp.Body.String())
	}
}

func TestVerifyEndpointRejectsShortText(t *testing.T) {
	svc, _ := newTestService(newStubProvider())
	r := newTestRouter(svc)
	id := svc.CreateSession().ID

	resp := doJSON(t, r, http.MethodPost, "/api/v1/verify", id, map[string]string{"text": "ngắn"})
	if resp.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %d", resp.Code)
	}
	if body := decodeError(t, resp); body.Code != respond.CodeInputRejected || body.Message == "" {
		t.Fatalf("unexpected body %+v", body)
	}

	resp = doJSON(t, r, http.MethodPost, "/api/v1/verify", id, map[string]string{"text": "a long enough posting", "url": "https://x"})
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for ambiguous input, got %d", resp.Code)
	}
	resp = doJSON(t, r, http.MethodPost, "/api/v1/verify", id, map[string]string{})
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for empty input, got %d", resp.Code)
	}
}

func TestVerifyEndpointImageUpload(t *testing.T) {
	p := newStubProvider()
	p.responses["image_extract"] = p.responses["url_extract"]
	svc, _ := newTestService(p)
	r := newTestRouter(svc)
	id := svc.CreateSession().ID

	body := &bytes.Buffer{}
	w := multipart.NewWriter(body)
	part, err := w.CreateFormFile("image", "shot.png")
	if err != nil {
		t.Fatalf("create form file: %v", err)
	}
	_, _ = part.Write([]byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR"))
	_ = w.Close()

	req := httptest.NewRequest(http.MethodPost, "/api/v1/verify", body)
	req.Header.Set("Content-Type", w.FormDataContentType())
	req.Header.Set("X-Session-Id", id)
	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, req)
	if resp.Code != http.StatusAccepted {
		t.Fatalf("expected 202, got %d %s", resp.Code, resp.Body.String())
	}
	svc.Wait()

	snap, _ := svc.Snapshot(id)
	if snap.Status != session.StatusComplete {
		t.Fatalf("expected COMPLETE, got %+v", snap)
	}
	if p.called("image_extract") != 1 {
		t.Fatalf("expected one image read")
	}
}

func TestModeAndBackEndpoints(t *testing.T) {
	svc, _ := newTestService(newStubProvider())
	r := newTestRouter(svc)
	id := svc.CreateSession().ID

	resp := doJSON(t, r, http.MethodPut, "/api/v1/session/mode", id, map[string]string{"mode": "VERIFY_JOB"})
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.Code)
	}
	resp = doJSON(t, r, http.MethodPut, "/api/v1/session/mode", id, map[string]string{"mode": "SOMETHING"})
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.Code)
	}
	resp = doJSON(t, r, http.MethodPost, "/api/v1/session/back", id, nil)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.Code)
	}
	resp = doJSON(t, r, http.MethodPut, "/api/v1/session/location", id, map[string]float64{"latitude": 10.7})
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 without longitude, got %d", resp.Code)
	}
	resp = doJSON(t, r, http.MethodPut, "/api/v1/session/location", id, map[string]float64{"latitude": 10.7, "longitude": 106.6})
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.Code)
	}
}

func TestMatchCVEndpoint(t *testing.T) {
	svc, _ := newTestService(newStubProvider())
	r := newTestRouter(svc)
	id := svc.CreateSession().ID

	resp := doJSON(t, r, http.MethodPost, "/api/v1/cv/match", id, map[string]string{"cvText": "Sinh viên năm 2 ngành du lịch"})
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 without job, got %d", resp.Code)
	}

	body := &bytes.Buffer{}
	w := multipart.NewWriter(body)
	_ = w.WriteField("jobDescription", "Tuyển hướng dẫn viên du lịch part-time")
	part, _ := w.CreateFormFile("cv", "cv.txt")
	_, _ = part.Write([]byte("Sinh viên năm 2 ngành du lịch, tiếng Anh tốt"))
	_ = w.Close()

	req := httptest.NewRequest(http.MethodPost, "/api/v1/cv/match", body)
	req.Header.Set("Content-Type", w.FormDataContentType())
	req.Header.Set("X-Session-Id", id)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d %s", rec.Code, rec.Body.String())
	}
	var out map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &out); err != nil || out["matchScore"].(float64) != 72 {
		t.Fatalf("unexpected body %s", rec.Body.String())
	}
}
