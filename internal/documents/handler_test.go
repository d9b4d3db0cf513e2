package documents_test

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"

	"aidocs-backend/internal/bootstrap"
	"aidocs-backend/internal/documents"
	"aidocs-backend/internal/shared/config"
)

func newTestRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	cfg := config.Config{
		Port:            "0",
		Env:             "dev",
		CORSAllowOrigin: []string{"http://localhost:5173"},
		LocalStoreDir:   t.TempDir(),
	}

	app, err := bootstrap.Build(cfg)
	if err != nil {
		t.Fatalf("bootstrap build: %v", err)
	}
	return app.Router
}

func uploadDocument(t *testing.T, router *gin.Engine, fileName, content string) string {
	t.Helper()

	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	fileWriter, err := writer.CreateFormFile("document", fileName)
	if err != nil {
		t.Fatalf("create form file: %v", err)
	}
	if _, err := fileWriter.Write([]byte(content)); err != nil {
		t.Fatalf("write file: %v", err)
	}
	if err := writer.Close(); err != nil {
		t.Fatalf("close writer: %v", err)
	}

	req := httptest.NewRequest(http.MethodPost, "/api/v1/documents/upload", body)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	addGuestHeader(req)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	if resp.Code != http.StatusCreated {
		t.Fatalf("expected status 201, got %d: %s", resp.Code, resp.Body.String())
	}

	var created struct {
		ID string `json:"id"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&created); err != nil {
		t.Fatalf("decode create response: %v", err)
	}
	if created.ID == "" {
		t.Fatalf("expected id, got empty")
	}
	return created.ID
}

func TestDocumentsUploadGetAndList(t *testing.T) {
	router := newTestRouter(t)

	id := uploadDocument(t, router, "hello.txt", "hello world")

	reqGet := httptest.NewRequest(http.MethodGet, "/api/v1/documents/"+id, nil)
	addGuestHeader(reqGet)
	respGet := httptest.NewRecorder()
	router.ServeHTTP(respGet, reqGet)

	if respGet.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", respGet.Code)
	}

	var doc struct {
		ID      string `json:"id"`
		Content string `json:"content"`
		Title   string `json:"title"`
	}
	if err := json.NewDecoder(respGet.Body).Decode(&doc); err != nil {
		t.Fatalf("decode document: %v", err)
	}
	if doc.Content != "hello world" {
		t.Fatalf("expected extracted content, got %q", doc.Content)
	}
	if doc.Title != "hello.txt" {
		t.Fatalf("expected title hello.txt, got %q", doc.Title)
	}

	reqList := httptest.NewRequest(http.MethodGet, "/api/v1/documents", nil)
	addGuestHeader(reqList)
	respList := httptest.NewRecorder()
	router.ServeHTTP(respList, reqList)

	if respList.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", respList.Code)
	}

	var list struct {
		Documents []struct {
			ID      string `json:"id"`
			Content string `json:"content"`
		} `json:"documents"`
		Pagination struct {
			Total int `json:"total"`
			Page  int `json:"page"`
			Pages int `json:"pages"`
		} `json:"pagination"`
	}
	if err := json.NewDecoder(respList.Body).Decode(&list); err != nil {
		t.Fatalf("decode list: %v", err)
	}
	if list.Pagination.Total != 1 || list.Pagination.Pages != 1 {
		t.Fatalf("unexpected pagination: %+v", list.Pagination)
	}
	if len(list.Documents) != 1 || list.Documents[0].ID != id {
		t.Fatalf("unexpected documents: %+v", list.Documents)
	}
	if list.Documents[0].Content != "" {
		t.Fatalf("list items must not carry content")
	}
}

func TestDocumentsPatchAndDelete(t *testing.T) {
	router := newTestRouter(t)

	id := uploadDocument(t, router, "notes.txt", "some notes")

	patch := strings.NewReader(`{"title":"Renamed","isFavorite":true,"tags":["a","b"]}`)
	reqPatch := httptest.NewRequest(http.MethodPatch, "/api/v1/documents/"+id, patch)
	reqPatch.Header.Set("Content-Type", "application/json")
	addGuestHeader(reqPatch)
	respPatch := httptest.NewRecorder()
	router.ServeHTTP(respPatch, reqPatch)

	if respPatch.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", respPatch.Code, respPatch.Body.String())
	}

	var updated struct {
		Title      string   `json:"title"`
		IsFavorite bool     `json:"isFavorite"`
		Tags       []string `json:"tags"`
	}
	if err := json.NewDecoder(respPatch.Body).Decode(&updated); err != nil {
		t.Fatalf("decode patch response: %v", err)
	}
	if updated.Title != "Renamed" || !updated.IsFavorite || len(updated.Tags) != 2 {
		t.Fatalf("unexpected update result: %+v", updated)
	}

	reqDel := httptest.NewRequest(http.MethodDelete, "/api/v1/documents/"+id, nil)
	addGuestHeader(reqDel)
	respDel := httptest.NewRecorder()
	router.ServeHTTP(respDel, reqDel)

	if respDel.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", respDel.Code)
	}

	reqGet := httptest.NewRequest(http.MethodGet, "/api/v1/documents/"+id, nil)
	addGuestHeader(reqGet)
	respGet := httptest.NewRecorder()
	router.ServeHTTP(respGet, reqGet)

	if respGet.Code != http.StatusNotFound {
		t.Fatalf("expected 404 after delete, got %d", respGet.Code)
	}
}

func TestDocumentsUploadRejectsUnknownExtension(t *testing.T) {
	router := newTestRouter(t)

	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	fileWriter, err := writer.CreateFormFile("document", "script.sh")
	if err != nil {
		t.Fatalf("create form file: %v", err)
	}
	if _, err := fileWriter.Write([]byte("echo hi")); err != nil {
		t.Fatalf("write file: %v", err)
	}
	if err := writer.Close(); err != nil {
		t.Fatalf("close writer: %v", err)
	}

	req := httptest.NewRequest(http.MethodPost, "/api/v1/documents/upload", body)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	addGuestHeader(req)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected status 400, got %d", resp.Code)
	}
}

func TestDocumentsUploadRejectsOversizeWith400(t *testing.T) {
	router := newTestRouter(t)

	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	fileWriter, err := writer.CreateFormFile("document", "huge.txt")
	if err != nil {
		t.Fatalf("create form file: %v", err)
	}
	if _, err := fileWriter.Write(bytes.Repeat([]byte("x"), documents.MaxUploadBytes+1)); err != nil {
		t.Fatalf("write file: %v", err)
	}
	if err := writer.Close(); err != nil {
		t.Fatalf("close writer: %v", err)
	}

	req := httptest.NewRequest(http.MethodPost, "/api/v1/documents/upload", body)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	addGuestHeader(req)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected status 400 for oversize upload, got %d", resp.Code)
	}
}

func TestDocumentsRequireIdentity(t *testing.T) {
	router := newTestRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/documents", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected status 401, got %d", resp.Code)
	}
}

func addGuestHeader(req *http.Request) {
	req.Header.Set("X-Guest-Id", "test-guest")
}
