package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"artifact-version-service/internal/adapters/secondary/memory"
	"artifact-version-service/internal/core/domain"
	"artifact-version-service/internal/core/ports/output"
	"artifact-version-service/internal/core/services"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupRouter() *gin.Engine {
	store := memory.NewStore()
	return setupRouterWith(store, store.Records())
}

func setupRouterWith(store *memory.Store, records ports.VersionRecordRepository) *gin.Engine {
	gin.SetMode(gin.TestMode)
	reg := services.NewRegistry(store.Versions(), store.Entities(), records, nil)

	h := New(reg)
	r := gin.New()
	api := r.Group("/api/v1")
	h.RegisterRoutes(api)
	return r
}

func doRequest(r *gin.Engine, method, path string, projectID uuid.UUID, body any) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req, _ := http.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if projectID != uuid.Nil {
		req.Header.Set("Project-ID", projectID.String())
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func createVersion(t *testing.T, r *gin.Engine, projectID uuid.UUID, body map[string]any) string {
	w := doRequest(r, "POST", "/api/v1/versions", projectID, body)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var resp map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp["id"].(string)
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	var resp map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp), w.Body.String())
	return resp
}

func TestCreateVersion(t *testing.T) {
	r := setupRouter()
	projectID := uuid.New()

	w := doRequest(r, "POST", "/api/v1/versions", projectID, map[string]any{"major": 1, "minor": 2})
	assert.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, "1.2.0", decode(t, w)["label"])

	w = doRequest(r, "POST", "/api/v1/versions", projectID, map[string]any{"bump": "minor"})
	assert.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, "1.3.0", decode(t, w)["label"])

	w = doRequest(r, "POST", "/api/v1/versions", projectID, map[string]any{"major": 1, "minor": 2})
	assert.Equal(t, http.StatusConflict, w.Code)

	w = doRequest(r, "POST", "/api/v1/versions", projectID, map[string]any{"bump": "patch"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = doRequest(r, "POST", "/api/v1/versions", projectID, map[string]any{"bump": "major", "major": 3})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestListVersions(t *testing.T) {
	r := setupRouter()
	projectID := uuid.New()

	createVersion(t, r, projectID, map[string]any{"major": 2})
	createVersion(t, r, projectID, map[string]any{"major": 1})
	createVersion(t, r, uuid.New(), map[string]any{"major": 1})

	w := doRequest(r, "GET", "/api/v1/versions", projectID, nil)
	assert.Equal(t, http.StatusOK, w.Code)

	resp := decode(t, w)
	assert.Equal(t, float64(2), resp["total"])
	items := resp["items"].([]any)
	assert.Equal(t, "1.0.0", items[0].(map[string]any)["label"])
	assert.Equal(t, "2.0.0", items[1].(map[string]any)["label"])
}

func TestListVersions_MissingProjectID(t *testing.T) {
	r := setupRouter()

	w := doRequest(r, "GET", "/api/v1/versions", uuid.Nil, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestGetVersion_OtherProject(t *testing.T) {
	r := setupRouter()
	id := createVersion(t, r, uuid.New(), map[string]any{"major": 1})

	w := doRequest(r, "GET", "/api/v1/versions/"+id, uuid.New(), nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestCommit_ArtifactsAndState(t *testing.T) {
	r := setupRouter()
	projectID := uuid.New()
	v1 := createVersion(t, r, projectID, map[string]any{"major": 1})

	w := doRequest(r, "POST", "/api/v1/versions/"+v1+"/commits/artifact", projectID, map[string]any{
		"items": []map[string]any{
			{"content": map[string]any{"name": "RE-1", "type": "requirement", "body": "alpha"}},
			{"content": map[string]any{"name": "RE-2", "type": "requirement", "body": "beta"}},
			{"name": "RE-404", "modification_type": "REMOVED"},
		},
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	resp := decode(t, w)
	summary := resp["summary"].(map[string]any)
	assert.Len(t, summary["added"], 2)
	assert.Equal(t, float64(1), summary["failed"])

	items := resp["items"].([]any)
	assert.Equal(t, "APPLIED", items[0].(map[string]any)["outcome"])
	assert.Equal(t, "ADDED", items[0].(map[string]any)["modification_type"])
	assert.Equal(t, "FAILED", items[2].(map[string]any)["outcome"])
	assert.NotEmpty(t, items[2].(map[string]any)["error"])

	w = doRequest(r, "GET", "/api/v1/versions/"+v1+"/entities/artifact", projectID, nil)
	require.Equal(t, http.StatusOK, w.Code)
	entities := decode(t, w)["entities"].(map[string]any)
	assert.Len(t, entities, 2)
}

// racingRecords lets the n-th append lose to a writer that stored a record
// for the same entity and version after the commit was planned.
type racingRecords struct {
	ports.VersionRecordRepository
	appends int
	loseAt  int
}

func (r *racingRecords) Append(ctx context.Context, record *domain.VersionRecord) error {
	r.appends++
	if r.appends == r.loseAt {
		return fmt.Errorf("record %s: %w", record.BaseEntityID, domain.ErrDuplicateVersionRecord)
	}
	return r.VersionRecordRepository.Append(ctx, record)
}

func TestCommit_AbortedReportsAppliedItems(t *testing.T) {
	store := memory.NewStore()
	r := setupRouterWith(store, &racingRecords{VersionRecordRepository: store.Records(), loseAt: 2})
	projectID := uuid.New()
	v1 := createVersion(t, r, projectID, map[string]any{"major": 1})

	w := doRequest(r, "POST", "/api/v1/versions/"+v1+"/commits/artifact", projectID, map[string]any{
		"items": []map[string]any{
			{"content": map[string]any{"name": "RE-1", "type": "requirement", "body": "alpha"}},
			{"content": map[string]any{"name": "RE-2", "type": "requirement", "body": "beta"}},
		},
	})
	require.Equal(t, http.StatusConflict, w.Code, w.Body.String())

	resp := decode(t, w)
	assert.Contains(t, resp["error"], domain.ErrDuplicateVersionRecord.Error())
	items := resp["items"].([]any)
	require.Len(t, items, 1)
	assert.Equal(t, "RE-1", items[0].(map[string]any)["name"])
	assert.Equal(t, "APPLIED", items[0].(map[string]any)["outcome"])

	w = doRequest(r, "GET", "/api/v1/versions/"+v1+"/entities/artifact", projectID, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decode(t, w)["entities"], 1)
}

func TestCommit_InvalidRequests(t *testing.T) {
	r := setupRouter()
	projectID := uuid.New()
	v1 := createVersion(t, r, projectID, map[string]any{"major": 1})
	body := map[string]any{"items": []map[string]any{}}

	w := doRequest(r, "POST", "/api/v1/versions/"+v1+"/commits/widget", projectID, body)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = doRequest(r, "POST", "/api/v1/versions/"+v1+"/commits/artifact", projectID, map[string]any{"mode": "partial", "items": []map[string]any{}})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = doRequest(r, "POST", "/api/v1/versions/"+uuid.NewString()+"/commits/artifact", projectID, body)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = doRequest(r, "POST", "/api/v1/versions/"+v1+"/commits/artifact", uuid.New(), body)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = doRequest(r, "POST", "/api/v1/versions/"+v1+"/commits/artifact", projectID, map[string]any{
		"items": []map[string]any{{"content": "not an object"}},
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestHistoryDeltaAndDiff(t *testing.T) {
	r := setupRouter()
	projectID := uuid.New()
	v1 := createVersion(t, r, projectID, map[string]any{"major": 1})
	v2 := createVersion(t, r, projectID, map[string]any{"major": 2})

	commit := func(version, body string) map[string]any {
		w := doRequest(r, "POST", "/api/v1/versions/"+version+"/commits/artifact", projectID, map[string]any{
			"items": []map[string]any{{"content": map[string]any{"name": "RE-10", "body": body}}},
		})
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
		return decode(t, w)
	}
	first := commit(v1, "alpha")
	commit(v2, "beta")
	entityID := first["items"].([]any)[0].(map[string]any)["base_entity_id"].(string)

	w := doRequest(r, "GET", "/api/v1/entities/artifact/"+entityID+"/history", projectID, nil)
	require.Equal(t, http.StatusOK, w.Code)
	records := decode(t, w)["records"].([]any)
	require.Len(t, records, 2)
	assert.Equal(t, "ADDED", records[0].(map[string]any)["modification_type"])
	assert.Equal(t, "MODIFIED", records[1].(map[string]any)["modification_type"])

	w = doRequest(r, "GET", "/api/v1/entities/trace_link/"+entityID+"/history", projectID, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = doRequest(r, "GET", "/api/v1/delta?baseline="+v1+"&target="+v2, projectID, nil)
	require.Equal(t, http.StatusOK, w.Code)
	artifacts := decode(t, w)["artifacts"].(map[string]any)
	assert.Equal(t, []any{entityID}, artifacts["modified"])
	assert.Empty(t, artifacts["added"])

	w = doRequest(r, "GET", "/api/v1/delta?baseline="+v1, projectID, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = doRequest(r, "GET", "/api/v1/entities/artifact/"+entityID+"/diff?baseline="+v1+"&target="+v2, projectID, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "-body: \"alpha\"\n+body: \"beta\"\n")
}
