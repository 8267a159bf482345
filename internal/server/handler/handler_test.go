package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"forge/internal/common"
	"forge/internal/server/dao"
	"forge/internal/server/middleware"
	"forge/internal/server/model"
	"forge/pkg/api"
	"forge/pkg/pipeline"
	"forge/pkg/taskrpc"
)

type fakeRunner struct {
	mu   sync.Mutex
	reqs []*taskrpc.ExecutePipelineRequest
	err  error
}

func (f *fakeRunner) ExecutePipeline(req *taskrpc.ExecutePipelineRequest) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.reqs = append(f.reqs, req)
	return nil
}

func setupServer(t *testing.T) (*gin.Engine, *fakeRunner) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	t.Setenv("WEBHOOK_SECRET", "shared_secret")
	common.InitConf()

	require.NoError(t, dao.InitSQLite(filepath.Join(t.TempDir(), "forge.db")))

	runner := &fakeRunner{}
	SetRunner(runner)
	SetScheduler(nil)

	return NewRouter(), runner
}

func authHeader(t *testing.T, role string) string {
	t.Helper()
	token, err := middleware.GenerateJWT(role)
	require.NoError(t, err)
	return "Bearer " + token
}

func doRequest(r *gin.Engine, method, path, auth string, body []byte) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, bytes.NewReader(body))
	if auth != "" {
		req.Header.Set("Authorization", auth)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func parseResponse(t *testing.T, w *httptest.ResponseRecorder) (int, json.RawMessage) {
	t.Helper()
	var resp struct {
		Code    int             `json:"code"`
		Message string          `json:"message"`
		Data    json.RawMessage `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp.Code, resp.Data
}

func matrixYAML(t *testing.T) []byte {
	t.Helper()
	config, err := pipeline.BuildMatrix().Marshal()
	require.NoError(t, err)
	return []byte(config)
}

func TestCreatePipeline(t *testing.T) {
	r, _ := setupServer(t)
	auth := authHeader(t, model.RoleExecutor)

	w := doRequest(r, http.MethodPost, "/create", auth, matrixYAML(t))
	code, _ := parseResponse(t, w)
	assert.Equal(t, common.SuccessCode, code)

	// same name again conflicts
	w = doRequest(r, http.MethodPost, "/create", auth, matrixYAML(t))
	code, _ = parseResponse(t, w)
	assert.Equal(t, common.PipelineExists, code)
}

func TestCreatePipelineRejectsInvalidYAML(t *testing.T) {
	r, _ := setupServer(t)
	auth := authHeader(t, model.RoleExecutor)

	w := doRequest(r, http.MethodPost, "/create", auth, []byte("tasks: ["))
	code, _ := parseResponse(t, w)
	assert.Equal(t, common.YamlInvalid, code)

	// structurally valid yaml that fails validation is also rejected
	w = doRequest(r, http.MethodPost, "/create", auth, []byte("name: x\ntasks: []"))
	code, _ = parseResponse(t, w)
	assert.Equal(t, common.YamlInvalid, code)
}

func TestUpdatePipelineBumpsVersion(t *testing.T) {
	r, _ := setupServer(t)
	auth := authHeader(t, model.RoleExecutor)

	w := doRequest(r, http.MethodPost, "/create", auth, matrixYAML(t))
	code, _ := parseResponse(t, w)
	require.Equal(t, common.SuccessCode, code)

	w = doRequest(r, http.MethodPost, "/update/freebsd-build-matrix", auth, matrixYAML(t))
	code, _ = parseResponse(t, w)
	require.Equal(t, common.SuccessCode, code)

	w = doRequest(r, http.MethodGet, "/pipeline", auth, nil)
	code, data := parseResponse(t, w)
	require.Equal(t, common.SuccessCode, code)

	var briefs []api.PipelineBrief
	require.NoError(t, json.Unmarshal(data, &briefs))
	require.Len(t, briefs, 1)
	assert.Equal(t, 2, briefs[0].Version)
}

func TestUpdateUnknownPipeline(t *testing.T) {
	r, _ := setupServer(t)
	auth := authHeader(t, model.RoleExecutor)

	w := doRequest(r, http.MethodPost, "/update/ghost", auth, matrixYAML(t))
	code, _ := parseResponse(t, w)
	assert.Equal(t, common.PipelineNotExists, code)
}

func TestUpdatePipelineRejectsRename(t *testing.T) {
	r, _ := setupServer(t)
	auth := authHeader(t, model.RoleExecutor)

	w := doRequest(r, http.MethodPost, "/create", auth, matrixYAML(t))
	code, _ := parseResponse(t, w)
	require.Equal(t, common.SuccessCode, code)

	// an update whose yaml carries a different name would fork the
	// version history under the new name
	renamed := pipeline.BuildMatrix()
	renamed.Name = "totally-different"
	config, err := renamed.Marshal()
	require.NoError(t, err)

	w = doRequest(r, http.MethodPost, "/update/freebsd-build-matrix", auth, []byte(config))
	code, _ = parseResponse(t, w)
	assert.Equal(t, common.RequestInvalid, code)

	// no orphan pipeline was created
	w = doRequest(r, http.MethodGet, "/pipeline", auth, nil)
	code, data := parseResponse(t, w)
	require.Equal(t, common.SuccessCode, code)
	var briefs []api.PipelineBrief
	require.NoError(t, json.Unmarshal(data, &briefs))
	require.Len(t, briefs, 1)
	assert.Equal(t, "freebsd-build-matrix", briefs[0].Name)
	assert.Equal(t, 1, briefs[0].Version)
}

func TestTriggerPipeline(t *testing.T) {
	r, runner := setupServer(t)
	auth := authHeader(t, model.RoleExecutor)

	w := doRequest(r, http.MethodPost, "/create", auth, matrixYAML(t))
	code, _ := parseResponse(t, w)
	require.Equal(t, common.SuccessCode, code)

	w = doRequest(r, http.MethodGet, "/pipeline", auth, nil)
	_, data := parseResponse(t, w)
	var briefs []api.PipelineBrief
	require.NoError(t, json.Unmarshal(data, &briefs))
	require.Len(t, briefs, 1)

	body, _ := json.Marshal(api.TriggerRequest{PipelineID: int(briefs[0].ID)})
	w = doRequest(r, http.MethodPost, "/trigger", auth, body)
	code, data = parseResponse(t, w)
	require.Equal(t, common.SuccessCode, code)

	var triggerResp api.TriggerResponse
	require.NoError(t, json.Unmarshal(data, &triggerResp))
	assert.NotEmpty(t, triggerResp.ExecutionUUID)

	// both matrix tasks reached the runner
	runner.mu.Lock()
	require.Len(t, runner.reqs, 1)
	assert.Len(t, runner.reqs[0].Tasks, 2)
	runner.mu.Unlock()

	// the execution is recorded as running
	exec, err := dao.NewPipelineExecDao().GetByUUID(context.Background(), triggerResp.ExecutionUUID)
	require.NoError(t, err)
	assert.Equal(t, pipeline.StatusRunning, exec.Status)
	assert.Equal(t, model.TriggerManual, exec.TriggerType)
}

func TestTriggerRunnerDown(t *testing.T) {
	r, runner := setupServer(t)
	runner.err = fmt.Errorf("connection refused")
	auth := authHeader(t, model.RoleExecutor)

	w := doRequest(r, http.MethodPost, "/create", auth, matrixYAML(t))
	code, _ := parseResponse(t, w)
	require.Equal(t, common.SuccessCode, code)

	w = doRequest(r, http.MethodGet, "/pipeline", auth, nil)
	_, data := parseResponse(t, w)
	var briefs []api.PipelineBrief
	require.NoError(t, json.Unmarshal(data, &briefs))

	body, _ := json.Marshal(api.TriggerRequest{PipelineID: int(briefs[0].ID)})
	w = doRequest(r, http.MethodPost, "/trigger", auth, body)
	code, _ = parseResponse(t, w)
	assert.Equal(t, common.PipelineStartFail, code)

	// the failed start is recorded
	recent, err := dao.NewPipelineExecDao().ListRecent(context.Background(), 10)
	require.NoError(t, err)
	require.Len(t, recent, 1)
	assert.Equal(t, pipeline.StatusFailed, recent[0].Status)
}

func TestAuthRequired(t *testing.T) {
	r, _ := setupServer(t)

	w := doRequest(r, http.MethodGet, "/pipeline", "", nil)
	code, _ := parseResponse(t, w)
	assert.Equal(t, common.TokenInvalid, code)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	// viewers cannot create pipelines
	w = doRequest(r, http.MethodPost, "/create", authHeader(t, model.RoleViewer), matrixYAML(t))
	code, _ = parseResponse(t, w)
	assert.Equal(t, common.TokenInvalid, code)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	// but can read
	w = doRequest(r, http.MethodGet, "/pipeline", authHeader(t, model.RoleViewer), nil)
	code, _ = parseResponse(t, w)
	assert.Equal(t, common.SuccessCode, code)
}

func TestUserLogin(t *testing.T) {
	r, _ := setupServer(t)

	require.NoError(t, dao.NewUserDAO().Create(context.Background(), &model.User{
		Username: "yang",
		Password: model.HashPassword("12345"),
		Role:     model.RoleExecutor,
	}))

	body, _ := json.Marshal(api.LoginRequest{Username: "yang", Password: "12345"})
	w := doRequest(r, http.MethodPost, "/login", "", body)
	code, _ := parseResponse(t, w)
	assert.Equal(t, common.SuccessCode, code)
	token, err := common.GetAuthorizationToken(w.Header().Get("Authorization"))
	require.NoError(t, err)
	assert.NotEmpty(t, token)

	body, _ = json.Marshal(api.LoginRequest{Username: "yang", Password: "wrong"})
	w = doRequest(r, http.MethodPost, "/login", "", body)
	code, _ = parseResponse(t, w)
	assert.Equal(t, common.PasswordErr, code)

	body, _ = json.Marshal(api.LoginRequest{Username: "nobody", Password: "x"})
	w = doRequest(r, http.MethodPost, "/login", "", body)
	code, _ = parseResponse(t, w)
	assert.Equal(t, common.UserNotExists, code)
}

func TestWebhookTrigger(t *testing.T) {
	r, runner := setupServer(t)
	auth := authHeader(t, model.RoleExecutor)

	spec := pipeline.BuildMatrix()
	spec.Triggers = []pipeline.Trigger{{Webhook: "/webhook"}}
	config, err := spec.Marshal()
	require.NoError(t, err)

	w := doRequest(r, http.MethodPost, "/create", auth, []byte(config))
	code, _ := parseResponse(t, w)
	require.Equal(t, common.SuccessCode, code)

	payload, _ := json.Marshal(WebhookPayload{Name: spec.Name})
	timestamp := fmt.Sprintf("%d", time.Now().Unix())

	req := httptest.NewRequest(http.MethodPost, "/webhook", bytes.NewReader(payload))
	req.Header.Set("X-Webhook-Timestamp", timestamp)
	req.Header.Set("X-Webhook-Signature", Signature(timestamp, payload, "shared_secret"))
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	code, _ = parseResponse(t, rec)
	assert.Equal(t, common.SuccessCode, code)

	runner.mu.Lock()
	assert.Len(t, runner.reqs, 1)
	runner.mu.Unlock()
}

func TestWebhookRejectsBadSignature(t *testing.T) {
	r, runner := setupServer(t)
	auth := authHeader(t, model.RoleExecutor)

	spec := pipeline.BuildMatrix()
	spec.Triggers = []pipeline.Trigger{{Webhook: "/webhook"}}
	config, err := spec.Marshal()
	require.NoError(t, err)
	w := doRequest(r, http.MethodPost, "/create", auth, []byte(config))
	code, _ := parseResponse(t, w)
	require.Equal(t, common.SuccessCode, code)

	payload, _ := json.Marshal(WebhookPayload{Name: spec.Name})
	timestamp := fmt.Sprintf("%d", time.Now().Unix())

	req := httptest.NewRequest(http.MethodPost, "/webhook", bytes.NewReader(payload))
	req.Header.Set("X-Webhook-Timestamp", timestamp)
	req.Header.Set("X-Webhook-Signature", "bogus")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	code, _ = parseResponse(t, rec)
	assert.Equal(t, common.RequestInvalid, code)

	runner.mu.Lock()
	assert.Empty(t, runner.reqs)
	runner.mu.Unlock()
}

func TestWebhookRejectsUndeclaredPipeline(t *testing.T) {
	r, _ := setupServer(t)
	auth := authHeader(t, model.RoleExecutor)

	// no webhook trigger declared
	w := doRequest(r, http.MethodPost, "/create", auth, matrixYAML(t))
	code, _ := parseResponse(t, w)
	require.Equal(t, common.SuccessCode, code)

	payload, _ := json.Marshal(WebhookPayload{Name: "freebsd-build-matrix"})
	timestamp := fmt.Sprintf("%d", time.Now().Unix())

	req := httptest.NewRequest(http.MethodPost, "/webhook", bytes.NewReader(payload))
	req.Header.Set("X-Webhook-Timestamp", timestamp)
	req.Header.Set("X-Webhook-Signature", Signature(timestamp, payload, "shared_secret"))
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	code, _ = parseResponse(t, rec)
	assert.Equal(t, common.WebhookInvalid, code)
}

func TestWebhookAcceptsNonCanonicalBody(t *testing.T) {
	r, runner := setupServer(t)
	auth := authHeader(t, model.RoleExecutor)

	spec := pipeline.BuildMatrix()
	spec.Triggers = []pipeline.Trigger{{Webhook: "/webhook"}}
	config, err := spec.Marshal()
	require.NoError(t, err)
	w := doRequest(r, http.MethodPost, "/create", auth, []byte(config))
	code, _ := parseResponse(t, w)
	require.Equal(t, common.SuccessCode, code)

	// the signature covers the body bytes as sent, so extra whitespace
	// and key order must not matter
	payload := []byte(`{ "name": "freebsd-build-matrix" }`)
	timestamp := fmt.Sprintf("%d", time.Now().Unix())

	req := httptest.NewRequest(http.MethodPost, "/webhook", bytes.NewReader(payload))
	req.Header.Set("X-Webhook-Timestamp", timestamp)
	req.Header.Set("X-Webhook-Signature", Signature(timestamp, payload, "shared_secret"))
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	code, _ = parseResponse(t, rec)
	assert.Equal(t, common.SuccessCode, code)

	runner.mu.Lock()
	assert.Len(t, runner.reqs, 1)
	runner.mu.Unlock()
}

func TestWebhookRejectsWhenSecretUnset(t *testing.T) {
	r, runner := setupServer(t)
	auth := authHeader(t, model.RoleExecutor)

	spec := pipeline.BuildMatrix()
	spec.Triggers = []pipeline.Trigger{{Webhook: "/webhook"}}
	config, err := spec.Marshal()
	require.NoError(t, err)
	w := doRequest(r, http.MethodPost, "/create", auth, []byte(config))
	code, _ := parseResponse(t, w)
	require.Equal(t, common.SuccessCode, code)

	t.Setenv("WEBHOOK_SECRET", "")
	common.InitConf()

	// without a configured secret every signature would verify against
	// the empty key, so the endpoint must fail closed
	payload, _ := json.Marshal(WebhookPayload{Name: spec.Name})
	timestamp := fmt.Sprintf("%d", time.Now().Unix())

	req := httptest.NewRequest(http.MethodPost, "/webhook", bytes.NewReader(payload))
	req.Header.Set("X-Webhook-Timestamp", timestamp)
	req.Header.Set("X-Webhook-Signature", Signature(timestamp, payload, ""))
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	code, _ = parseResponse(t, rec)
	assert.Equal(t, common.WebhookInvalid, code)

	runner.mu.Lock()
	assert.Empty(t, runner.reqs)
	runner.mu.Unlock()
}

func TestExecutionHistory(t *testing.T) {
	r, _ := setupServer(t)
	auth := authHeader(t, model.RoleExecutor)

	w := doRequest(r, http.MethodPost, "/create", auth, matrixYAML(t))
	code, _ := parseResponse(t, w)
	require.Equal(t, common.SuccessCode, code)

	w = doRequest(r, http.MethodGet, "/pipeline", auth, nil)
	_, data := parseResponse(t, w)
	var briefs []api.PipelineBrief
	require.NoError(t, json.Unmarshal(data, &briefs))

	body, _ := json.Marshal(api.TriggerRequest{PipelineID: int(briefs[0].ID)})
	w = doRequest(r, http.MethodPost, "/trigger", auth, body)
	_, data = parseResponse(t, w)
	var triggerResp api.TriggerResponse
	require.NoError(t, json.Unmarshal(data, &triggerResp))

	// simulate the runner's status pushes
	taskDao := dao.NewTaskExecDao()
	require.NoError(t, taskDao.Upsert(context.Background(), &model.TaskExecution{
		ExecutionUUID: triggerResp.ExecutionUUID,
		TaskName:      "rust 1.54 on freebsd 13",
		Status:        pipeline.StatusSuccess,
		Stdout:        "ok",
	}))
	require.NoError(t, dao.NewPipelineExecDao().UpdateStatus(
		context.Background(), triggerResp.ExecutionUUID, pipeline.StatusSuccess))

	w = doRequest(r, http.MethodGet, "/history", auth, nil)
	code, data = parseResponse(t, w)
	require.Equal(t, common.SuccessCode, code)
	var history []api.ExecutionHistoryBrief
	require.NoError(t, json.Unmarshal(data, &history))
	require.Len(t, history, 1)
	assert.Equal(t, pipeline.StatusSuccess, history[0].Status)

	w = doRequest(r, http.MethodGet, fmt.Sprintf("/history/%d", history[0].ID), auth, nil)
	code, data = parseResponse(t, w)
	require.Equal(t, common.SuccessCode, code)
	var detail api.ExecutionHistoryDetail
	require.NoError(t, json.Unmarshal(data, &detail))
	require.Len(t, detail.Tasks, 1)
	assert.Equal(t, "ok", detail.Tasks[0].Stdout)
	assert.NotEmpty(t, detail.Config)
}
