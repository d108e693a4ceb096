package v1

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/xuri/excelize/v2"

	"assetreport/internal/config"
	"assetreport/internal/derived"
	"assetreport/internal/importer"
	"assetreport/internal/logging"
	"assetreport/internal/store"
)

type testEnv struct {
	router    *gin.Engine
	store     *store.Store
	uploadDir string
}

func newTestEnv(t *testing.T, opts ...func(d *Deps)) *testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	dir := t.TempDir()
	st, err := store.New(config.DatabaseConfig{
		Driver:      "sqlite",
		DSN:         filepath.Join(dir, "assetreport.db"),
		AutoMigrate: true,
	})
	if err != nil {
		t.Fatalf("init store: %v", err)
	}
	t.Cleanup(func() { _ = st.Close() })

	logger := logging.Discard()
	rebuilder := derived.NewRebuilder(st, config.SyncConfig{Enabled: true, TimeoutSeconds: 30}, logger)
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		_ = rebuilder.Wait(ctx)
	})

	uploadDir := filepath.Join(dir, "uploads")
	if err := os.MkdirAll(uploadDir, 0755); err != nil {
		t.Fatalf("mkdir uploads: %v", err)
	}

	deps := Deps{
		Store:     st,
		Importer:  importer.NewCoordinator(st, importer.WithLogger(logger), importer.WithOnCommit(rebuilder.Trigger)),
		Rebuilder: rebuilder,
		UploadDir: uploadDir,
		Logger:    logger,
	}
	for _, opt := range opts {
		opt(&deps)
	}
	h := NewHandler(deps)
	r := gin.New()
	h.RegisterRoutes(r.Group("/api"))

	return &testEnv{router: r, store: st, uploadDir: uploadDir}
}

var listedHeader = []any{"股票代码", "股票简称", "公司名称", "所属行业", "报告期", "披露日期", "入表科目", "入表金额（万元）", "备注"}

func xlsxBytes(t *testing.T, rows ...[]any) []byte {
	t.Helper()

	f := excelize.NewFile()
	defer f.Close()
	sheet := f.GetSheetName(0)
	for i, r := range rows {
		cell, _ := excelize.CoordinatesToCellName(1, i+1)
		r := r
		if err := f.SetSheetRow(sheet, cell, &r); err != nil {
			t.Fatalf("SetSheetRow: %v", err)
		}
	}
	buf, err := f.WriteToBuffer()
	if err != nil {
		t.Fatalf("WriteToBuffer: %v", err)
	}
	return buf.Bytes()
}

func (e *testEnv) upload(t *testing.T, path string, content []byte) *httptest.ResponseRecorder {
	t.Helper()

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	fw, err := mw.CreateFormFile("file", "上市公司.xlsx")
	if err != nil {
		t.Fatalf("CreateFormFile: %v", err)
	}
	if _, err := fw.Write(content); err != nil {
		t.Fatalf("write form file: %v", err)
	}
	_ = mw.Close()

	req := httptest.NewRequest(http.MethodPost, path, &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

func (e *testEnv) do(t *testing.T, method, path string, body io.Reader) *httptest.ResponseRecorder {
	t.Helper()

	req := httptest.NewRequest(method, path, body)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()

	var out map[string]any
	if err := json.Unmarshal(w.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode %s: %v", w.Body.String(), err)
	}
	return out
}

func assertUploadDirEmpty(t *testing.T, dir string) {
	t.Helper()

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("read upload dir: %v", err)
	}
	if len(entries) != 0 {
		t.Fatalf("temporary upload files left: %d", len(entries))
	}
}

func TestAppendUpload_Success(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	content := xlsxBytes(t,
		listedHeader,
		[]any{"000001", "平安银行", "平安银行股份有限公司", "银行业", 45366, "2024-04-20", "无形资产", 120.5, nil},
		[]any{"000001", "平安银行", "平安银行股份有限公司", "银行业", "2024年3月", "2024/04/20", "无形资产", 99, "更正"},
	)

	w := env.upload(t, "/api/upload/append?tableName=listed_data_assets", content)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}

	resp := decode(t, w)
	if !strings.HasPrefix(resp["message"].(string), "上传成功：处理 2 行") {
		t.Fatalf("message = %v", resp["message"])
	}
	summary := resp["summary"].(map[string]any)
	if summary["insertedUnique"].(float64) != 1 || summary["insertedAsRepeat"].(float64) != 1 || summary["updatedToRepeat"].(float64) != 1 {
		t.Fatalf("summary = %v", summary)
	}

	data := resp["data"].([]any)
	if len(data) != 2 {
		t.Fatalf("data = %v", data)
	}
	first := data[0].(map[string]any)
	if first["report_period"] != "2024-03" || first["disclosure_date"] != "2024-04-20" || first["status"] != "repeat" {
		t.Fatalf("first row = %v", first)
	}
	if first["remark"] != nil {
		t.Fatalf("remark = %v, want null", first["remark"])
	}
	assertUploadDirEmpty(t, env.uploadDir)

	// 镜像路由：相同文件全部视为完全重复
	w = env.upload(t, "/api/adminupload/append?tableName=listed_data_assets", content)
	if w.Code != http.StatusOK {
		t.Fatalf("mirror status = %d, body = %s", w.Code, w.Body.String())
	}
	summary = decode(t, w)["summary"].(map[string]any)
	if summary["ignoredFullDuplicate"].(float64) != 2 {
		t.Fatalf("mirror summary = %v", summary)
	}
}

func TestAppendUpload_Rejections(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	content := xlsxBytes(t, listedHeader, []any{"000001"})

	cases := []struct {
		path string
		code int
	}{
		{"/api/upload/append?tableName=users", http.StatusBadRequest},
		{"/api/upload/append?tableName=bad-name", http.StatusBadRequest},
		{"/api/upload/append", http.StatusBadRequest},
	}
	for _, tc := range cases {
		if w := env.upload(t, tc.path, content); w.Code != tc.code {
			t.Fatalf("%s: status = %d, want %d (%s)", tc.path, w.Code, tc.code, w.Body.String())
		}
	}

	// 多出两列非空数据
	extra := append(append([]any{}, listedHeader...), "x", "y")
	row := []any{"000001", "平安银行", "平安银行股份有限公司", "银行业", "2024-03", "2024-04-20", "无形资产", 1, "", "多余1", "多余2"}
	w := env.upload(t, "/api/upload/append?tableName=listed_data_assets", xlsxBytes(t, extra, row))
	if w.Code != http.StatusBadRequest {
		t.Fatalf("mismatch status = %d, body = %s", w.Code, w.Body.String())
	}
	if _, ok := decode(t, w)["error"]; !ok {
		t.Fatalf("missing error field: %s", w.Body.String())
	}
	assertUploadDirEmpty(t, env.uploadDir)

	page, err := env.store.ListRows(context.Background(), "listed_data_assets", []string{"stock_code"}, store.ListOptions{})
	if err != nil {
		t.Fatalf("ListRows: %v", err)
	}
	if page.Total != 0 {
		t.Fatalf("rows written = %d", page.Total)
	}
}

func TestAppendUpload_MissingTableIs404(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	if err := env.store.Exec(context.Background(), `DROP TABLE data_asset_listings`); err != nil {
		t.Fatalf("drop: %v", err)
	}
	w := env.upload(t, "/api/upload/append?tableName=data_asset_listings", xlsxBytes(t, []any{"a"}))
	if w.Code != http.StatusNotFound {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}
}

func TestUpdateStatus(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	w := env.upload(t, "/api/upload/append?tableName=listed_data_assets", xlsxBytes(t,
		listedHeader,
		[]any{"000001", "平安银行", "平安银行股份有限公司", "银行业", "2024-03", "2024-04-20", "无形资产", 1, nil},
	))
	if w.Code != http.StatusOK {
		t.Fatalf("upload status = %d", w.Code)
	}

	cases := []struct {
		path   string
		body   string
		code   int
		status any
	}{
		{"/api/adminpage/status/listed_data_assets/1", `{"status":"delete"}`, http.StatusOK, "delete"},
		{"/api/adminpage/status/listed_data_assets/1", `{"status":""}`, http.StatusOK, nil},
		{"/api/adminpage/status/listed_data_assets/1", `{"status":"kept"}`, http.StatusOK, "kept"},
		{"/api/adminpage/status/listed_data_assets/1", `{"status":null}`, http.StatusOK, nil},
		{"/api/adminpage/status/listed_data_assets/1", `{"status":"gone"}`, http.StatusBadRequest, nil},
		{"/api/adminpage/status/listed_data_assets/abc", `{"status":"kept"}`, http.StatusBadRequest, nil},
		{"/api/adminpage/status/users/1", `{"status":"kept"}`, http.StatusBadRequest, nil},
		{"/api/adminpage/status/listed_data_assets/99", `{"status":"kept"}`, http.StatusNotFound, nil},
	}
	for _, tc := range cases {
		w := env.do(t, http.MethodPut, tc.path, strings.NewReader(tc.body))
		if w.Code != tc.code {
			t.Fatalf("%s %s: status = %d, want %d (%s)", tc.path, tc.body, w.Code, tc.code, w.Body.String())
		}
		if tc.code != http.StatusOK {
			continue
		}
		row := decode(t, w)["data"].(map[string]any)
		if row["status"] != tc.status {
			t.Fatalf("%s: row status = %v, want %v", tc.body, row["status"], tc.status)
		}
	}
}

func TestListRowsAndChart(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	w := env.upload(t, "/api/upload/append?tableName=data_asset_listings", xlsxBytes(t,
		[]any{"交易所", "数据产品名称", "数据提供方", "产品类别", "挂牌日期", "挂牌价格"},
		[]any{"上海数据交易所", "产品A", "甲", "金融", "2024-01-02", 100},
		[]any{"上海数据交易所", "产品B", "乙", "交通", "2024-01-03", 200},
		[]any{"深圳数据交易所", "产品A", "丙", "金融", "2024-01-04", 300},
		[]any{"上海数据交易所", "产品A", "丁", "金融", "2024-01-05", 400},
	))
	if w.Code != http.StatusOK {
		t.Fatalf("upload status = %d, body = %s", w.Code, w.Body.String())
	}

	w = env.do(t, http.MethodGet, "/api/adminpage/data_asset_listings?page=1&pageSize=2", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("list status = %d", w.Code)
	}
	resp := decode(t, w)
	if resp["total"].(float64) != 4 || len(resp["rows"].([]any)) != 2 {
		t.Fatalf("page = %v", resp)
	}

	w = env.do(t, http.MethodGet, "/api/adminpage/data_asset_listings?status=repeat", nil)
	if got := decode(t, w)["total"].(float64); got != 2 {
		t.Fatalf("repeat rows = %v, want 2", got)
	}
	w = env.do(t, http.MethodGet, "/api/adminpage/data_asset_listings?status=normal&keyword=深圳", nil)
	if got := decode(t, w)["total"].(float64); got != 1 {
		t.Fatalf("keyword rows = %v, want 1", got)
	}
	if w := env.do(t, http.MethodGet, "/api/adminpage/data_asset_listings?status=bogus", nil); w.Code != http.StatusBadRequest {
		t.Fatalf("bogus status filter = %d", w.Code)
	}

	w = env.do(t, http.MethodGet, "/api/charts/data_asset_listings/status", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("chart status = %d", w.Code)
	}
	if n := len(decode(t, w)["data"].([]any)); n != 2 {
		t.Fatalf("chart groups = %d, want 2", n)
	}

	w = env.do(t, http.MethodGet, "/api/export/data_asset_listings", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("export status = %d, body = %s", w.Code, w.Body.String())
	}
	if !strings.Contains(w.Header().Get("Content-Disposition"), "data_asset_listings-") {
		t.Fatalf("content-disposition = %q", w.Header().Get("Content-Disposition"))
	}
	f, err := excelize.OpenReader(bytes.NewReader(w.Body.Bytes()))
	if err != nil {
		t.Fatalf("open export: %v", err)
	}
	defer f.Close()
	rows, err := f.GetRows(f.GetSheetName(0))
	if err != nil || len(rows) != 5 {
		t.Fatalf("export rows = %d, err = %v", len(rows), err)
	}
}

func TestTablesAndColumns(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	w := env.do(t, http.MethodGet, "/api/tables", nil)
	tables := decode(t, w)["data"].([]any)
	if len(tables) != 4 {
		t.Fatalf("tables = %d, want 4", len(tables))
	}

	w = env.do(t, http.MethodGet, "/api/tables/non_listed_data_assets/columns", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("columns status = %d", w.Code)
	}
	cols := decode(t, w)["data"].([]any)
	if len(cols) != 9 {
		t.Fatalf("columns = %d, want 9", len(cols))
	}
	var found bool
	for _, c := range cols {
		m := c.(map[string]any)
		if m["name"] == "recorded_month" {
			found = m["dateFormat"] == "YYYY年MM月"
		}
	}
	if !found {
		t.Fatalf("recorded_month date format missing: %v", cols)
	}
}

func TestSyncAndLogin(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	if w := env.do(t, http.MethodPost, "/api/sync/finance_bank", nil); w.Code != http.StatusAccepted {
		t.Fatalf("sync status = %d", w.Code)
	}
	if w := env.do(t, http.MethodPost, "/api/sync/unknown", nil); w.Code != http.StatusNotFound {
		t.Fatalf("unknown sync status = %d", w.Code)
	}

	if _, err := env.store.CreateUser(context.Background(), "admin", "s3cret"); err != nil {
		t.Fatalf("CreateUser: %v", err)
	}
	if w := env.do(t, http.MethodPost, "/api/login", strings.NewReader(`{"username":"admin","password":"s3cret"}`)); w.Code != http.StatusOK {
		t.Fatalf("login status = %d", w.Code)
	}
	if w := env.do(t, http.MethodPost, "/api/login", strings.NewReader(`{"username":"admin","password":"nope"}`)); w.Code != http.StatusUnauthorized {
		t.Fatalf("bad login status = %d", w.Code)
	}

	w := env.do(t, http.MethodGet, "/api/status", nil)
	if resp := decode(t, w); resp["driver"] != "sqlite3" || resp["status"] != "ok" {
		t.Fatalf("status = %v", resp)
	}
}

func TestSync_Unavailable(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t, func(d *Deps) { d.Rebuilder = nil })
	w := env.do(t, http.MethodPost, "/api/sync/finance_bank", nil)
	if w.Code != http.StatusServiceUnavailable {
		t.Fatalf("sync status = %d, want 503", w.Code)
	}
	resp := decode(t, w)
	if resp["error"] == nil {
		t.Fatalf("missing error message: %v", resp)
	}
	if _, ok := resp["stack"]; ok {
		t.Fatalf("unexpected stack in response: %v", resp)
	}
}

func TestAppendUpload_SaveFailureLeavesNoFile(t *testing.T) {
	t.Parallel()

	parent := t.TempDir()
	blocker := filepath.Join(parent, "blocker")
	if err := os.WriteFile(blocker, []byte("x"), 0644); err != nil {
		t.Fatalf("write blocker: %v", err)
	}
	env := newTestEnv(t, func(d *Deps) { d.UploadDir = filepath.Join(blocker, "uploads") })

	content := xlsxBytes(t, listedHeader)
	w := env.upload(t, "/api/upload/append?tableName=listed_data_assets", content)
	if w.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}

	entries, err := os.ReadDir(parent)
	if err != nil {
		t.Fatalf("read parent: %v", err)
	}
	if len(entries) != 1 || entries[0].Name() != "blocker" {
		t.Fatalf("unexpected files after failed save: %v", entries)
	}
}

func TestContentDisposition(t *testing.T) {
	t.Parallel()

	got := contentDisposition("finance_bank", "金融", time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC))
	want := `attachment; filename="finance_bank-20240315.xlsx"; filename*=UTF-8''%E9%87%91%E8%9E%8D_20240315.xlsx`
	if got != want {
		t.Fatalf("content-disposition mismatch:\n got: %s\nwant: %s", got, want)
	}
}
