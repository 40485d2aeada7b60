package server

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"quoteboard/pkg/dashboard"
	"quoteboard/pkg/testkit/providers"
	"quoteboard/pkg/timing"
	"quoteboard/pkg/watchlist"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type fixture struct {
	board   *dashboard.Board
	server  *Server
	reloads int
}

func newFixture(t *testing.T, codes ...string) *fixture {
	t.Helper()
	mock := providers.NewMockProvider().
		SetQuote(providers.NewRecord("sh000001", "上证指数", 3000, 3030)).
		SetQuote(providers.NewRecord("600519", "贵州茅台", 1500, 1485)).
		SetQuote(providers.NewRecord("000001", "平安银行", 12.5, 12.6))

	at := time.Date(2025, 8, 21, 10, 0, 0, 0, time.FixedZone("CST", 8*3600))
	f := &fixture{}
	f.board = dashboard.NewBoard(mock, watchlist.New(codes...),
		dashboard.WithIndexCodes([]string{"sh000001"}),
		dashboard.WithMarketTime(timing.NewMarketTime(&timing.FixedTimeService{At: at})),
	)
	f.server = New(f.board,
		WithReload(func() {
			f.reloads++
			f.board.Refresh(context.Background())
		}),
		WithMetrics(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte("quoteboard_refresh_total 1\n"))
		})),
		WithRefreshInterval(10*time.Second),
	)
	return f
}

func (f *fixture) do(req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	f.server.Handler().ServeHTTP(w, req)
	return w
}

func postForm(path string, form url.Values) *http.Request {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return req
}

func TestIndex_BeforeFirstRefresh(t *testing.T) {
	f := newFixture(t)
	w := f.do(httptest.NewRequest(http.MethodGet, "/", nil))

	require.Equal(t, http.StatusOK, w.Code)
	body := w.Body.String()
	assert.Contains(t, body, `<meta http-equiv="refresh" content="10">`)
	assert.Contains(t, body, "正在获取大盘数据...")
	assert.Contains(t, body, "请在左侧添加。")
	assert.Contains(t, body, "--:--:--")
}

func TestIndex_RendersSnapshot(t *testing.T) {
	f := newFixture(t, "600519")
	f.board.Refresh(context.Background())

	w := f.do(httptest.NewRequest(http.MethodGet, "/", nil))
	require.Equal(t, http.StatusOK, w.Code)

	body := w.Body.String()
	assert.Contains(t, body, "交易中")
	assert.Contains(t, body, "最后刷新: 10:00:00")
	assert.Contains(t, body, "上证指数")
	assert.Contains(t, body, "3030.000")
	assert.Contains(t, body, "30.000 (1.000%)")
	assert.Contains(t, body, "#d62728")
	assert.Contains(t, body, "贵州茅台")
	assert.Contains(t, body, "-15.000")
	assert.Contains(t, body, "#2ca02c")
	assert.Contains(t, body, "涨跌幅(%)")
	assert.Contains(t, body, `<option value="600519">`)
}

func TestIndex_NoDataForWatchlist(t *testing.T) {
	f := newFixture(t, "300750")
	f.board.Refresh(context.Background())

	w := f.do(httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Contains(t, w.Body.String(), "暂无数据")
}

func TestAddForm(t *testing.T) {
	f := newFixture(t)

	w := f.do(postForm("/watchlist", url.Values{"code": {"600519"}}))
	require.Equal(t, http.StatusSeeOther, w.Code)
	loc, err := url.Parse(w.Header().Get("Location"))
	require.NoError(t, err)
	assert.Equal(t, "已添加 600519", loc.Query().Get("msg"))
	assert.Equal(t, "success", loc.Query().Get("level"))
	assert.Equal(t, 1, f.reloads, "添加成功后重新加载")
	assert.Len(t, f.board.Snapshot().Watch, 1)

	w = f.do(postForm("/watchlist", url.Values{"code": {"600519"}}))
	loc, _ = url.Parse(w.Header().Get("Location"))
	assert.Equal(t, "已在列表中", loc.Query().Get("msg"))
	assert.Equal(t, "warning", loc.Query().Get("level"))

	w = f.do(postForm("/watchlist", url.Values{"code": {"abc"}}))
	loc, _ = url.Parse(w.Header().Get("Location"))
	assert.Equal(t, "代码格式错误", loc.Query().Get("msg"))
	assert.Equal(t, 1, f.reloads)

	// 提示信息显示在页面上
	page := f.do(httptest.NewRequest(http.MethodGet, "/?"+loc.RawQuery, nil))
	assert.Contains(t, page.Body.String(), "代码格式错误")
}

func TestIndex_IgnoresUnknownFlashLevel(t *testing.T) {
	f := newFixture(t)
	w := f.do(httptest.NewRequest(http.MethodGet, "/?msg=hello&level=error", nil))
	assert.NotContains(t, w.Body.String(), "hello")
}

func TestRemoveForm_Bulk(t *testing.T) {
	f := newFixture(t, "600519", "000001", "300750")

	w := f.do(postForm("/watchlist/remove", url.Values{"codes": {"600519", "300750", "688981"}}))
	assert.Equal(t, http.StatusSeeOther, w.Code)
	assert.Equal(t, "/", w.Header().Get("Location"))
	assert.Equal(t, []string{"000001"}, f.board.Watchlist().Codes())
	assert.Equal(t, 1, f.reloads)

	// 不存在的代码不触发重新加载
	f.do(postForm("/watchlist/remove", url.Values{"codes": {"688981"}}))
	assert.Equal(t, 1, f.reloads)
}

func TestAPI_Quotes(t *testing.T) {
	f := newFixture(t, "600519")
	f.board.Refresh(context.Background())

	w := f.do(httptest.NewRequest(http.MethodGet, "/api/v1/quotes", nil))
	require.Equal(t, http.StatusOK, w.Code)

	var snap dashboard.Snapshot
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &snap))
	assert.Equal(t, int64(1), snap.Cycle)
	require.Len(t, snap.Watch, 1)
	assert.Equal(t, "贵州茅台", snap.Watch[0].Name)
	require.Len(t, snap.Indices, 1)
}

func TestAPI_Watchlist(t *testing.T) {
	f := newFixture(t)

	add := func(body string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, "/api/v1/watchlist", strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		return f.do(req)
	}

	assert.Equal(t, http.StatusCreated, add(`{"code":"600519"}`).Code)
	assert.Equal(t, http.StatusConflict, add(`{"code":"600519"}`).Code)
	assert.Equal(t, http.StatusBadRequest, add(`{"code":"60051"}`).Code)
	assert.Equal(t, http.StatusBadRequest, add(`{}`).Code)

	w := f.do(httptest.NewRequest(http.MethodGet, "/api/v1/watchlist", nil))
	assert.JSONEq(t, `{"codes":["600519"]}`, w.Body.String())

	w = f.do(httptest.NewRequest(http.MethodDelete, "/api/v1/watchlist/600519", nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"removed":1,"codes":[]}`, w.Body.String())
	assert.Equal(t, 2, f.reloads)
}

func TestHealthAndMetrics(t *testing.T) {
	f := newFixture(t)

	w := f.do(httptest.NewRequest(http.MethodGet, "/health", nil))
	require.Equal(t, http.StatusOK, w.Code)
	var health map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &health))
	assert.Equal(t, "healthy", health["status"])
	assert.Equal(t, "mock", health["provider"])

	w = f.do(httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Contains(t, w.Body.String(), "quoteboard_refresh_total")
}

func TestCORSPreflight(t *testing.T) {
	f := newFixture(t)
	w := f.do(httptest.NewRequest(http.MethodOptions, "/api/v1/quotes", nil))
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
}

func TestStartStop(t *testing.T) {
	f := newFixture(t)
	s := New(f.board, WithAddr("127.0.0.1:0"))
	require.NoError(t, s.Start())
	assert.NoError(t, s.Stop(context.Background()))
}
