package sheets

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"pitchcanvas/internal/model"
)

// Composio 托管的 Google Sheets 工具
const (
	toolCreateSpreadsheet = "GOOGLESHEETS_CREATE_GOOGLE_SHEET1"
	toolAppendValues      = "GOOGLESHEETS_SPREADSHEETS_VALUES_APPEND"
	toolBatchUpdate       = "GOOGLESHEETS_BATCH_UPDATE"
	toolBatchGet          = "GOOGLESHEETS_BATCH_GET"
	toolClearValues       = "GOOGLESHEETS_CLEAR_VALUES"
)

// ComposioConfig Composio 客户端配置
type ComposioConfig struct {
	BaseURL      string
	APIKey       string
	UserID       string
	AuthConfigID string
	SheetTab     string // 数据所在工作表名
	Timeout      time.Duration
}

// ComposioClient 通过 Composio 连接器访问 Google Sheets
// 实现 TabularClient 与 ConnectClient
type ComposioClient struct {
	baseURL      string
	apiKey       string
	userID       string
	authConfigID string
	sheetTab     string
	httpClient   *http.Client
}

// NewComposioClient 创建 Composio 客户端
func NewComposioClient(cfg ComposioConfig) *ComposioClient {
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://backend.composio.dev"
	}
	if cfg.UserID == "" {
		cfg.UserID = "default"
	}
	if cfg.SheetTab == "" {
		cfg.SheetTab = "Canvas Items"
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	return &ComposioClient{
		baseURL:      strings.TrimRight(cfg.BaseURL, "/"),
		apiKey:       cfg.APIKey,
		userID:       cfg.UserID,
		authConfigID: cfg.AuthConfigID,
		sheetTab:     cfg.SheetTab,
		httpClient:   &http.Client{Timeout: cfg.Timeout},
	}
}

// CreateSpreadsheet 创建表格并写入表头行
func (c *ComposioClient) CreateSpreadsheet(ctx context.Context, title string) (string, error) {
	data, err := c.executeTool(ctx, toolCreateSpreadsheet, map[string]any{
		"title": title,
		"sheets": []any{
			map[string]any{
				"properties": map[string]any{
					"title": c.sheetTab,
					"gridProperties": map[string]any{
						"rowCount":    1000,
						"columnCount": len(model.SheetColumns),
					},
				},
			},
		},
	})
	if err != nil {
		return "", err
	}

	spreadsheetID := firstString(data, "spreadsheet_id", "spreadsheetId")
	if spreadsheetID == "" {
		return "", fmt.Errorf("create spreadsheet response has no spreadsheet id")
	}

	// 表头
	headers := make([]any, len(model.SheetColumns))
	for i, h := range model.SheetColumns {
		headers[i] = h
	}
	_, err = c.executeTool(ctx, toolAppendValues, map[string]any{
		"spreadsheet_id":   spreadsheetID,
		"range":            c.sheetTab + "!A1",
		"values":           []any{headers},
		"valueInputOption": "RAW",
	})
	if err != nil {
		return "", fmt.Errorf("failed to write header row: %w", err)
	}

	return spreadsheetID, nil
}

// UpsertRow 按 ID 列定位行：找到则原地覆盖，找不到则追加
func (c *ComposioClient) UpsertRow(ctx context.Context, spreadsheetID string, row model.SheetRow) error {
	rowNum, _, err := c.findRow(ctx, spreadsheetID, row.ID)
	if err != nil {
		return err
	}

	values := make([]any, 0, len(model.SheetColumns))
	for _, v := range row.Values() {
		values = append(values, v)
	}

	if rowNum > 0 {
		_, err = c.executeTool(ctx, toolBatchUpdate, map[string]any{
			"spreadsheet_id":      spreadsheetID,
			"sheet_name":          c.sheetTab,
			"first_cell_location": fmt.Sprintf("A%d", rowNum),
			"values":              []any{values},
			"valueInputOption":    "RAW",
		})
		return err
	}

	_, err = c.executeTool(ctx, toolAppendValues, map[string]any{
		"spreadsheet_id":   spreadsheetID,
		"range":            c.sheetTab + "!A2",
		"values":           []any{values},
		"valueInputOption": "RAW",
	})
	return err
}

// DeleteRow 按 ID 列定位并清空整行
// 远端没有结构性删行工具，这里清空单元格，读取时会跳过空行
func (c *ComposioClient) DeleteRow(ctx context.Context, spreadsheetID, rowKey string) error {
	rowNum, _, err := c.findRow(ctx, spreadsheetID, rowKey)
	if err != nil {
		return err
	}
	if rowNum == 0 {
		// 行不存在，幂等返回
		return nil
	}

	_, err = c.executeTool(ctx, toolClearValues, map[string]any{
		"spreadsheet_id": spreadsheetID,
		"range":          fmt.Sprintf("%s!A%d:%s%d", c.sheetTab, rowNum, lastColumn(), rowNum),
	})
	return err
}

// ListRows 读取全部数据行（跳过表头与空行）
func (c *ComposioClient) ListRows(ctx context.Context, spreadsheetID string) ([]model.SheetRow, error) {
	values, err := c.fetchValues(ctx, spreadsheetID)
	if err != nil {
		return nil, err
	}

	rows := make([]model.SheetRow, 0, len(values))
	for _, cells := range values {
		if isBlankRow(cells) {
			continue
		}
		rows = append(rows, model.SheetRowFromValues(cells))
	}
	return rows, nil
}

// findRow 按 ID 列定位行号（1 起算的表格行号）；未找到返回 0
func (c *ComposioClient) findRow(ctx context.Context, spreadsheetID, rowKey string) (int, []string, error) {
	values, err := c.fetchValues(ctx, spreadsheetID)
	if err != nil {
		return 0, nil, err
	}
	for i, cells := range values {
		if len(cells) > 0 && cells[0] == rowKey {
			// 数据从第 2 行开始
			return i + 2, cells, nil
		}
	}
	return 0, nil, nil
}

// fetchValues 拉取数据区域的单元格文本
func (c *ComposioClient) fetchValues(ctx context.Context, spreadsheetID string) ([][]string, error) {
	data, err := c.executeTool(ctx, toolBatchGet, map[string]any{
		"spreadsheet_id": spreadsheetID,
		"ranges":         []any{fmt.Sprintf("%s!A2:%s", c.sheetTab, lastColumn())},
	})
	if err != nil {
		return nil, err
	}

	var result [][]string
	valueRanges, _ := data["valueRanges"].([]any)
	for _, vr := range valueRanges {
		rangeMap, ok := vr.(map[string]any)
		if !ok {
			continue
		}
		rawRows, _ := rangeMap["values"].([]any)
		for _, rawRow := range rawRows {
			cells, ok := rawRow.([]any)
			if !ok {
				continue
			}
			row := make([]string, 0, len(cells))
			for _, cell := range cells {
				row = append(row, cellText(cell))
			}
			result = append(result, row)
		}
	}
	return result, nil
}

// ConnectedAccountCount 查询已连接账户数量
func (c *ComposioClient) ConnectedAccountCount(ctx context.Context) (int, error) {
	endpoint := c.baseURL + "/api/v3/connected_accounts?user_ids=" + url.QueryEscape(c.userID)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return 0, err
	}
	req.Header.Set("x-api-key", c.apiKey)

	data, err := c.doJSON(req, "list connected accounts")
	if err != nil {
		return 0, err
	}

	items, _ := data["items"].([]any)
	return len(items), nil
}

// InitiateConnection 发起 OAuth 连接流程，返回跳转地址
func (c *ComposioClient) InitiateConnection(ctx context.Context, redirectURL string) (string, error) {
	if c.authConfigID == "" {
		return "", &AuthError{Op: "initiate connection", Detail: "auth config id is not configured"}
	}

	body := map[string]any{
		"auth_config": map[string]any{"id": c.authConfigID},
		"connection": map[string]any{
			"user_id":      c.userID,
			"callback_url": redirectURL,
		},
	}
	payload, err := json.Marshal(body)
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.baseURL+"/api/v3/connected_accounts", bytes.NewReader(payload))
	if err != nil {
		return "", err
	}
	req.Header.Set("x-api-key", c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	data, err := c.doJSON(req, "initiate connection")
	if err != nil {
		return "", err
	}

	redirect := firstString(data, "redirect_url", "redirectUrl", "redirect_uri")
	if redirect == "" {
		if nested, ok := data["connectionData"].(map[string]any); ok {
			redirect = firstString(nested, "redirect_url", "redirectUrl")
		}
	}
	if redirect == "" {
		return "", fmt.Errorf("no redirect url returned by composio")
	}
	return redirect, nil
}

// executeTool 调用 Composio 工具执行接口
func (c *ComposioClient) executeTool(ctx context.Context, slug string, args map[string]any) (map[string]any, error) {
	body := map[string]any{
		"user_id":   c.userID,
		"arguments": args,
	}
	payload, err := json.Marshal(body)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.baseURL+"/api/v3/tools/execute/"+slug, bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	req.Header.Set("x-api-key", c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	data, err := c.doJSON(req, slug)
	if err != nil {
		return nil, err
	}

	// 工具层失败：HTTP 200 但 successful=false
	if successful, ok := data["successful"].(bool); ok && !successful {
		message, _ := data["error"].(string)
		lower := strings.ToLower(message)
		switch {
		case strings.Contains(lower, "rate limit") || strings.Contains(lower, "quota"):
			return nil, &RateLimitError{}
		case strings.Contains(lower, "unauthorized") || strings.Contains(lower, "not connected") ||
			strings.Contains(lower, "no connected account"):
			return nil, &AuthError{Op: slug, Detail: message}
		default:
			return nil, fmt.Errorf("%s failed: %s", slug, message)
		}
	}

	if inner, ok := data["data"].(map[string]any); ok {
		return inner, nil
	}
	return data, nil
}

// doJSON 执行请求并按状态码分类错误
func (c *ComposioClient) doJSON(req *http.Request, op string) (map[string]any, error) {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &TransientError{Op: op, Err: err}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &TransientError{Op: op, Err: err}
	}

	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return nil, &AuthError{Op: op, Detail: strings.TrimSpace(string(raw))}
	case resp.StatusCode == http.StatusTooManyRequests:
		return nil, &RateLimitError{RetryAfter: retryAfter(resp)}
	case resp.StatusCode >= 500:
		return nil, &TransientError{Op: op, Err: fmt.Errorf("remote status %d", resp.StatusCode)}
	case resp.StatusCode >= 400:
		return nil, fmt.Errorf("%s rejected with status %d: %s", op, resp.StatusCode, strings.TrimSpace(string(raw)))
	}

	var data map[string]any
	if err := json.Unmarshal(raw, &data); err != nil {
		return nil, fmt.Errorf("failed to decode %s response: %w", op, err)
	}
	return data, nil
}

func retryAfter(resp *http.Response) time.Duration {
	header := resp.Header.Get("Retry-After")
	if header == "" {
		return 0
	}
	seconds, err := strconv.Atoi(header)
	if err != nil || seconds <= 0 {
		return 0
	}
	return time.Duration(seconds) * time.Second
}

func firstString(data map[string]any, keys ...string) string {
	for _, key := range keys {
		if v, ok := data[key].(string); ok && v != "" {
			return v
		}
	}
	return ""
}

func cellText(cell any) string {
	switch v := cell.(type) {
	case string:
		return v
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(v)
	case nil:
		return ""
	default:
		return fmt.Sprintf("%v", v)
	}
}

func isBlankRow(cells []string) bool {
	for _, cell := range cells {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}

// lastColumn 数据区域最后一列的列标（10 列 → J）
func lastColumn() string {
	return string(rune('A' + len(model.SheetColumns) - 1))
}
