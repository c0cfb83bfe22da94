package media

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	cloudflare "github.com/cloudflare/cloudflare-go/v6"
	cfd1 "github.com/cloudflare/cloudflare-go/v6/d1"
	"github.com/cloudflare/cloudflare-go/v6/option"

	"github.com/indieinfra/gallery/config"
	storageutil "github.com/indieinfra/gallery/storage/util"
)

// D1MediaStore implements Store using Cloudflare D1 via the HTTP API.
// It mirrors the schema of SQLMediaStore's sqlite dialect.
type D1MediaStore struct {
	cfg    *config.D1MediaStrategy
	client *cloudflare.Client
	table  string
}

// NewD1MediaStore builds a store and ensures the schema exists.
func NewD1MediaStore(cfg *config.D1MediaStrategy) (*D1MediaStore, error) {
	return newD1MediaStoreWithClient(cfg, nil)
}

// newD1MediaStoreWithClient allows tests to route API calls to a fake server.
func newD1MediaStoreWithClient(cfg *config.D1MediaStrategy, httpClient *http.Client) (*D1MediaStore, error) {
	if cfg == nil {
		return nil, fmt.Errorf("d1 media config is nil")
	}

	store := &D1MediaStore{
		cfg:    cfg,
		client: buildD1Client(cfg, httpClient),
		table:  storageutil.DeriveTableName(cfg.TablePrefix, "media"),
	}

	if err := store.initSchema(context.Background()); err != nil {
		return nil, err
	}

	return store, nil
}

// buildD1Client creates a Cloudflare client with the API token and an optional
// custom endpoint. Failed calls are not retried.
func buildD1Client(cfg *config.D1MediaStrategy, httpClient *http.Client) *cloudflare.Client {
	opts := []option.RequestOption{
		option.WithAPIToken(strings.TrimSpace(cfg.APIToken)),
		option.WithMaxRetries(0),
	}

	if httpClient != nil {
		opts = append(opts, option.WithHTTPClient(httpClient))
	}

	if base := strings.TrimSpace(cfg.Endpoint); base != "" {
		opts = append(opts, option.WithBaseURL(strings.TrimSuffix(base, "/")))
	}

	return cloudflare.NewClient(opts...)
}

// initSchema doubles as a connectivity and credentials check.
func (ms *D1MediaStore) initSchema(ctx context.Context) error {
	if _, err := ms.executeQuery(ctx, ms.schemaQuery(), nil); err != nil {
		return storageErr("init schema", fmt.Errorf("check account_id, database_id and api_token: %w", err))
	}

	return nil
}

func (ms *D1MediaStore) schemaQuery() string {
	return fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
id INTEGER PRIMARY KEY AUTOINCREMENT,
file_url VARCHAR(%d) NOT NULL,
media_type VARCHAR(%d) NOT NULL
)`, ms.table, MaxFileURLLength, MaxMediaTypeLength)
}

func (ms *D1MediaStore) insertQuery() string {
	return fmt.Sprintf("INSERT INTO %s (file_url, media_type) VALUES (?, ?) RETURNING id", ms.table)
}

func (ms *D1MediaStore) listQuery() string {
	return fmt.Sprintf("SELECT id, file_url, media_type FROM %s WHERE media_type = ? ORDER BY id ASC", ms.table)
}

func (ms *D1MediaStore) Create(ctx context.Context, fileURL string, mediaType string) (Record, error) {
	if err := ValidateRecordInput(fileURL, mediaType); err != nil {
		return Record{}, err
	}

	rows, err := ms.executeQuery(ctx, ms.insertQuery(), []any{fileURL, mediaType})
	if err != nil {
		return Record{}, storageErr("create", err)
	}

	if len(rows) == 0 {
		return Record{}, storageErr("create", fmt.Errorf("insert returned no id"))
	}

	id, err := rowID(rows[0])
	if err != nil {
		return Record{}, storageErr("create", err)
	}

	return Record{ID: id, FileURL: fileURL, MediaType: mediaType}, nil
}

func (ms *D1MediaStore) ListByType(ctx context.Context, mediaType string) ([]Record, error) {
	rows, err := ms.executeQuery(ctx, ms.listQuery(), []any{mediaType})
	if err != nil {
		return nil, storageErr("list", err)
	}

	records := make([]Record, 0, len(rows))
	for _, row := range rows {
		id, err := rowID(row)
		if err != nil {
			return nil, storageErr("list", err)
		}

		fileURL, _ := row["file_url"].(string)
		rowType, _ := row["media_type"].(string)
		if fileURL == "" || rowType == "" {
			return nil, storageErr("list", fmt.Errorf("row %d has missing columns", id))
		}

		records = append(records, Record{ID: id, FileURL: fileURL, MediaType: rowType})
	}

	return records, nil
}

func (ms *D1MediaStore) Close() error {
	return nil
}

// rowID reads the id column, which arrives as a JSON number.
func rowID(row map[string]any) (int64, error) {
	switch v := row["id"].(type) {
	case float64:
		return int64(v), nil
	case int64:
		return v, nil
	case int:
		return int64(v), nil
	default:
		return 0, fmt.Errorf("id column missing or of type %T", row["id"])
	}
}

// executeQuery sends a SQL statement to the D1 database and returns the result rows.
// Returns nil rows (no error) when the query succeeds but produces no results.
func (ms *D1MediaStore) executeQuery(ctx context.Context, sql string, params []any) ([]map[string]any, error) {
	body := cfd1.DatabaseQueryParamsBodyD1SingleQuery{Sql: cloudflare.F(sql)}
	if len(params) > 0 {
		body.Params = cloudflare.F(convertParams(params))
	}

	resp, err := ms.client.D1.Database.Query(ctx, ms.cfg.DatabaseID, cfd1.DatabaseQueryParams{
		AccountID: cloudflare.F(strings.TrimSpace(ms.cfg.AccountID)),
		Body:      body,
	})
	if err != nil {
		return nil, err
	}

	if resp == nil || len(resp.Result) == 0 {
		return nil, nil
	}

	result := resp.Result[0]
	if !result.Success {
		return nil, fmt.Errorf("d1 query execution failed")
	}

	rows := make([]map[string]any, 0, len(result.Results))
	for _, r := range result.Results {
		m, ok := r.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("unexpected row type %T", r)
		}
		rows = append(rows, m)
	}

	return rows, nil
}

// convertParams converts query parameters to D1's string-based parameter format.
func convertParams(params []any) []string {
	out := make([]string, 0, len(params))
	for _, p := range params {
		out = append(out, fmt.Sprint(p))
	}

	return out
}
