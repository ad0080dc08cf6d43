package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/Tiliavir/heatlog/internal/model"
	"github.com/Tiliavir/heatlog/internal/timecalc"
)

// Spreadsheet talks to a spreadsheet-backed web app that stores one row per
// day and answers with a {success, data, error} envelope.
type Spreadsheet struct {
	endpoint   string
	httpClient *http.Client
	loc        *time.Location
}

// NewSpreadsheet creates a client for endpoint. Dates the sheet hands back as
// native date values are mapped to calendar days in loc.
func NewSpreadsheet(ctx context.Context, endpoint, credential string, loc *time.Location) *Spreadsheet {
	if loc == nil {
		loc = time.Local
	}
	return &Spreadsheet{
		endpoint:   endpoint,
		httpClient: NewHTTPClient(ctx, credential),
		loc:        loc,
	}
}

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   string          `json:"error,omitempty"`
}

// sheetLevel accepts levels sent as numbers or as numeric strings.
type sheetLevel model.Level

func (l *sheetLevel) UnmarshalJSON(b []byte) error {
	s := strings.Trim(string(b), `"`)
	if s == "" || s == "null" {
		*l = 0
		return nil
	}
	n, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return fmt.Errorf("level %s: %w", b, err)
	}
	*l = sheetLevel(int(n))
	return nil
}

type sheetRow struct {
	Date      string     `json:"date"`
	Title     string     `json:"title"`
	Level     sheetLevel `json:"level"`
	Content   string     `json:"content"`
	UpdatedAt string     `json:"updatedAt"`
}

// saveRequest is the POST body; the server assigns updatedAt.
type saveRequest struct {
	Date    string      `json:"date"`
	Title   string      `json:"title"`
	Level   model.Level `json:"level"`
	Content string      `json:"content"`
}

func (row sheetRow) record() model.DayRecord {
	return model.DayRecord{
		Title:     row.Title,
		Level:     model.Level(row.Level),
		Content:   row.Content,
		UpdatedAt: row.UpdatedAt,
	}
}

func (s *Spreadsheet) rowToRecord(row sheetRow) (model.DayRecord, error) {
	key, err := timecalc.NormalizeDateKey(row.Date, s.loc)
	if err != nil {
		return model.DayRecord{}, err
	}
	c := model.NewCollector(s.loc)
	if err := c.Add(key, row.record()); err != nil {
		return model.DayRecord{}, err
	}
	return c.Records()[key], nil
}

// open unwraps the envelope, turning success=false into a *NetworkError.
func (s *Spreadsheet) open(op string, body []byte) (json.RawMessage, error) {
	var env envelope
	if err := json.Unmarshal(body, &env); err != nil {
		return nil, &ParseError{What: "spreadsheet response", Err: err}
	}
	if !env.Success {
		msg := env.Error
		if msg == "" {
			msg = "request was not successful"
		}
		return nil, &NetworkError{Op: op, URL: s.endpoint, Msg: msg}
	}
	return env.Data, nil
}

func (s *Spreadsheet) get(ctx context.Context, query url.Values) (json.RawMessage, error) {
	u, err := url.Parse(s.endpoint)
	if err != nil {
		return nil, fmt.Errorf("invalid endpoint %q: %w", s.endpoint, err)
	}
	q := u.Query()
	for k, vs := range query {
		q[k] = vs
	}
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	body, err := do(s.httpClient, req)
	if err != nil {
		return nil, err
	}
	return s.open(http.MethodGet, body)
}

// FetchAll returns every record the sheet holds. The data member may be an
// array of rows or an object keyed by date.
func (s *Spreadsheet) FetchAll(ctx context.Context) (model.Records, error) {
	data, err := s.get(ctx, url.Values{"action": {"getAll"}})
	if err != nil {
		return nil, err
	}
	data = bytes.TrimSpace(data)
	if len(data) == 0 || string(data) == "null" {
		return model.Records{}, nil
	}

	var rows []sheetRow
	if data[0] == '{' {
		var byDate map[string]sheetRow
		if err := json.Unmarshal(data, &byDate); err != nil {
			return nil, &ParseError{What: "spreadsheet data", Err: err}
		}
		for k, row := range byDate {
			row.Date = k
			rows = append(rows, row)
		}
	} else if err := json.Unmarshal(data, &rows); err != nil {
		return nil, &ParseError{What: "spreadsheet data", Err: err}
	}

	c := model.NewCollector(s.loc)
	for _, row := range rows {
		if err := c.Add(row.Date, row.record()); err != nil {
			return nil, &ParseError{What: "spreadsheet row", Err: err}
		}
	}
	return c.Records(), nil
}

// FetchOne returns the record for date; ok is false when the sheet has none.
func (s *Spreadsheet) FetchOne(ctx context.Context, date string) (model.DayRecord, bool, error) {
	data, err := s.get(ctx, url.Values{"action": {"get"}, "date": {date}})
	if err != nil {
		return model.DayRecord{}, false, err
	}
	data = bytes.TrimSpace(data)
	if len(data) == 0 || string(data) == "null" {
		return model.DayRecord{}, false, nil
	}
	var row sheetRow
	if err := json.Unmarshal(data, &row); err != nil {
		return model.DayRecord{}, false, &ParseError{What: "spreadsheet row", Err: err}
	}
	if row.Date == "" {
		row.Date = date
	}
	rec, err := s.rowToRecord(row)
	if err != nil {
		return model.DayRecord{}, false, &ParseError{What: "spreadsheet row", Err: err}
	}
	return rec, true, nil
}

// Save upserts rec on the server, which matches rows by exact date string.
func (s *Spreadsheet) Save(ctx context.Context, rec model.DayRecord) error {
	req, err := newJSONRequest(ctx, http.MethodPost, s.endpoint, saveRequest{
		Date:    rec.Date,
		Title:   rec.Title,
		Level:   rec.Level,
		Content: rec.Content,
	})
	if err != nil {
		return err
	}
	body, err := do(s.httpClient, req)
	if err != nil {
		return err
	}
	_, err = s.open(http.MethodPost, body)
	return err
}
