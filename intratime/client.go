// Package intratime is the client for the vendor time-tracking API. All
// requests are form-encoded with the vendor's versioned Accept header and
// authenticated calls carry the session token in a "token" header.
package intratime

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math/rand"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/carlosalbertovr/intratime-killer/models"
	"github.com/carlosalbertovr/intratime-killer/timesheet"
)

const (
	// DefaultBaseURL is the production vendor endpoint.
	DefaultBaseURL = "https://newapi.intratime.es"

	acceptHeader = "application/vnd.apiintratime.v1+json"

	// vendorTimeLayout is the combined date-time format of INOUT_DATE and
	// user_timestamp fields.
	vendorTimeLayout = "2006-01-02 15:04:05"
)

// Client talks to the vendor API.
type Client struct {
	baseURL     string
	httpClient  *http.Client
	submitDelay time.Duration
	rnd         *rand.Rand
}

// NewClient builds a vendor client. submitDelay is the fixed pause between
// consecutive clocking submissions so bulk actions do not overwhelm the
// remote service.
func NewClient(baseURL string, timeout, submitDelay time.Duration) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		baseURL:     strings.TrimRight(baseURL, "/"),
		httpClient:  &http.Client{Timeout: timeout},
		submitDelay: submitDelay,
		rnd:         rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// LoginResult is the decoded vendor login response.
type LoginResult struct {
	Token       string
	UserID      string
	Username    string
	Name        string
	Email       string
	WeeklyHours float64
}

// Login exchanges user/pin for a vendor session token and profile.
func (c *Client) Login(ctx context.Context, user, pin string) (*LoginResult, error) {
	form := url.Values{}
	form.Set("user", user)
	form.Set("pin", pin)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/user/login", strings.NewReader(form.Encode()))
	if err != nil {
		return nil, fmt.Errorf("build login request: %w", err)
	}
	req.Header.Set("Accept", acceptHeader)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded; charset=utf-8")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &AuthError{Message: err.Error()}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, &AuthError{Status: resp.StatusCode, Message: vendorErrorMessage(resp.Body)}
	}

	var payload struct {
		Token       string      `json:"USER_TOKEN"`
		UserID      json.Number `json:"USER_ID"`
		Username    string      `json:"USER_USERNAME"`
		Name        string      `json:"USER_NAME"`
		Email       string      `json:"USER_EMAIL"`
		WorkingTime float64     `json:"USER_WORKING_TIME"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, &AuthError{Status: resp.StatusCode, Message: "unreadable login response"}
	}
	if payload.Token == "" {
		return nil, &AuthError{Status: resp.StatusCode, Message: "login response carried no token"}
	}

	res := &LoginResult{
		Token:       payload.Token,
		UserID:      payload.UserID.String(),
		Username:    payload.Username,
		Name:        payload.Name,
		Email:       payload.Email,
		WeeklyHours: payload.WorkingTime,
	}
	if res.Username == "" {
		res.Username = user
	}
	if res.WeeklyHours <= 0 {
		res.WeeklyHours = 40
	}
	return res, nil
}

// Clocking is a raw vendor clock record as returned by the clockings
// endpoint.
type Clocking struct {
	ID            int64   `json:"INOUT_ID"`
	UserID        int64   `json:"INOUT_USER_ID"`
	Type          int     `json:"INOUT_TYPE"`
	Date          string  `json:"INOUT_DATE"` // "2019-03-06 09:18:16"
	Source        int     `json:"INOUT_SOURCE"`
	Coordinates   string  `json:"INOUT_COORDINATES"`
	UseServerTime int     `json:"INOUT_USE_SERVER_TIME"`
	ProjectID     *int64  `json:"INOUT_PROJECT_ID"`
	WorkcenterID  *int64  `json:"INOUT_WORKCENTER_ID"`
	ClientID      *int64  `json:"INOUT_CLIENT_ID"`
}

// FetchClockings retrieves the raw clock records between the two combined
// date-time bounds (inclusive, vendor local time).
func (c *Client) FetchClockings(ctx context.Context, token, from, to string) ([]Clocking, error) {
	if token == "" {
		return nil, ErrNoSession()
	}

	q := url.Values{}
	q.Set("from", from)
	if to != "" {
		q.Set("to", to)
	}
	q.Set("type", "0,1,2,3")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/api/user/clockings?"+q.Encode(), nil)
	if err != nil {
		return nil, &FetchError{Op: "fetch clockings", Err: err}
	}
	req.Header.Set("Accept", acceptHeader)
	req.Header.Set("token", token)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &FetchError{Op: "fetch clockings", Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, &FetchError{Op: "fetch clockings", Status: resp.StatusCode}
	}

	var clockings []Clocking
	if err := json.NewDecoder(resp.Body).Decode(&clockings); err != nil {
		return nil, &FetchError{Op: "decode clockings", Err: err}
	}
	return clockings, nil
}

// ToRawRecords converts wire records to normalizer input. Records with an
// unknown type code or unparseable timestamp are dropped.
func ToRawRecords(clockings []Clocking) []timesheet.RawRecord {
	records := make([]timesheet.RawRecord, 0, len(clockings))
	for _, c := range clockings {
		kind, ok := models.KindFromCode(c.Type)
		if !ok {
			continue
		}
		at, err := time.ParseInLocation(vendorTimeLayout, c.Date, time.Local)
		if err != nil {
			continue
		}
		records = append(records, timesheet.RawRecord{
			SourceID: strconv.FormatInt(c.ID, 10),
			Kind:     kind,
			At:       at,
		})
	}
	return records
}

// SubmitClocking sends one clock event with an explicit vendor timestamp.
func (c *Client) SubmitClocking(ctx context.Context, token string, code int, timestamp string) error {
	if token == "" {
		return ErrNoSession()
	}

	form := url.Values{}
	form.Set("user_action", strconv.Itoa(code))
	form.Set("user_timestamp", timestamp)
	form.Set("user_use_server_time", "false")
	form.Set("user_project", "")
	form.Set("expense_amount", "0")

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/user/clocking", strings.NewReader(form.Encode()))
	if err != nil {
		return &FetchError{Op: "submit clocking", Err: err}
	}
	req.Header.Set("Accept", acceptHeader)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded; charset=utf-8")
	req.Header.Set("token", token)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return &FetchError{Op: "submit clocking", Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &FetchError{Op: "submit clocking", Status: resp.StatusCode}
	}
	io.Copy(io.Discard, resp.Body)
	return nil
}

// SubmitWeek sends the planned events strictly in order, one call per
// event with the configured delay in between. Later events of a day
// depend on the earlier ones existing server-side, so a failed call
// aborts the rest; the count of events already accepted is returned and
// those are not rolled back.
func (c *Client) SubmitWeek(ctx context.Context, token string, events []models.ClockEvent) (int, error) {
	if token == "" {
		return 0, ErrNoSession()
	}

	for i, ev := range events {
		if i > 0 && c.submitDelay > 0 {
			select {
			case <-time.After(c.submitDelay):
			case <-ctx.Done():
				return i, &FetchError{Op: "submit clocking", Err: ctx.Err()}
			}
		}

		ts, err := c.jitterTimestamp(ev.Date, ev.Time)
		if err != nil {
			return i, &FetchError{Op: "submit clocking", Err: err}
		}
		if err := c.SubmitClocking(ctx, token, ev.Kind.Code(), ts); err != nil {
			return i, err
		}
	}
	return len(events), nil
}

// jitterTimestamp builds the vendor timestamp for a planned event, adding
// a humanizing deviation of up to ±5 minutes plus random seconds so bulk
// submissions do not land on identical round times.
func (c *Client) jitterTimestamp(date, clock string) (string, error) {
	base, err := time.ParseInLocation("2006-01-02 15:04", date+" "+clock, time.Local)
	if err != nil {
		return "", fmt.Errorf("invalid event time %q %q: %w", date, clock, err)
	}
	minutes := c.rnd.Intn(11) - 5 // -5..+5
	seconds := c.rnd.Intn(60)
	return base.Add(time.Duration(minutes)*time.Minute + time.Duration(seconds)*time.Second).Format(vendorTimeLayout), nil
}

// vendorErrorMessage extracts a vendor error message, falling back to raw
// body text.
func vendorErrorMessage(body io.Reader) string {
	data, err := io.ReadAll(io.LimitReader(body, 4096))
	if err != nil || len(data) == 0 {
		return ""
	}
	var payload struct {
		Message string `json:"message"`
		Error   string `json:"error"`
	}
	if err := json.Unmarshal(data, &payload); err == nil {
		if payload.Message != "" {
			return payload.Message
		}
		if payload.Error != "" {
			return payload.Error
		}
	}
	return strings.TrimSpace(string(data))
}
