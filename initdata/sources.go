package initdata

import (
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"
	"strings"
)

// LaunchParamsKey is the launch parameter holding init data.
const LaunchParamsKey = "tgWebAppData"

// LaunchParams reads init data the way the platform SDK does: from the
// tgWebAppData parameter of the launch URL's fragment, then its query.
type LaunchParams struct {
	URL string
}

func (LaunchParams) Name() string { return "launch-params" }

func (p LaunchParams) Detected() bool { return strings.TrimSpace(p.URL) != "" }

func (p LaunchParams) InitData() (string, error) {
	if strings.TrimSpace(p.URL) == "" {
		return "", nil
	}
	u, err := url.Parse(p.URL)
	if err != nil {
		return "", fmt.Errorf("parse launch url: %w", err)
	}
	for _, raw := range []string{u.EscapedFragment(), u.RawQuery} {
		if raw == "" {
			continue
		}
		values, err := url.ParseQuery(raw)
		if err != nil {
			return "", fmt.Errorf("parse launch params: %w", err)
		}
		if v := values.Get(LaunchParamsKey); v != "" {
			return v, nil
		}
	}
	return "", nil
}

// Raw is init data that is already serialized, e.g. from configuration or
// a request header.
type Raw struct {
	Source string
	Value  string
}

func (r Raw) Name() string {
	if r.Source != "" {
		return "raw:" + r.Source
	}
	return "raw"
}

func (r Raw) InitData() (string, error) { return r.Value, nil }

// WebAppUser is the user object embedded in init data.
type WebAppUser struct {
	ID           int64  `json:"id"`
	FirstName    string `json:"first_name"`
	LastName     string `json:"last_name,omitempty"`
	Username     string `json:"username,omitempty"`
	LanguageCode string `json:"language_code,omitempty"`
	IsPremium    bool   `json:"is_premium,omitempty"`
	PhotoURL     string `json:"photo_url,omitempty"`
}

// WebAppInitData is the structured, unsigned view of init data.
type WebAppInitData struct {
	QueryID      string      `json:"query_id,omitempty"`
	User         *WebAppUser `json:"user,omitempty"`
	Receiver     *WebAppUser `json:"receiver,omitempty"`
	ChatType     string      `json:"chat_type,omitempty"`
	ChatInstance string      `json:"chat_instance,omitempty"`
	StartParam   string      `json:"start_param,omitempty"`
	AuthDate     int64       `json:"auth_date,omitempty"`
	Hash         string      `json:"hash,omitempty"`
	Signature    string      `json:"signature,omitempty"`
}

// Unsafe serializes structured init data back into its query-string form.
type Unsafe struct {
	Data *WebAppInitData
}

func (Unsafe) Name() string { return "unsafe" }

func (u Unsafe) Detected() bool { return u.Data != nil }

func (u Unsafe) InitData() (string, error) {
	if u.Data == nil {
		return "", nil
	}
	return Serialize(*u.Data)
}

// Serialize encodes init data as the platform does: scalar fields as-is,
// user objects as JSON, keys sorted.
func Serialize(d WebAppInitData) (string, error) {
	values := url.Values{}
	set := func(key, value string) {
		if value != "" {
			values.Set(key, value)
		}
	}
	set("query_id", d.QueryID)
	set("chat_type", d.ChatType)
	set("chat_instance", d.ChatInstance)
	set("start_param", d.StartParam)
	set("hash", d.Hash)
	set("signature", d.Signature)
	if d.AuthDate != 0 {
		values.Set("auth_date", strconv.FormatInt(d.AuthDate, 10))
	}
	for key, user := range map[string]*WebAppUser{"user": d.User, "receiver": d.Receiver} {
		if user == nil {
			continue
		}
		encoded, err := json.Marshal(user)
		if err != nil {
			return "", fmt.Errorf("encode %s: %w", key, err)
		}
		values.Set(key, string(encoded))
	}
	return values.Encode(), nil
}
