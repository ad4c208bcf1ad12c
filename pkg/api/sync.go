package api

// Record is a single synchronized record on the wire.
// Keys are snake_case column names; sync metadata travels as
// id, last_modified and server_created_at.
type Record map[string]any

// ID returns the record id or an empty string if it is missing or not a string
func (r Record) ID() string {
	id, _ := r["id"].(string)
	return id
}

// TableChanges представляет изменения одной таблицы
type TableChanges struct {
	Created []Record `json:"created"`
	Updated []Record `json:"updated"`
	Deleted []string `json:"deleted"`
}

// Changes maps table name to its changes
type Changes map[string]TableChanges

// PullResponse ответ сервера на pull
type PullResponse struct {
	Changes         Changes `json:"changes"`
	ServerTimestamp int64   `json:"server_timestamp"` // новый checkpoint клиента
}

// PushRequest представляет пакет изменений клиента
type PushRequest struct {
	Changes      Changes `json:"changes"`
	LastPulledAt int64   `json:"last_pulled_at"`
}

// PushResponse ответ сервера на успешный push
type PushResponse struct {
	OK bool `json:"ok"`
}

// Query parameter names of the pull endpoint
const (
	ParamLastPulledAt = "last_pulled_at"
	ParamTurbo        = "turbo"
)

// HeaderServerTimestamp carries the snapshot checkpoint of a bootstrap download
const HeaderServerTimestamp = "X-Server-Timestamp"

// Client bookkeeping keys that the server ignores on input
const (
	KeyStatus  = "_status"
	KeyChanged = "_changed"
)
