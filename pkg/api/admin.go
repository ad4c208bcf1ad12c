package api

// ParamTable names the target table of an admin import
const ParamTable = "table"

// ImportResponse ответ сервера на административный импорт
type ImportResponse struct {
	Table    string `json:"table"`
	Inserted int    `json:"inserted"`
	Updated  int    `json:"updated"`
}
