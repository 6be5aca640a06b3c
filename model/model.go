package model

import "time"

const (
	MaxNameLength    = 64
	MaxContentLength = 4096
)

type Folder struct {
	ID       int    `json:"id,omitempty"`
	UserID   int    `json:"user_id,omitempty"`
	Name     string `json:"name"`
	Position int    `json:"position"`
}

type Project struct {
	ID      int    `json:"id,omitempty"`
	Name    string `json:"name"`
	Deleted bool   `json:"deleted,omitempty"`
}

type Form struct {
	ID        int    `json:"id,omitempty"`
	ProjectID int    `json:"project_id,omitempty"`
	Name      string `json:"name"`
	Position  int    `json:"position"`
	Pages     []Page `json:"pages,omitempty"`
}

type Page struct {
	ID       int     `json:"id,omitempty"`
	FormID   int     `json:"form_id,omitempty"`
	Name     string  `json:"name"`
	Position int     `json:"position"`
	Fields   []Field `json:"fields,omitempty"`
}

type Field struct {
	ID       int           `json:"id,omitempty"`
	PageID   int           `json:"page_id,omitempty"`
	Type     FieldType     `json:"type"`
	Name     string        `json:"name"`
	Position int           `json:"position"`
	Options  []FieldOption `json:"options,omitempty"`
}

type FieldOption struct {
	ID       int    `json:"id,omitempty"`
	FieldID  int    `json:"field_id,omitempty"`
	Name     string `json:"name"`
	Position int    `json:"position"`
}

type Survey struct {
	ID     int    `json:"id,omitempty"`
	FormID int    `json:"form_id"`
	Name   string `json:"name"`
}

type Record struct {
	ID       int            `json:"id,omitempty"`
	UserID   *int           `json:"user_id,omitempty"`
	FormID   int            `json:"form_id"`
	SurveyID *int           `json:"survey_id,omitempty"`
	Time     time.Time      `json:"time"`
	Values   map[int]string `json:"values,omitempty"`
}

type Value struct {
	ID       int    `json:"id,omitempty"`
	RecordID int    `json:"record_id"`
	FieldID  int    `json:"field_id"`
	Content  string `json:"content"`
}
