package models

import "time"

// Dataset is a row of _datasets
type Dataset struct {
	ID        string    `json:"id" db:"_id"`
	Name      string    `json:"name" db:"NAME"`
	Table     string    `json:"table,omitempty" db:"TABLENAME"`
	Column    string    `json:"column,omitempty" db:"COLUMNNAME"`
	Predicate string    `json:"predicate,omitempty" db:"PREDICATE"`
	Comments  string    `json:"comments,omitempty" db:"COMMENTS"`
	Axial     bool      `json:"axial" db:"AXIAL"`
	CreatedAt time.Time `json:"created_at" db:"CREATED_AT"`
	UpdatedAt time.Time `json:"updated_at" db:"UPDATED_AT"`

	// Count is filled by list queries only
	Count int `json:"count" db:"VALUE_COUNT"`
}

// DatasetValue is a row of _values
type DatasetValue struct {
	DatasetID string  `db:"DATASET_ID"`
	Seq       int     `db:"SEQ"`
	Value     float64 `db:"VALUE"`
}

// CreateDatasetRequest is the body of POST /datasets
type CreateDatasetRequest struct {
	Name     string    `json:"name" binding:"required"`
	Comments string    `json:"comments"`
	Axial    bool      `json:"axial"`
	Values   []float64 `json:"values"`
	// Text is parsed like an imported file when Values is empty
	Text string `json:"text"`
}

// AppendValuesRequest is the body of POST /datasets/:id/values
type AppendValuesRequest struct {
	Values []float64 `json:"values"`
	Text   string    `json:"text"`
}

// ImportDatasetRequest reads one numeric column of an existing table
type ImportDatasetRequest struct {
	Name      string `json:"name" binding:"required"`
	Table     string `json:"table" binding:"required"`
	Column    string `json:"column" binding:"required"`
	Predicate string `json:"predicate"`
	Comments  string `json:"comments"`
	Axial     bool   `json:"axial"`
}

// DatasetDetail is a dataset with its observations
type DatasetDetail struct {
	Dataset
	Values []float64 `json:"values"`
}
