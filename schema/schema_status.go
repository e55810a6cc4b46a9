package schema

import "time"

// StoreStatus represents the status of the persistence layer.
type StoreStatus struct {
	Backend          string                     `json:"backend" yaml:"backend"`
	Connected        bool                       `json:"connected" yaml:"connected"`
	TotalFiles       int64                      `json:"total_files" yaml:"total_files"`
	FilesByStatus    map[ProcessingStatus]int64 `json:"files_by_status" yaml:"files_by_status"`
	TotalAnalyses    int64                      `json:"total_analyses" yaml:"total_analyses"`
	LastAnalysisID   int64                      `json:"last_analysis_id" yaml:"last_analysis_id"`
	LastAnalysisTime time.Time                  `json:"last_analysis_time" yaml:"last_analysis_time"`
	TableSizes       map[string]int64           `json:"table_sizes" yaml:"table_sizes"`
}

// FileListFilter narrows file listings.
type FileListFilter struct {
	Status     ProcessingStatus
	Technology Technology
	Limit      int
}
