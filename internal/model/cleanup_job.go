package model

// CleanupJob asks the cleanup worker to remove the vector chunks of a file,
// and optionally its relational row, after a partially failed operation.
type CleanupJob struct {
	FileID      string `json:"file_id"`
	Database    string `json:"database"`
	Collection  string `json:"collection"`
	DropFileRow bool   `json:"drop_file_row"`
	Reason      string `json:"reason"`
}
